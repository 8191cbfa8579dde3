package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/agentstudio/toolbridge/internal/domain"
)

const (
	// fetchConfigTimeout is the per-call timeout in seconds, default 30.
	fetchConfigTimeout = "timeout_seconds"
	// fetchConfigMaxBytes caps the returned body size, default 65536.
	fetchConfigMaxBytes = "max_bytes"
)

const (
	fetchDefaultTimeout  = 30 * time.Second
	fetchDefaultMaxBytes = 64 * 1024
)

// Fetch retrieves the content of a web page over HTTP GET. The body is
// truncated to a configured byte budget so a single tool call cannot flood
// the agent's context window.
type Fetch struct {
	domain.Base
	client *http.Client

	timeout  time.Duration
	maxBytes int64
}

// NewFetch constructs the web-content fetch tool.
func NewFetch(client *http.Client, config map[string]any) (*Fetch, error) {
	if client == nil {
		client = http.DefaultClient
	}
	timeout := fetchDefaultTimeout
	if raw, ok := config[fetchConfigTimeout]; ok {
		seconds, ok := asSeconds(raw)
		if !ok || seconds <= 0 {
			return nil, fmt.Errorf("fetch config: %s must be a positive number of seconds", fetchConfigTimeout)
		}
		timeout = seconds
	}
	maxBytes := int64(fetchDefaultMaxBytes)
	if raw, ok := config[fetchConfigMaxBytes]; ok {
		n, ok := asInt64(raw)
		if !ok || n <= 0 {
			return nil, fmt.Errorf("fetch config: %s must be a positive integer", fetchConfigMaxBytes)
		}
		maxBytes = n
	}
	return &Fetch{
		Base: domain.NewBase(domain.Descriptor{
			ID:          "web_fetch",
			Name:        "Web Fetch",
			Description: "Fetches the content of a web page via HTTP GET and returns the response body as text.",
			Version:     "1.0.0",
			Category:    "web",
			Tags:        []string{"http", "scraping"},
			Parameters: []domain.Parameter{
				{
					Name:        "url",
					Type:        domain.TypeString,
					Description: "The http(s) URL to fetch.",
					Required:    true,
				},
			},
			Enabled: true,
		}, config),
		client:   client,
		timeout:  timeout,
		maxBytes: maxBytes,
	}, nil
}

// Invoke implements domain.Contract.
func (t *Fetch) Invoke(ctx context.Context, args map[string]any) (domain.Result, error) {
	if err := t.Validate(args); err != nil {
		return domain.Fail(err.Error()), nil
	}

	rawURL := args["url"].(string)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.Failf("parameter %q must be an http(s) URL", "url"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Result{}, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	// Read one byte past the budget to detect truncation.
	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return domain.Result{}, fmt.Errorf("read response body: %w", err)
	}
	truncated := int64(len(body)) > t.maxBytes
	if truncated {
		body = body[:t.maxBytes]
	}

	return domain.Ok(map[string]any{
		"url":          u.String(),
		"status_code":  resp.StatusCode,
		"content_type": resp.Header.Get("Content-Type"),
		"body":         string(body),
		"truncated":    truncated,
	}), nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

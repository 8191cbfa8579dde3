package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/agentstudio/toolbridge/internal/domain"
)

// Recognized webhook config keys. The target URL is usually bound per agent
// at invocation time rather than at registration.
const (
	// webhookConfigURL is the target endpoint.
	webhookConfigURL = "webhook_url"
	// webhookConfigTimeout is the per-call timeout in seconds, default 30.
	webhookConfigTimeout = "timeout_seconds"
)

const webhookDefaultTimeout = 30 * time.Second

// Webhook posts a JSON message to a configured HTTP endpoint. It is the
// messaging-sender variant of the tool contract: Slack/Teams-style incoming
// webhooks, ticketing callbacks, and similar integrations.
type Webhook struct {
	domain.Base
	client *http.Client

	targetURL string
	timeout   time.Duration
}

// NewWebhook constructs the webhook tool. The config map may carry
// webhook_url and timeout_seconds; both are validated here rather than
// looked up ad hoc inside Invoke. The URL may be left empty at construction
// and supplied later through runtime config.
func NewWebhook(client *http.Client, config map[string]any) (*Webhook, error) {
	if client == nil {
		client = http.DefaultClient
	}
	targetURL, timeout, err := parseWebhookConfig(config)
	if err != nil {
		return nil, err
	}
	return &Webhook{
		Base: domain.NewBase(domain.Descriptor{
			ID:          "webhook",
			Name:        "Webhook Sender",
			Description: "Sends a JSON message to a configured webhook endpoint, e.g. a Slack or Teams incoming webhook.",
			Version:     "1.0.0",
			Category:    "messaging",
			Tags:        []string{"notification", "http"},
			Parameters: []domain.Parameter{
				{
					Name:        "message",
					Type:        domain.TypeString,
					Description: "The message body to deliver.",
					Required:    true,
				},
				{
					Name:        "title",
					Type:        domain.TypeString,
					Description: "Optional title included alongside the message.",
				},
			},
			Enabled: true,
		}, config),
		client:    client,
		targetURL: targetURL,
		timeout:   timeout,
	}, nil
}

func parseWebhookConfig(config map[string]any) (targetURL string, timeout time.Duration, err error) {
	timeout = webhookDefaultTimeout
	if raw, ok := config[webhookConfigURL]; ok {
		s, ok := raw.(string)
		if !ok {
			return "", 0, fmt.Errorf("webhook config: %s must be a string", webhookConfigURL)
		}
		if s != "" {
			u, perr := url.Parse(s)
			if perr != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return "", 0, fmt.Errorf("webhook config: %s must be an http(s) URL", webhookConfigURL)
			}
		}
		targetURL = s
	}
	if raw, ok := config[webhookConfigTimeout]; ok {
		seconds, ok := asSeconds(raw)
		if !ok || seconds <= 0 {
			return "", 0, fmt.Errorf("webhook config: %s must be a positive number of seconds", webhookConfigTimeout)
		}
		timeout = seconds
	}
	return targetURL, timeout, nil
}

// WithConfig implements domain.Reconfigurable: runtime overrides (typically
// the webhook URL bound at agent-configuration time) are merged over the
// construction-time config and validated before use.
func (t *Webhook) WithConfig(overrides map[string]any) (domain.Contract, error) {
	merged := t.MergeConfig(overrides)
	derived, err := NewWebhook(t.client, merged)
	if err != nil {
		return nil, err
	}
	derived.Base = domain.NewBase(t.Describe(), merged)
	return derived, nil
}

// Invoke implements domain.Contract. The upstream response status is part of
// the success contract: a 4xx/5xx from the endpoint is a failure Result, not
// an infrastructure error.
func (t *Webhook) Invoke(ctx context.Context, args map[string]any) (domain.Result, error) {
	if err := t.Validate(args); err != nil {
		return domain.Fail(err.Error()), nil
	}
	if t.targetURL == "" {
		return domain.Fail("webhook_url not configured"), nil
	}

	payload := map[string]any{"message": args["message"]}
	if title, ok := args["title"]; ok {
		payload["title"] = title
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Result{}, fmt.Errorf("marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.targetURL, bytes.NewReader(body))
	if err != nil {
		return domain.Result{}, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return domain.Failf("webhook endpoint returned status %d", resp.StatusCode), nil
	}
	return domain.Ok(map[string]any{"status_code": resp.StatusCode}), nil
}

func asSeconds(v any) (time.Duration, bool) {
	switch n := v.(type) {
	case int:
		return time.Duration(n) * time.Second, true
	case int64:
		return time.Duration(n) * time.Second, true
	case float64:
		return time.Duration(n * float64(time.Second)), true
	}
	return 0, false
}

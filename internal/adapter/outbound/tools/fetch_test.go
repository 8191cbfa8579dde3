package tools_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstudio/toolbridge/internal/adapter/outbound/tools"
)

func TestNewFetch_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
	}{
		{name: "defaults", config: nil},
		{name: "valid overrides", config: map[string]any{"timeout_seconds": 5, "max_bytes": 1024}},
		{name: "zero max_bytes", config: map[string]any{"max_bytes": 0}, wantErr: true},
		{name: "fractional max_bytes", config: map[string]any{"max_bytes": 10.5}, wantErr: true},
		{name: "bad timeout", config: map[string]any{"timeout_seconds": "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tools.NewFetch(nil, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFetch_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("returns body and content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html>hello</html>"))
		}))
		defer srv.Close()

		fetch, err := tools.NewFetch(srv.Client(), nil)
		require.NoError(t, err)

		result, err := fetch.Invoke(ctx, map[string]any{"url": srv.URL})
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Equal(t, "<html>hello</html>", result.Output["body"])
		assert.Equal(t, http.StatusOK, result.Output["status_code"])
		assert.Equal(t, "text/html; charset=utf-8", result.Output["content_type"])
		assert.Equal(t, false, result.Output["truncated"])
	})

	t.Run("truncates oversized bodies", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer srv.Close()

		fetch, err := tools.NewFetch(srv.Client(), map[string]any{"max_bytes": 10})
		require.NoError(t, err)

		result, err := fetch.Invoke(ctx, map[string]any{"url": srv.URL})
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Len(t, result.Output["body"], 10)
		assert.Equal(t, true, result.Output["truncated"])
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		fetch, err := tools.NewFetch(nil, nil)
		require.NoError(t, err)

		result, err := fetch.Invoke(ctx, map[string]any{"url": "file:///etc/passwd"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "url")
	})

	t.Run("missing url fails validation", func(t *testing.T) {
		fetch, err := tools.NewFetch(nil, nil)
		require.NoError(t, err)

		result, err := fetch.Invoke(ctx, map[string]any{})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "url")
	})
}

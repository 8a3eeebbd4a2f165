package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string, inspect func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Sends one user message and joins text blocks", func(t *testing.T) {
		var got messagesRequest
		srv := newTestServer(t, http.StatusOK,
			`{"content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}],"model":"m","usage":{"input_tokens":3,"output_tokens":4}}`,
			func(r *http.Request) {
				assert.Equal(t, "/messages", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			})

		client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/"})
		text, err := client.Complete(ctx, "hello")

		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, text)
		assert.Equal(t, DefaultModel, got.Model)
		assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "user", got.Messages[0].Role)
		assert.Equal(t, "hello", got.Messages[0].Content)
	})

	t.Run("Fail: Missing API key", func(t *testing.T) {
		client := NewClient(Config{})

		_, err := client.Complete(ctx, "hello")

		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("Fail: API error body is surfaced", func(t *testing.T) {
		srv := newTestServer(t, http.StatusTooManyRequests,
			`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, nil)

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		_, err := client.Complete(ctx, "hello")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, "rate_limit_error", apiErr.Type)
		assert.Equal(t, "slow down", apiErr.Message)
	})

	t.Run("Fail: Non-JSON error body", func(t *testing.T) {
		srv := newTestServer(t, http.StatusBadGateway, `upstream down`, nil)

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		_, err := client.Complete(ctx, "hello")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "upstream down", apiErr.Message)
	})

	t.Run("Fail: No text content", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `{"content":[],"model":"m"}`, nil)

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		_, err := client.Complete(ctx, "hello")

		assert.Error(t, err)
	})

	t.Run("Fail: Context deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := client.Complete(timeoutCtx, "hello")

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("Fail: Client timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

		_, err := client.Complete(ctx, "hello")

		assert.ErrorIs(t, err, ErrTimeout)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("Fail: Connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: url, Timeout: time.Second})

		_, err := client.Complete(ctx, "hello")

		assert.ErrorIs(t, err, ErrUnavailable)
		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
	})

	t.Run("Fail: Undecodable success body", func(t *testing.T) {
		srv := newTestServer(t, http.StatusOK, `<html>proxy page</html>`, nil)

		client := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		_, err := client.Complete(ctx, "hello")

		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

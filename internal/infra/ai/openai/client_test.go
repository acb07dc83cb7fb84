package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/inspekta/internal/domain/ai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient("sk-test", "gpt-4o", srv.URL+"/v1", 5*time.Second)
	require.NoError(t, err)
	return c
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ", "gpt-4o", "", time.Second)
	assert.ErrorIs(t, err, ai.ErrMissingCredentials)
}

func TestDescribeImage_SendsImageAsDataURL(t *testing.T) {
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("No repairs needed.")))
	})

	out, err := c.DescribeImage(context.Background(), ai.ImageRequest{
		System:    "system text",
		Prompt:    "user text",
		Image:     []byte{0xff, 0xd8, 0xff},
		ImageMIME: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "No repairs needed.", out)
	assert.Contains(t, body, "data:image/jpeg;base64,/9j/")
	assert.Contains(t, body, "system text")
	assert.Contains(t, body, "user text")
	assert.Contains(t, body, `"max_tokens":1024`)
}

func TestDescribeImage_ErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ai.ErrUnauthorized},
		{http.StatusForbidden, ai.ErrUnauthorized},
		{http.StatusTooManyRequests, ai.ErrQuotaExceeded},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error","code":"x"}}`))
		})
		_, err := c.DescribeImage(context.Background(), ai.ImageRequest{Image: []byte("x")})
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestDescribeImage_ServerErrorIsNotAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})
	_, err := c.DescribeImage(context.Background(), ai.ImageRequest{Image: []byte("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ai.ErrUnauthorized)
	assert.NotErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestDescribeImage_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})
	_, err := c.DescribeImage(context.Background(), ai.ImageRequest{Image: []byte("x")})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestDataURLDefaultsToJPEG(t *testing.T) {
	assert.True(t, strings.HasPrefix(dataURL("", []byte("a")), "data:image/jpeg;base64,"))
}

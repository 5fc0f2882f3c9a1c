package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteJSONNotConfigured(t *testing.T) {
	client := NewClient("", "gpt-4o-mini")
	_, err := client.CompleteJSON(context.Background(), "sys", "user", 100)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCompleteJSONReturnsModelContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"summary":"ok"}`}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("sk-test", "gpt-4o-mini")
	client.baseURL = srv.URL

	raw, err := client.CompleteJSON(context.Background(), "sys", "user", 100)
	require.NoError(t, err)

	var out struct {
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "ok", out.Summary)
}

func TestCompleteJSONProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))
	defer srv.Close()

	client := NewClient("sk-test", "gpt-4o-mini")
	client.baseURL = srv.URL

	_, err := client.CompleteJSON(context.Background(), "sys", "user", 100)
	require.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "rate limited")
}

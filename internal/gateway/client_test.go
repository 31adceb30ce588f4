package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumiere-concierge/internal/common/config"
	commonerrors "lumiere-concierge/internal/common/errors"
	"lumiere-concierge/internal/common/logger"
)

func testConfig(baseURL string) *config.AIGatewayConfig {
	return &config.AIGatewayConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "google/gemini-2.5-flash",
	}
}

func TestStreamChat_Success(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "/chat/completions", r.URL.Path)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Bonjour\"}}]}\n\ndata: [DONE]\n\n"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewNoOpLogger())
	stream, err := client.StreamChat(context.Background(), []Message{
		{Role: "system", Content: "You are the host."},
		{Role: "user", Content: "Hello"},
	})
	require.NoError(t, err)
	defer stream.Close()

	raw, err := io.ReadAll(stream)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "google/gemini-2.5-flash", gotBody.Model)
	assert.True(t, gotBody.Stream)
	assert.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Contains(t, string(raw), "data: [DONE]")
}

func TestStreamChat_MissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.APIKey = ""

	client := NewClient(cfg, logger.NewNoOpLogger())
	_, err := client.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}})

	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeConfigMissing, stdErr.Code)
	assert.False(t, called, "upstream must not be contacted without a key")
}

func TestStreamChat_UpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), logger.NewNoOpLogger())
	_, err := client.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}})

	require.Error(t, err)
	statusErr, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "rate limited")
}

func TestStreamChat_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testConfig(server.URL), logger.NewNoOpLogger())
	_, err := client.StreamChat(ctx, []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

// Package gateway talks to the OpenAI-compatible AI gateway that fronts
// the conversational model.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"lumiere-concierge/internal/common/config"
	"lumiere-concierge/internal/common/errors"
	"lumiere-concierge/internal/common/logger"
)

// Message is a single turn in the conversation sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// StatusError reports a non-2xx response from the gateway. Body is
// captured for server-side logging; it is never shown to callers.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned status %d", e.StatusCode)
}

// Client streams chat completions from the gateway.
type Client struct {
	config *config.AIGatewayConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg *config.AIGatewayConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		// No client timeout: streams stay open as long as the request
		// context does.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"component": "gateway"}),
	}
}

// StreamChat posts the conversation with stream=true and returns the raw
// SSE body. The caller owns the returned reader and must close it.
// Cancelling ctx aborts the upstream request mid-stream; the configured
// gateway timeout bounds the whole stream, not just the dial.
func (c *Client) StreamChat(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	if c.config.APIKey == "" {
		return nil, errors.NewConfigMissingError("AI_GATEWAY_API_KEY")
	}

	cancel := context.CancelFunc(func() {})
	if c.config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(c.config.Timeout))
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("call gateway: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("gateway request failed", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(detail),
		})
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(detail)}
	}

	return &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}, nil
}

// cancelReadCloser releases the stream's timeout context when the
// caller is done reading.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	c.cancel()
	return c.ReadCloser.Close()
}

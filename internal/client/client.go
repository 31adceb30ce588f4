// Package client consumes the concierge chat stream and performs the
// booking follow-up a UI would: accumulate the assistant's text, extract
// any reservation block, call the booking action, and rewrite the block
// into a confirmation or apology.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"lumiere-concierge/internal/common/logger"
	"lumiere-concierge/internal/gateway"
	"lumiere-concierge/internal/reservation"
)

// streamChunk is one SSE data payload from the relay.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type bookingResponse struct {
	Success     bool                     `json:"success"`
	Reservation *reservation.Reservation `json:"reservation"`
}

// Result is the outcome of one chat turn.
type Result struct {
	// Text is the display text: the raw assistant output with any
	// reservation block replaced by a confirmation or apology.
	Text        string
	Booked      bool
	Reservation *reservation.Reservation
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

func New(baseURL string, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  log.With(map[string]interface{}{"component": "chat-client"}),
	}
}

// Chat sends the conversation, streams the reply through onToken as
// deltas arrive, then runs the booking follow-up on the full text.
// onToken may be nil.
func (c *Client) Chat(ctx context.Context, messages []gateway.Message, onToken func(string)) (*Result, error) {
	stream, err := c.openStream(ctx, messages)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	text, err := c.consumeStream(stream, onToken)
	if err != nil {
		return nil, err
	}

	return c.processReservation(ctx, text), nil
}

func (c *Client) openStream(ctx context.Context, messages []gateway.Message) (io.ReadCloser, error) {
	body, err := json.Marshal(map[string]interface{}{"messages": messages})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call chat service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var errBody errorResponse
		if derr := json.NewDecoder(resp.Body).Decode(&errBody); derr == nil && errBody.Error != "" {
			return nil, fmt.Errorf("chat service: %s", errBody.Error)
		}
		return nil, fmt.Errorf("chat service returned status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// consumeStream reads SSE lines, skipping [DONE] and anything that does
// not parse, and concatenates the delta contents.
func (c *Client) consumeStream(stream io.Reader, onToken func(string)) (string, error) {
	var text strings.Builder

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip unparseable chunks
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		text.WriteString(content)
		if onToken != nil {
			onToken(content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return text.String(), nil
}

// processReservation applies the reservation follow-up to the assistant
// text. A malformed block is stripped silently; a booking failure keeps
// the conversation going with an apology.
func (c *Client) processReservation(ctx context.Context, text string) *Result {
	req, found, err := reservation.Extract(text)
	if !found {
		return &Result{Text: text}
	}
	if err != nil {
		c.logger.Warn("unparseable reservation block", map[string]interface{}{"error": err.Error()})
		return &Result{Text: reservation.StripBlock(text)}
	}

	// One request ID per extracted block so a retried call cannot
	// double-book.
	req.RequestID = uuid.New().String()

	res, err := c.bookReservation(ctx, req)
	if err != nil {
		c.logger.Error("reservation booking failed", map[string]interface{}{"error": err.Error()})
		return &Result{Text: reservation.WithApology(text)}
	}

	return &Result{
		Text:        reservation.WithConfirmation(text, req),
		Booked:      true,
		Reservation: res,
	}
}

func (c *Client) bookReservation(ctx context.Context, req *reservation.Request) (*reservation.Reservation, error) {
	body, err := json.Marshal(map[string]interface{}{
		"action":          "book_reservation",
		"reservationData": req,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal booking request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build booking request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call booking action: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody errorResponse
		if derr := json.NewDecoder(resp.Body).Decode(&errBody); derr == nil && errBody.Error != "" {
			return nil, fmt.Errorf("booking failed: %s", errBody.Error)
		}
		return nil, fmt.Errorf("booking returned status %d", resp.StatusCode)
	}

	var booked bookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&booked); err != nil {
		return nil, fmt.Errorf("decode booking response: %w", err)
	}
	if !booked.Success {
		return nil, fmt.Errorf("booking was not accepted")
	}
	return booked.Reservation, nil
}

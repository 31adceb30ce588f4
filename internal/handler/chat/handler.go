// Package chat implements the conversational endpoint: rate limiting,
// streamed model relay, and the booking action.
package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"lumiere-concierge/internal/common/errors"
	"lumiere-concierge/internal/common/logger"
	"lumiere-concierge/internal/common/metrics"
	"lumiere-concierge/internal/gateway"
	"lumiere-concierge/internal/reservation"
)

const actionBookReservation = "book_reservation"

// Limiter decides whether a caller may proceed.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

// PromptBuilder produces the system prompt for the current menu state.
type PromptBuilder interface {
	BuildSystemPrompt(ctx context.Context) string
}

// Gateway streams a model response for a conversation.
type Gateway interface {
	StreamChat(ctx context.Context, messages []gateway.Message) (io.ReadCloser, error)
}

// BookingStore persists reservation requests.
type BookingStore interface {
	Create(ctx context.Context, req *reservation.Request) (*reservation.Reservation, error)
}

// Notifier delivers a confirmation for a stored reservation. Best-effort;
// implementations log their own failures.
type Notifier interface {
	ReservationCreated(ctx context.Context, res *reservation.Reservation)
}

type request struct {
	Action          string               `json:"action,omitempty"`
	ReservationData *reservation.Request `json:"reservationData,omitempty"`
	Messages        []gateway.Message    `json:"messages,omitempty"`
}

type bookingResponse struct {
	Success     bool                     `json:"success"`
	Reservation *reservation.Reservation `json:"reservation"`
}

type Handler struct {
	limiter     Limiter
	prompts     PromptBuilder
	gateway     Gateway
	bookings    BookingStore
	notifier    Notifier
	logger      logger.Logger
	errWriter   *errors.HTTPHandler
	allowOrigin string
}

func NewHandler(limiter Limiter, prompts PromptBuilder, gw Gateway, bookings BookingStore, notifier Notifier, log logger.Logger, allowOrigin string) *Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return &Handler{
		limiter:     limiter,
		prompts:     prompts,
		gateway:     gw,
		bookings:    bookings,
		notifier:    notifier,
		logger:      log.With(map[string]interface{}{"component": "chat-handler"}),
		errWriter:   errors.NewHTTPHandler(log),
		allowOrigin: allowOrigin,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.writeCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	identifier := clientIdentifier(r)

	allowed, err := h.limiter.Allow(r.Context(), identifier)
	if err != nil {
		h.errWriter.Write(w, errors.NewInternalError(err))
		return
	}
	if !allowed {
		metrics.RateLimitDenied.Inc()
		h.logger.Warn("rate limit exceeded", map[string]interface{}{"identifier": identifier})
		h.errWriter.Write(w, errors.NewRateLimitExceededError(identifier))
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.errWriter.Write(w, errors.NewInvalidRequestError("unreadable body: "+err.Error()))
		return
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		h.errWriter.Write(w, errors.NewInvalidRequestError("malformed JSON: "+err.Error()))
		return
	}

	if req.Action == actionBookReservation {
		h.handleBooking(w, r, raw, req.ReservationData)
		return
	}

	h.handleChat(w, r, req.Messages)
}

func (h *Handler) handleBooking(w http.ResponseWriter, r *http.Request, raw []byte, data *reservation.Request) {
	if verr := validateBookingPayload(raw); verr != nil {
		metrics.Bookings.WithLabelValues("invalid").Inc()
		h.errWriter.Write(w, verr)
		return
	}

	if errs := reservation.Validate(data); len(errs) > 0 {
		metrics.Bookings.WithLabelValues("invalid").Inc()
		h.errWriter.Write(w, errors.NewReservationInvalidError(reservation.JoinMessages(errs)))
		return
	}

	res, err := h.bookings.Create(r.Context(), data)
	if err != nil {
		metrics.Bookings.WithLabelValues("failed").Inc()
		h.errWriter.Write(w, errors.NewBookingStoreFailedError(err))
		return
	}
	metrics.Bookings.WithLabelValues("created").Inc()

	h.logger.Info("reservation created", map[string]interface{}{
		"reservationId": res.ID.String(),
		"date":          res.Date,
		"time":          res.Time,
		"partySize":     res.PartySize,
	})

	if h.notifier != nil {
		h.notifier.ReservationCreated(r.Context(), res)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(bookingResponse{Success: true, Reservation: res})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request, messages []gateway.Message) {
	if len(messages) == 0 {
		h.errWriter.Write(w, errors.NewInvalidRequestError("messages is required"))
		return
	}

	systemPrompt := h.prompts.BuildSystemPrompt(r.Context())
	upstream := make([]gateway.Message, 0, len(messages)+1)
	upstream = append(upstream, gateway.Message{Role: "system", Content: systemPrompt})
	upstream = append(upstream, messages...)

	start := time.Now()
	stream, err := h.gateway.StreamChat(r.Context(), upstream)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		h.errWriter.Write(w, mapGatewayError(err))
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	if err := h.copyStream(r.Context(), w, stream); err != nil {
		// Headers are gone; all we can do is log and drop the connection.
		metrics.ChatRequests.WithLabelValues("aborted").Inc()
		h.logger.Warn("stream interrupted", map[string]interface{}{"error": err.Error()})
		return
	}

	metrics.ChatRequests.WithLabelValues("success").Inc()
	metrics.StreamDuration.Observe(time.Since(start).Seconds())
}

// copyStream relays the upstream SSE body to the client, flushing as
// chunks arrive so tokens render incrementally.
func (h *Handler) copyStream(ctx context.Context, w http.ResponseWriter, stream io.Reader) error {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *Handler) writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", h.allowOrigin)
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// mapGatewayError translates a gateway failure into the caller-facing
// taxonomy: upstream 429 and 402 pass through with friendly messages,
// anything else is an opaque 500.
func mapGatewayError(err error) error {
	if statusErr, ok := err.(*gateway.StatusError); ok {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return errors.NewUpstreamOverloadedError(statusErr.Body)
		case http.StatusPaymentRequired:
			return errors.NewUpstreamUnavailableError(statusErr.Body)
		default:
			return errors.NewUpstreamFailedError(statusErr.StatusCode, statusErr.Body)
		}
	}
	return err
}

// clientIdentifier resolves the rate-limit key for a request: the first
// X-Forwarded-For entry, else X-Real-IP, else the anonymous sentinel.
func clientIdentifier(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	return "anonymous"
}

// internal/common/errors/http.go
package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON body every failure responds with.
type errorResponse struct {
	Error string `json:"error"`
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// HTTPHandler converts errors into typed HTTP responses at the boundary.
// Nothing propagates to the caller unhandled: any error is normalized to
// a StandardError, logged with its details, and written as {error: ...}
// with the mapped status.
type HTTPHandler struct {
	logger Logger
}

func NewHTTPHandler(logger Logger) *HTTPHandler {
	return &HTTPHandler{logger: logger}
}

func (h *HTTPHandler) Write(w http.ResponseWriter, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdErr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(errorResponse{Error: stdErr.Message})
}

// normalizeError ensures we always have a StandardError
func (h *HTTPHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

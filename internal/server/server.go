// Package server wires the HTTP routes and owns the listener lifecycle.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lumiere-concierge/internal/common/observability"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readHeaderTimeout = 30 * time.Second
	// Streams stay open for the whole model response, so the write
	// timeout is generous.
	writeTimeout = 5 * time.Minute
)

// SetupRoutes builds the router around the chat endpoint. The chat
// handler serves OPTIONS itself so preflight gets CORS headers.
func SetupRoutes(chatHandler http.Handler, obs *observability.Observability) *Server {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")

	router.Handle("/v1/chat", recordRequests(obs, chatHandler)).Methods("POST", "OPTIONS")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return &Server{
		Router: router,
	}
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func recordRequests(obs *observability.Observability, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		outcome := "success"
		if rec.status >= 400 {
			outcome = http.StatusText(rec.status)
		}
		obs.RecordRequest(r.Context(), outcome)
		obs.RecordDuration(r.Context(), time.Since(start), outcome)
	})
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}

// Package api serves lifecycle events over HTTP for local development and
// for orchestrators that deliver events by webhook.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dbobjects/internal/domain"
	"dbobjects/internal/middleware"
)

// maxEventBytes bounds the size of an event body.
const maxEventBytes = 1 << 20

// EventHandler handles one lifecycle event. Implemented by service.Dispatcher.
type EventHandler interface {
	Handle(ctx context.Context, event *domain.Event) (*domain.Response, error)
}

// RouterOptions configures optional router behavior.
type RouterOptions struct {
	// RateLimit, when set, limits POST /v1/events per client.
	RateLimit *middleware.RateLimitConfig
}

// NewRouter returns the HTTP router exposing POST /v1/events and GET /health.
// ctx bounds background middleware work.
func NewRouter(ctx context.Context, events EventHandler, logger *slog.Logger, opts ...RouterOptions) http.Handler {
	var o RouterOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		if o.RateLimit != nil {
			r.Use(middleware.RateLimiter(ctx, *o.RateLimit))
		}
		r.Post("/events", eventsHandler(events, logger))
	})
	return r
}

func eventsHandler(events EventHandler, fallback *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context(), fallback)

		var event domain.Event
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
		if err := dec.Decode(&event); err != nil {
			writeError(w, logger, domain.ErrValidation("invalid event body: %v", err))
			return
		}

		resp, err := events.Handle(r.Context(), &event)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("event failed", "code", code, "error", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

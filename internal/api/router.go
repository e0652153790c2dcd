package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qatrack/internal/config"
	"qatrack/internal/graphql"
	"qatrack/internal/metrics"
	"qatrack/internal/security"
)

const requestIDHeader = "X-Request-ID"

// NewRouter builds the inspection API. Every route, including /metrics, is
// subject to allowed-host validation.
func NewRouter(settings *config.Settings, logger *slog.Logger) (http.Handler, error) {
	h := NewHandler(settings, logger)

	gql, err := graphql.NewHandler(settings, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(security.AllowedHosts(security.NewHostValidator(settings.AllowedHosts, settings.Debug), logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Health)
	r.Get("/api/settings", h.GetSettings)
	r.Get("/api/settings/databases/{alias}", func(w http.ResponseWriter, r *http.Request) {
		h.GetDatabase(w, r, chi.URLParam(r, "alias"))
	})
	r.Handle("/graphql", gql)
	r.Handle("/metrics", promhttp.Handler())

	return r, nil
}

// requestID propagates the caller's request ID or assigns a new one
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"qatrack/internal/config"
)

// Handler handles API requests
type Handler struct {
	settings *config.Settings
	logger   *slog.Logger
}

// NewHandler creates a new API handler. Only a redacted copy of settings is
// retained.
func NewHandler(settings *config.Settings, logger *slog.Logger) *Handler {
	return &Handler{
		settings: settings.Redacted(),
		logger:   logger,
	}
}

// GetSettings handles GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.settings)
}

// GetDatabase handles GET /api/settings/databases/{alias}
func (h *Handler) GetDatabase(w http.ResponseWriter, r *http.Request, alias string) {
	db, ok := h.settings.Databases[alias]
	if !ok {
		http.Error(w, "Database not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, db)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", "error", err)
	}
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/sitebuilder/internal/assistant"
	"github.com/lehigh-university-libraries/sitebuilder/internal/storage"
	"github.com/lehigh-university-libraries/sitebuilder/internal/workspace"
)

type Handler struct {
	assistant *assistant.Assistant
	store     *storage.CheckpointStore
	workspace *workspace.Workspace
}

// New returns the HTTP API over a. ws may be nil, which disables uploads
// and the site preview.
func New(a *assistant.Assistant, store *storage.CheckpointStore, ws *workspace.Workspace) *Handler {
	return &Handler{
		assistant: a,
		store:     store,
		workspace: ws,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/prompt", h.HandlePrompt)
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/current", h.HandleCurrentSession)
	mux.HandleFunc("/api/images", h.HandleUpload)
	mux.HandleFunc("/site/", h.HandleSite)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

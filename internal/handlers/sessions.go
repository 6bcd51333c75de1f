package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/sitebuilder/internal/models"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// HandleSessions lists checkpointed threads (GET) or starts a new project (POST).
func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		current := h.assistant.Sessions().Current()
		threads := h.store.Threads()
		sessionList := make([]models.SessionSummary, 0, len(threads)+1)
		seen := false
		for _, id := range threads {
			seen = seen || id == current
			sessionList = append(sessionList, models.SessionSummary{
				ID:       id,
				Messages: h.store.Len(id),
				Current:  id == current,
			})
		}
		// a new session has no checkpoints until its first prompt
		if current != "" && !seen {
			sessionList = append(sessionList, models.SessionSummary{ID: current, Current: true})
		}
		h.writeJSON(w, sessionList)
	case "POST":
		msg := h.assistant.StartNewProject()
		h.writeJSON(w, sessionResponse{
			SessionID: h.assistant.Sessions().Current(),
			Message:   msg,
		})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleCurrentSession describes (GET) or clears (DELETE) the active session.
func (h *Handler) HandleCurrentSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, sessionResponse{
			SessionID: h.assistant.Sessions().Current(),
			Message:   h.assistant.SessionInfo(),
		})
	case "DELETE":
		msg := h.assistant.ClearSession()
		h.writeJSON(w, sessionResponse{
			SessionID: h.assistant.Sessions().Current(),
			Message:   msg,
		})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

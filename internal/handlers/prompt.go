package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// HandlePrompt runs one user turn. Agent failures are part of the response
// text, so this only fails on bad input.
func (h *Handler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.writeError(w, "prompt is required", http.StatusBadRequest)
		return
	}

	text := h.assistant.ProcessPrompt(r.Context(), req.Prompt)
	h.writeJSON(w, promptResponse{
		Response:  text,
		SessionID: h.assistant.Sessions().Current(),
	})
}

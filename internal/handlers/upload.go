package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/lehigh-university-libraries/sitebuilder/internal/images"
)

const maxUploadBytes = 10 * 1024 * 1024

// HandleUpload adds an image to the project directory so the agent can use it.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.workspace == nil {
		h.writeError(w, "Uploads are disabled: no project directory configured", http.StatusNotFound)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !images.IsSupported(name) {
		h.writeError(w, fmt.Sprintf("Unsupported image type %q", filepath.Ext(name)), http.StatusBadRequest)
		return
	}

	// Limit file size to 10MB
	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) > maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	path, err := h.workspace.SaveFile(name, string(fileData))
	if err != nil {
		h.writeError(w, "Failed to save image: "+err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("Image uploaded", "name", name, "bytes", len(fileData))

	h.writeJSON(w, map[string]any{
		"name":       name,
		"path":       path,
		"size":       images.HumanSize(int64(len(fileData))),
		"html_usage": images.ImgTag(name),
		"message":    "Successfully uploaded 1 image",
	})
}

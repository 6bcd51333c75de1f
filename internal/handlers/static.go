package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/workspace"
)

// HandleSite previews the website being built, serving files from the
// project directory under /site/.
func (h *Handler) HandleSite(w http.ResponseWriter, r *http.Request) {
	if h.workspace == nil {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/site/")
	if name == "" || strings.HasSuffix(name, "/") {
		name += "index.html"
	}

	path, err := h.workspace.Resolve(name)
	if errors.Is(err, workspace.ErrOutsideProject) {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

// Package workspace owns the directory holding the website sources and assets.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/browser"
)

// ErrOutsideProject is returned for file names that resolve outside the project directory.
var ErrOutsideProject = errors.New("path escapes project directory")

// Workspace serializes writes to the project directory. Readers that need a
// consistent tree (deploys) go through View.
type Workspace struct {
	dir  string
	mu   sync.RWMutex
	open func(path string) error
}

// New returns a Workspace rooted at dir
func New(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return &Workspace{
		dir:  filepath.Clean(abs),
		open: browser.OpenFile,
	}, nil
}

// SetOpener replaces the function used to show files to the user.
func (w *Workspace) SetOpener(open func(path string) error) {
	w.open = open
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Ensure creates the project directory if it does not exist.
func (w *Workspace) Ensure() error {
	return os.MkdirAll(w.dir, 0755)
}

// Resolve maps a caller supplied file name to an absolute path inside the project.
func (w *Workspace) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("file name is required")
	}

	full := filepath.Clean(filepath.Join(w.dir, name))
	rel, err := filepath.Rel(w.dir, full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", name, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%q: %w", name, ErrOutsideProject)
	}
	return full, nil
}

// SaveFile writes content to name, replacing whatever was there.
func (w *Workspace) SaveFile(name, content string) (string, error) {
	path, err := w.Resolve(name)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// write to a sibling temp file first so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sitebuilder-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		slog.Warn("Unable to set file mode", "file", tmp.Name(), "err", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}

	slog.Info("Website file saved", "path", path, "bytes", len(content))
	return path, nil
}

// CopyFile copies src (an absolute path) to name inside the project.
// It reports copied=false when src already is the destination.
func (w *Workspace) CopyFile(src, name string) (dst string, copied bool, err error) {
	dst, err = w.Resolve(name)
	if err != nil {
		return "", false, err
	}
	if filepath.Clean(src) == dst {
		return dst, false, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	in, err := os.Open(src)
	if err != nil {
		return "", false, fmt.Errorf("failed to open source image: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", false, fmt.Errorf("failed to stat source image: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", false, fmt.Errorf("failed to create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", false, fmt.Errorf("failed to copy image: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", false, fmt.Errorf("failed to finish copy: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		slog.Warn("Unable to preserve modification time", "file", dst, "err", err)
	}

	return dst, true, nil
}

// Open shows name to the user with the platform's default handler.
func (w *Workspace) Open(name string) (string, error) {
	path, err := w.Resolve(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("failed to open website: %w", err)
	}
	if err := w.open(path); err != nil {
		return "", fmt.Errorf("failed to open website: %w", err)
	}
	return path, nil
}

// View runs fn while no writes are in progress.
func (w *Workspace) View(fn func(dir string) error) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return fn(w.dir)
}

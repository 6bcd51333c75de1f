package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
	"gopkg.in/yaml.v3"
)

type snapshotFile struct {
	Threads map[string][]providers.Message `yaml:"threads"`
}

// SaveFile writes every thread to path as YAML.
func (s *CheckpointStore) SaveFile(path string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := yaml.Marshal(snapshotFile{Threads: s.threads})
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoints: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write checkpoints: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write checkpoints: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace checkpoints: %w", err)
	}
	return nil
}

// LoadFile replaces the store contents with the snapshot at path.
// A missing file leaves the store empty.
func (s *CheckpointStore) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No checkpoint snapshot", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read checkpoints: %w", err)
	}

	var snap snapshotFile
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse checkpoints %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = make(map[string][]providers.Message, len(snap.Threads))
	for id, msgs := range snap.Threads {
		s.threads[id] = msgs
	}
	slog.Info("Loaded checkpoints", "path", path, "threads", len(s.threads))
	return nil
}

// Package session tracks which conversation thread the user is working in.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager holds the active session identifier and the project it describes.
// The identifier is only a key: conversation state lives in the checkpoint store.
type Manager struct {
	mu          sync.RWMutex
	current     string
	description string
	newID       func() string
}

// New returns a Manager with no active session
func New() *Manager {
	return &Manager{
		newID: uuid.NewString,
	}
}

// NewWithGenerator returns a Manager that draws identifiers from gen
func NewWithGenerator(gen func() string) *Manager {
	return &Manager{newID: gen}
}

// Start begins a new session and forgets the project description.
func (m *Manager) Start() string {
	id := m.newID()

	m.mu.Lock()
	m.current = id
	m.description = ""
	m.mu.Unlock()

	slog.Info("Started new session", "session_id", id)
	return id
}

// Current returns the active session identifier, or "" if there is none.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Ensure returns the active session, starting one if needed.
func (m *Manager) Ensure() (id string, started bool) {
	if id := m.Current(); id != "" {
		return id, false
	}
	return m.Start(), true
}

// SetProjectDescription records what the user asked to build.
func (m *Manager) SetProjectDescription(description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.description = description
}

// ProjectDescription returns the recorded project description, if any.
func (m *Manager) ProjectDescription() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.description
}

// Short abbreviates an identifier for display.
func Short(id string) string {
	if id == "" {
		return "None"
	}
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

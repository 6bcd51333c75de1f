package storage

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
)

// CheckpointStore keeps conversation state per thread (session id).
type CheckpointStore struct {
	threads     map[string][]providers.Message
	mu          sync.RWMutex
	maxMessages int
	snapshot    string

	// saveMu orders snapshot writes so a newer snapshot is never replaced by an older one.
	saveMu sync.Mutex
}

func New() *CheckpointStore {
	return &CheckpointStore{
		threads: make(map[string][]providers.Message),
	}
}

// SetMaxMessages caps each thread. Zero means unbounded.
func (s *CheckpointStore) SetMaxMessages(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxMessages = n
}

// SetSnapshotPath makes every Put also write the whole store to path.
func (s *CheckpointStore) SetSnapshotPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = path
}

func (s *CheckpointStore) Get(threadID string) ([]providers.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, exists := s.threads[threadID]
	if !exists {
		return nil, false
	}
	return append([]providers.Message(nil), msgs...), true
}

// Put replaces the history of threadID, writing a snapshot when one is configured.
func (s *CheckpointStore) Put(threadID string, msgs []providers.Message) error {
	s.mu.Lock()
	stored := trim(append([]providers.Message(nil), msgs...), s.maxMessages)
	if len(stored) < len(msgs) {
		slog.Debug("Trimmed checkpoint", "thread", threadID, "dropped", len(msgs)-len(stored))
	}
	s.threads[threadID] = stored
	path := s.snapshot
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	return s.SaveFile(path)
}

func (s *CheckpointStore) Len(threadID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads[threadID])
}

// Threads returns the known thread ids in sorted order.
func (s *CheckpointStore) Threads() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.threads))
	for k := range s.threads {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func (s *CheckpointStore) Delete(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
}

// trim drops the oldest messages so at most max remain, cutting only at a
// user message so tool results never lose their call.
func trim(msgs []providers.Message, max int) []providers.Message {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}
	start := len(msgs) - max
	for i := start; i < len(msgs); i++ {
		if msgs[i].Role == providers.RoleUser {
			return msgs[i:]
		}
	}
	for i := start - 1; i >= 0; i-- {
		if msgs[i].Role == providers.RoleUser {
			return msgs[i:]
		}
	}
	return msgs
}

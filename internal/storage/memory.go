package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mind-engage/practice-exam/internal/session"
)

// MemoryStore keeps snapshots in a map. Snapshots are stored as encoded JSON
// so a Load sees exactly what a durable store would hand back.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string][]byte{}}
}

func (s *MemoryStore) Save(_ context.Context, quizID string, snap session.Snapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.StorageKey(quizID)] = buf
	return nil
}

func (s *MemoryStore) Load(_ context.Context, quizID string) (session.Snapshot, bool, error) {
	s.mu.Lock()
	buf, ok := s.items[session.StorageKey(quizID)]
	s.mu.Unlock()
	if !ok {
		return session.Snapshot{}, false, nil
	}
	var snap session.Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return session.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *MemoryStore) Clear(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, session.StorageKey(quizID))
	return nil
}

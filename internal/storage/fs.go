package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/mind-engage/practice-exam/internal/session"
)

// FSStore keeps one JSON file per quiz under a base directory.
type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data/progress"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) path(quizID string) string {
	return filepath.Join(s.base, url.PathEscape(session.StorageKey(quizID))+".json")
}

func (s *FSStore) Save(_ context.Context, quizID string, snap session.Snapshot) error {
	if quizID == "" {
		return errors.New("empty quiz id")
	}
	buf, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	dst := s.path(quizID)
	tmp, err := os.CreateTemp(s.base, ".snapshot-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	// rename keeps a reader from ever seeing half a file
	return os.Rename(tmp.Name(), dst)
}

func (s *FSStore) Load(_ context.Context, quizID string) (session.Snapshot, bool, error) {
	buf, err := os.ReadFile(s.path(quizID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return session.Snapshot{}, false, nil
		}
		return session.Snapshot{}, false, err
	}
	var snap session.Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return session.Snapshot{}, false, fmt.Errorf("decode %s: %w", s.path(quizID), err)
	}
	return snap, true, nil
}

func (s *FSStore) Clear(_ context.Context, quizID string) error {
	if err := os.Remove(s.path(quizID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mind-engage/practice-exam/internal/session"
)

// SQLStore keeps snapshots in the session_snapshots table created by db.Open.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, quizID string, snap session.Snapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO session_snapshots (storage_key, payload, saved_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (storage_key) DO UPDATE SET payload=EXCLUDED.payload, saved_at=EXCLUDED.saved_at`,
		session.StorageKey(quizID), string(buf), snap.SavedAt.Unix())
	return err
}

func (s *SQLStore) Load(ctx context.Context, quizID string) (session.Snapshot, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM session_snapshots WHERE storage_key=$1`,
		session.StorageKey(quizID)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Snapshot{}, false, nil
		}
		return session.Snapshot{}, false, err
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return session.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", quizID, err)
	}
	return snap, true, nil
}

func (s *SQLStore) Clear(ctx context.Context, quizID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_snapshots WHERE storage_key=$1`, session.StorageKey(quizID))
	return err
}

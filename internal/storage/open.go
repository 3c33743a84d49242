package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mind-engage/practice-exam/internal/config"
	"github.com/mind-engage/practice-exam/internal/db"
	"github.com/mind-engage/practice-exam/internal/session"
)

// Open returns the snapshot repository selected by cfg.SessionStore. The
// returned closer releases any connection the store holds.
func Open(ctx context.Context, cfg config.Config) (session.Repository, io.Closer, error) {
	switch cfg.SessionStore {
	case "", "file":
		s, err := NewFSStore(cfg.SessionDir)
		if err != nil {
			return nil, nil, fmt.Errorf("session dir: %w", err)
		}
		return s, nopCloser{}, nil
	case "memory":
		return NewMemoryStore(), nopCloser{}, nil
	case "sqlite":
		dsn := cfg.SessionDSN
		if dsn == "" {
			dsn = "file:" + filepath.Join(cfg.SessionDir, "progress.db") + "?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
			if _, err := NewFSStore(cfg.SessionDir); err != nil {
				return nil, nil, fmt.Errorf("session dir: %w", err)
			}
		}
		h, err := db.Open(ctx, db.DriverSQLite, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("session db: %w", err)
		}
		return NewSQLStore(h), dbCloser{h}, nil
	case "redis":
		s, err := NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type dbCloser struct{ db *sql.DB }

func (c dbCloser) Close() error { return c.db.Close() }

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB, tunes the pool and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:practice-exam.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/practice_exam?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	tunePool(driver, db)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// WithTx runs fn in a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if e := tx.Commit(); e != nil {
			err = fmt.Errorf("commit: %w", e)
		}
	}()
	err = fn(tx)
	return
}

func tunePool(driver Driver, db *sql.DB) {
	switch driver {
	case DriverSQLite:
		// single writer; a bigger pool only produces busy errors
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(45 * time.Minute)
		db.SetConnMaxIdleTime(15 * time.Minute)
	}
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS quizzes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exam_id TEXT NOT NULL UNIQUE,
  exam_name TEXT NOT NULL,
  version TEXT NOT NULL DEFAULT '',
  release_date TEXT NOT NULL DEFAULT '',
  syllabus_version TEXT NOT NULL DEFAULT '',
  is_official INTEGER NOT NULL DEFAULT 0,
  total_questions INTEGER NOT NULL,
  total_points REAL NOT NULL,
  passing_score REAL NOT NULL,
  resource_document TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  quiz_id INTEGER NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_key TEXT NOT NULL,
  question_text TEXT NOT NULL,
  select_type TEXT NOT NULL,
  correct_answer TEXT NOT NULL,          -- JSON array of option keys
  learning_objective TEXT NOT NULL DEFAULT '',
  k_level TEXT NOT NULL DEFAULT '',
  points REAL NOT NULL,
  hint TEXT NOT NULL DEFAULT '',
  visual_aid TEXT,                       -- JSON, opaque
  calculation TEXT,                      -- JSON, opaque
  UNIQUE (quiz_id, question_key)
);

CREATE TABLE IF NOT EXISTS question_options (
  question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  option_key TEXT NOT NULL,
  option_text TEXT NOT NULL,
  sort_order INTEGER NOT NULL,
  PRIMARY KEY (question_id, option_key)
);

CREATE TABLE IF NOT EXISTS question_explanations (
  question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  option_key TEXT NOT NULL,
  explanation TEXT NOT NULL,
  PRIMARY KEY (question_id, option_key)
);

CREATE TABLE IF NOT EXISTS session_snapshots (
  storage_key TEXT PRIMARY KEY,
  payload TEXT NOT NULL,                 -- JSON snapshot
  saved_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS quizzes (
  id BIGSERIAL PRIMARY KEY,
  exam_id TEXT NOT NULL UNIQUE,
  exam_name TEXT NOT NULL,
  version TEXT NOT NULL DEFAULT '',
  release_date TEXT NOT NULL DEFAULT '',
  syllabus_version TEXT NOT NULL DEFAULT '',
  is_official INTEGER NOT NULL DEFAULT 0,
  total_questions INTEGER NOT NULL,
  total_points DOUBLE PRECISION NOT NULL,
  passing_score DOUBLE PRECISION NOT NULL,
  resource_document TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS questions (
  id BIGSERIAL PRIMARY KEY,
  quiz_id BIGINT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_key TEXT NOT NULL,
  question_text TEXT NOT NULL,
  select_type TEXT NOT NULL,
  correct_answer TEXT NOT NULL,
  learning_objective TEXT NOT NULL DEFAULT '',
  k_level TEXT NOT NULL DEFAULT '',
  points DOUBLE PRECISION NOT NULL,
  hint TEXT NOT NULL DEFAULT '',
  visual_aid TEXT,
  calculation TEXT,
  UNIQUE (quiz_id, question_key)
);

CREATE TABLE IF NOT EXISTS question_options (
  question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  option_key TEXT NOT NULL,
  option_text TEXT NOT NULL,
  sort_order INTEGER NOT NULL,
  PRIMARY KEY (question_id, option_key)
);

CREATE TABLE IF NOT EXISTS question_explanations (
  question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  option_key TEXT NOT NULL,
  explanation TEXT NOT NULL,
  PRIMARY KEY (question_id, option_key)
);

CREATE TABLE IF NOT EXISTS session_snapshots (
  storage_key TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  saved_at BIGINT NOT NULL
);
`

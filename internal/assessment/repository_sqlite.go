package assessment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps sessions in a local SQLite file. Pass ":memory:"
// for a throwaway database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepository) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		assessment TEXT NOT NULL,
		transcript TEXT NOT NULL,
		providers TEXT NOT NULL DEFAULT '[]',
		report BLOB,
		report_pages INTEGER NOT NULL DEFAULT 0,
		last_error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated ON chat_sessions(updated_at);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT assessment, transcript, providers, report, report_pages, last_error, created_at, updated_at
		FROM chat_sessions WHERE id = ?`, id.String())

	var s Session
	var sr sessionRow
	var assessment, transcript, providers string
	var created, updated int64
	err := row.Scan(&assessment, &transcript, &providers, &sr.report, &sr.pages, &s.LastError, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	s.ID = id
	s.CreatedAt = time.Unix(0, created)
	s.UpdatedAt = time.Unix(0, updated)
	sr.assessment = []byte(assessment)
	sr.transcript = []byte(transcript)
	sr.providers = []byte(providers)
	if err := decodeRow(&s, sr); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *Session) error {
	row, err := encodeSession(s)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO chat_sessions (id, assessment, transcript, providers, report, report_pages, last_error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		assessment = excluded.assessment,
		transcript = excluded.transcript,
		providers = excluded.providers,
		report = excluded.report,
		report_pages = excluded.report_pages,
		last_error = excluded.last_error,
		updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID.String(),
		string(row.assessment),
		string(row.transcript),
		string(row.providers),
		row.report,
		row.pages,
		s.LastError,
		s.CreatedAt.UnixNano(),
		s.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

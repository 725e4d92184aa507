package assessment

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrSessionNotFound = errors.New("session not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// Migrate applies the embedded schema migrations to the PostgreSQL
// database at dbURL.
func Migrate(dbURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fmt.Errorf("migration init failed: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type postgresRepo struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT id, assessment, transcript, providers, report, report_pages, last_error, created_at, updated_at
		FROM chat_sessions WHERE id = $1`
	return scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRepo) Save(ctx context.Context, s *Session) error {
	row, err := encodeSession(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO chat_sessions (id, assessment, transcript, providers, report, report_pages, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			assessment = $2,
			transcript = $3,
			providers = $4,
			report = $5,
			report_pages = $6,
			last_error = $7,
			updated_at = $9
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, row.assessment, row.transcript, row.providers, row.report, row.pages, s.LastError, s.CreatedAt, s.UpdatedAt)
	return err
}

type sessionRow struct {
	assessment []byte
	transcript []byte
	providers  []byte
	report     []byte
	pages      int
}

func encodeSession(s *Session) (sessionRow, error) {
	var row sessionRow
	var err error
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	if row.assessment, err = json.Marshal(s.Assessment); err != nil {
		return row, fmt.Errorf("failed to marshal assessment: %w", err)
	}
	if row.transcript, err = json.Marshal(s.Transcript); err != nil {
		return row, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	providers := s.Providers
	if providers == nil {
		providers = []Provider{}
	}
	if row.providers, err = json.Marshal(providers); err != nil {
		return row, fmt.Errorf("failed to marshal providers: %w", err)
	}
	if s.Report != nil {
		row.report = s.Report.Data
		row.pages = s.Report.Pages
	}
	return row, nil
}

func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	var r sessionRow
	err := row.Scan(&s.ID, &r.assessment, &r.transcript, &r.providers, &r.report, &r.pages, &s.LastError, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if err := decodeRow(&s, r); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeRow(s *Session, r sessionRow) error {
	if err := json.Unmarshal(r.assessment, &s.Assessment); err != nil {
		return fmt.Errorf("failed to unmarshal assessment: %w", err)
	}
	if err := json.Unmarshal(r.transcript, &s.Transcript); err != nil {
		return fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	if len(r.providers) > 0 {
		if err := json.Unmarshal(r.providers, &s.Providers); err != nil {
			return fmt.Errorf("failed to unmarshal providers: %w", err)
		}
	}
	if len(s.Providers) == 0 {
		s.Providers = nil
	}
	if r.report != nil {
		s.Report = &Report{
			FileName:    ReportFileName,
			ContentType: ReportContentType,
			Pages:       r.pages,
			Data:        r.report,
		}
	}
	return nil
}

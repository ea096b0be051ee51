package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connStr string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS test_runs (
		id TEXT PRIMARY KEY,
		test_type TEXT NOT NULL DEFAULT '',
		website_name TEXT,
		status TEXT,
		payload JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ,
		inserted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_test_runs_created_at ON test_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_test_runs_website ON test_runs(website_name);
	CREATE INDEX IF NOT EXISTS idx_test_runs_type_created_at ON test_runs(test_type, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun saves a single run, replacing any run with the same ID
func (s *postgresStorage) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	return s.SaveRuns(ctx, []*domain.RunRecord{run})
}

// SaveRuns saves multiple runs in a transaction
func (s *postgresStorage) SaveRuns(ctx context.Context, runs []*domain.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO test_runs (id, test_type, website_name, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			test_type = EXCLUDED.test_type,
			website_name = EXCLUDED.website_name,
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, run := range runs {
		payload := []byte("{}")
		if run.Payload != nil {
			payload, err = json.Marshal(run.Payload)
			if err != nil {
				return fmt.Errorf("failed to encode payload of run %s: %w", run.ID, err)
			}
		}
		_, err = stmt.ExecContext(ctx,
			run.ID,
			string(run.TestType),
			nullString(run.WebsiteName),
			nullString(run.Status),
			payload,
			nullTime(run.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to save run %s: %w", run.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID
func (s *postgresStorage) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, test_type, website_name, status, payload, created_at
		FROM test_runs WHERE id = $1
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("run " + id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns retrieves runs matching filter ordered by creation time
func (s *postgresStorage) ListRuns(ctx context.Context, filter storage.RunFilter) ([]domain.RunRecord, error) {
	query := `SELECT id, test_type, website_name, status, payload, created_at FROM test_runs`
	var conds []string
	var args []interface{}

	if filter.TestType != "" {
		args = append(args, string(filter.TestType))
		conds = append(conds, fmt.Sprintf("test_type = $%d", len(args)))
	}
	if filter.Website != "" {
		args = append(args, filter.Website)
		conds = append(conds, fmt.Sprintf("website_name = $%d", len(args)))
	}
	if !filter.Start.IsZero() {
		args = append(args, filter.Start)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.End.IsZero() {
		args = append(args, filter.End)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC NULLS LAST, inserted_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []domain.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var testType string
	var payload []byte
	var website, status sql.NullString
	var createdAt sql.NullTime

	if err := row.Scan(&run.ID, &testType, &website, &status, &payload, &createdAt); err != nil {
		return nil, err
	}

	run.TestType = domain.TestType(testType)
	run.WebsiteName = website.String
	run.Status = status.String
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time.UTC()
	}
	if err := json.Unmarshal(payload, &run.Payload); err != nil {
		run.Payload = domain.RawRecord{}
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

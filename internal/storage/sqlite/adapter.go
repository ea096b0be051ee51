package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS test_runs (
		id TEXT PRIMARY KEY,
		test_type TEXT NOT NULL DEFAULT '',
		website_name TEXT,
		status TEXT,
		payload TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP,
		inserted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_test_runs_created_at ON test_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_test_runs_website ON test_runs(website_name);
	CREATE INDEX IF NOT EXISTS idx_test_runs_type_created_at ON test_runs(test_type, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun saves a single run, replacing any run with the same ID
func (s *sqliteStorage) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	return s.SaveRuns(ctx, []*domain.RunRecord{run})
}

// SaveRuns saves multiple runs in a transaction
func (s *sqliteStorage) SaveRuns(ctx context.Context, runs []*domain.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO test_runs (id, test_type, website_name, status, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, run := range runs {
		payload, err := encodePayload(run.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload of run %s: %w", run.ID, err)
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
func (s *sqliteStorage) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, test_type, website_name, status, payload, created_at
		FROM test_runs WHERE id = ?
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
func (s *sqliteStorage) ListRuns(ctx context.Context, filter storage.RunFilter) ([]domain.RunRecord, error) {
	query := `SELECT id, test_type, website_name, status, payload, created_at FROM test_runs`
	var conds []string
	var args []interface{}

	if filter.TestType != "" {
		conds = append(conds, "test_type = ?")
		args = append(args, string(filter.TestType))
	}
	if filter.Website != "" {
		conds = append(conds, "website_name = ?")
		args = append(args, filter.Website)
	}
	if !filter.Start.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.Start.UTC())
	}
	if !filter.End.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.End.UTC())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at IS NULL, created_at ASC, inserted_at ASC"

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
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var testType, payload string
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
	if err := json.Unmarshal([]byte(payload), &run.Payload); err != nil {
		run.Payload = domain.RawRecord{}
	}
	return &run, nil
}

func encodePayload(payload domain.RawRecord) (string, error) {
	if payload == nil {
		return "{}", nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

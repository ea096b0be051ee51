package storage

import (
	"context"
	"time"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// RunFilter narrows the runs returned by ListRuns. Zero fields do not filter.
type RunFilter struct {
	TestType domain.TestType
	Website  string
	Start    time.Time
	End      time.Time
}

// Storage is the abstract interface for the persistence layer
type Storage interface {
	// Run operations
	SaveRun(ctx context.Context, run *domain.RunRecord) error
	SaveRuns(ctx context.Context, runs []*domain.RunRecord) error

	// Run retrieval; results are ordered by created_at ascending
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]domain.RunRecord, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}

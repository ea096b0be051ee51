package collector

import (
	"context"
	"time"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// Collector defines the interface for importing test runs from GitHub Actions
type Collector interface {
	// GetRepositories lists the repository names of an owner
	GetRepositories(ctx context.Context, owner string) ([]string, error)

	// GetWorkflowRuns retrieves the workflow runs of a repository created in [since, until]
	GetWorkflowRuns(ctx context.Context, owner, repo string, since, until time.Time) ([]domain.RunRecord, error)

	// CollectRepositories imports workflow runs for several repositories concurrently
	CollectRepositories(ctx context.Context, owner string, repos []string, since, until time.Time, onProgress ProgressCallback) ([]domain.RunRecord, error)
}

// ProgressCallback is a callback function for reporting progress
type ProgressCallback func(repo string, progress float64)

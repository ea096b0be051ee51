package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/normalizer"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage"
)

// Dashboard defines the dashboard-facing queries over stored runs
type Dashboard interface {
	// GetStats summarizes the runs matching filter
	GetStats(ctx context.Context, filter storage.RunFilter) (domain.RunStats, error)

	// GetTimeline builds a rolling daily timeline ending today
	GetTimeline(ctx context.Context, filter storage.RunFilter, days int) ([]domain.TimelineBucket, error)

	// GetWebsiteGroups groups the matching runs by website
	GetWebsiteGroups(ctx context.Context, filter storage.RunFilter) (*domain.RunGroups, error)

	// GetDateGroups groups the matching runs by calendar day
	GetDateGroups(ctx context.Context, filter storage.RunFilter) (*domain.RunGroups, error)

	// GetWebsiteSummaries returns per-website stats in first-seen order
	GetWebsiteSummaries(ctx context.Context, filter storage.RunFilter) ([]domain.WebsiteSummary, error)

	// GetRunResult returns the normalized result of a stored run
	GetRunResult(ctx context.Context, id string) (*normalizer.Result, error)

	// Normalize converts a raw payload without touching storage
	Normalize(testType domain.TestType, raw interface{}) (*normalizer.Result, error)

	// IngestRuns converts raw rows to runs and stores them
	IngestRuns(ctx context.Context, raw []interface{}) ([]domain.RunRecord, error)
}

// dashboard implements the Dashboard interface
type dashboard struct {
	storage    storage.Storage
	normalizer *normalizer.Normalizer
	location   *time.Location
	now        func() time.Time
}

// Option configures a Dashboard
type Option func(*dashboard)

// WithLocation sets the time zone used for calendar-day keys
func WithLocation(loc *time.Location) Option {
	return func(d *dashboard) {
		if loc != nil {
			d.location = loc
		}
	}
}

// WithClock overrides the clock used for timelines
func WithClock(now func() time.Time) Option {
	return func(d *dashboard) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDashboard creates a new dashboard service
func NewDashboard(store storage.Storage, n *normalizer.Normalizer, opts ...Option) Dashboard {
	if n == nil {
		n = normalizer.New(nil)
	}
	d := &dashboard{
		storage:    store,
		normalizer: n,
		location:   time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *dashboard) listRuns(ctx context.Context, filter storage.RunFilter) ([]domain.RunRecord, error) {
	runs, err := d.storage.ListRuns(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list runs", err)
	}
	return runs, nil
}

// GetStats summarizes the runs matching filter
func (d *dashboard) GetStats(ctx context.Context, filter storage.RunFilter) (domain.RunStats, error) {
	runs, err := d.listRuns(ctx, filter)
	if err != nil {
		return domain.RunStats{}, err
	}
	return CalculateTestStats(runs), nil
}

// GetTimeline builds a rolling daily timeline ending today
func (d *dashboard) GetTimeline(ctx context.Context, filter storage.RunFilter, days int) ([]domain.TimelineBucket, error) {
	runs, err := d.listRuns(ctx, filter)
	if err != nil {
		return nil, err
	}
	builder := &TimelineBuilder{Location: d.location, Now: d.now}
	return builder.Build(runs, days), nil
}

// GetWebsiteGroups groups the matching runs by website
func (d *dashboard) GetWebsiteGroups(ctx context.Context, filter storage.RunFilter) (*domain.RunGroups, error) {
	runs, err := d.listRuns(ctx, filter)
	if err != nil {
		return nil, err
	}
	return GroupByWebsite(runs), nil
}

// GetDateGroups groups the matching runs by calendar day
func (d *dashboard) GetDateGroups(ctx context.Context, filter storage.RunFilter) (*domain.RunGroups, error) {
	runs, err := d.listRuns(ctx, filter)
	if err != nil {
		return nil, err
	}
	return GroupByDateIn(runs, d.location), nil
}

// GetWebsiteSummaries returns per-website stats in first-seen order
func (d *dashboard) GetWebsiteSummaries(ctx context.Context, filter storage.RunFilter) ([]domain.WebsiteSummary, error) {
	groups, err := d.GetWebsiteGroups(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.WebsiteSummary, 0, groups.Len())
	for _, g := range groups.Groups() {
		summary := domain.WebsiteSummary{
			Website: g.Key,
			Stats:   CalculateTestStats(g.Runs),
		}
		for _, run := range g.Runs {
			if run.CreatedAt.IsZero() {
				continue
			}
			if summary.LastRunAt == nil || run.CreatedAt.After(*summary.LastRunAt) {
				t := run.CreatedAt
				summary.LastRunAt = &t
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetRunResult returns the normalized result of a stored run
func (d *dashboard) GetRunResult(ctx context.Context, id string) (*normalizer.Result, error) {
	run, err := d.storage.GetRun(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, apperrors.NewInternalError("failed to get run", err)
	}

	res, err := d.normalizer.Normalize(run.TestType, run.Payload)
	if err != nil {
		slog.Warn("stored run has unsupported test type", "run_id", run.ID, "test_type", run.TestType)
		return nil, err
	}
	return res, nil
}

// Normalize converts a raw payload without touching storage
func (d *dashboard) Normalize(testType domain.TestType, raw interface{}) (*normalizer.Result, error) {
	return d.normalizer.Normalize(testType, raw)
}

// IngestRuns converts raw rows to runs and stores them.
// Rows without an ID get a random UUID.
func (d *dashboard) IngestRuns(ctx context.Context, raw []interface{}) ([]domain.RunRecord, error) {
	runs := normalizer.RunRecordsFromRaw(raw)
	if len(runs) != len(raw) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%d of %d rows are not objects", len(raw)-len(runs), len(raw)))
	}

	ptrs := make([]*domain.RunRecord, len(runs))
	for i := range runs {
		if runs[i].ID == "" {
			runs[i].ID = uuid.New().String()
		}
		ptrs[i] = &runs[i]
	}

	if err := d.storage.SaveRuns(ctx, ptrs); err != nil {
		return nil, apperrors.NewInternalError("failed to save runs", err)
	}
	slog.Info("ingested runs", "count", len(runs))
	return runs, nil
}

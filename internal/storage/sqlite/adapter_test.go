package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage"
)

func newTestStorage(t *testing.T) storage.Storage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_SaveAndList(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	day := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	runs := []*domain.RunRecord{
		{ID: "late", TestType: domain.TestTypeLoad, WebsiteName: "a.com", Status: "pass", CreatedAt: day.Add(2 * time.Hour),
			Payload: domain.RawRecord{"total_requests": float64(10)}},
		{ID: "early", TestType: domain.TestTypeSmoke, WebsiteName: "b.com", Status: "fail", CreatedAt: day},
		{ID: "undated", TestType: domain.TestTypeSmoke},
	}
	require.NoError(t, store.SaveRuns(ctx, runs))

	all, err := store.ListRuns(ctx, storage.RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"early", "late", "undated"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[0].CreatedAt.Equal(day))
	assert.True(t, all[2].CreatedAt.IsZero())
	assert.Empty(t, all[2].WebsiteName)
	assert.Equal(t, domain.RawRecord{"total_requests": float64(10)}, all[1].Payload)

	smoke, err := store.ListRuns(ctx, storage.RunFilter{TestType: domain.TestTypeSmoke})
	require.NoError(t, err)
	assert.Len(t, smoke, 2)

	site, err := store.ListRuns(ctx, storage.RunFilter{Website: "a.com"})
	require.NoError(t, err)
	require.Len(t, site, 1)
	assert.Equal(t, "late", site[0].ID)

	windowed, err := store.ListRuns(ctx, storage.RunFilter{Start: day.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "late", windowed[0].ID)
}

func TestSQLiteStorage_GetRun(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, &domain.RunRecord{ID: "r1", TestType: domain.TestTypeSEO, Status: "pass"}))
	require.NoError(t, store.SaveRun(ctx, &domain.RunRecord{ID: "r1", TestType: domain.TestTypeSEO, Status: "fail"}))

	run, err := store.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "fail", run.Status)
	assert.Equal(t, domain.RawRecord{}, run.Payload)

	_, err = store.GetRun(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/normalizer"
)

func newTestCollector(t *testing.T, mux *http.ServeMux) *githubCollector {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return newCollector(client, newRateLimiter(0))
}

func TestWorkflowRunStatus(t *testing.T) {
	tests := []struct {
		status     string
		conclusion string
		want       string
	}{
		{"completed", "success", domain.RunStatusPass},
		{"completed", "failure", domain.RunStatusFail},
		{"completed", "timed_out", domain.RunStatusFail},
		{"queued", "", domain.RunStatusRunning},
		{"in_progress", "", domain.RunStatusRunning},
		{"waiting", "", domain.RunStatusRunning},
		{"completed", "cancelled", "cancelled"},
		{"completed", "skipped", "skipped"},
		{"completed", "", "completed"},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.conclusion, func(t *testing.T) {
			assert.Equal(t, tt.want, workflowRunStatus(tt.status, tt.conclusion))
		})
	}
}

func TestCreatedFilter(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-01..2024-01-31", createdFilter(since, until))
	assert.Equal(t, ">=2024-01-01", createdFilter(since, time.Time{}))
	assert.Equal(t, "<=2024-01-31", createdFilter(time.Time{}, until))
	assert.Equal(t, "", createdFilter(time.Time{}, time.Time{}))
}

func workflowRunJSON(id int, conclusion string) string {
	return fmt.Sprintf(`{
		"id": %d,
		"name": "e2e",
		"status": "completed",
		"conclusion": %q,
		"event": "push",
		"head_branch": "main",
		"html_url": "https://github.com/acme/shop/actions/runs/%d",
		"created_at": "2024-01-10T09:00:00Z",
		"run_started_at": "2024-01-10T09:00:00Z",
		"updated_at": "2024-01-10T09:01:30Z"
	}`, id, conclusion, id)
}

func TestGetWorkflowRuns_Paginates(t *testing.T) {
	var created string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		created = r.URL.Query().Get("created")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprintf(w, `{"total_count":2,"workflow_runs":[%s]}`, workflowRunJSON(2, "failure"))
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
		fmt.Fprintf(w, `{"total_count":2,"workflow_runs":[%s]}`, workflowRunJSON(1, "success"))
	})

	c := newTestCollector(t, mux)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	runs, err := c.GetWorkflowRuns(context.Background(), "acme", "shop", since, time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ">=2024-01-01", created)

	first := runs[0]
	assert.Equal(t, domain.TestTypeSmoke, first.TestType)
	assert.Equal(t, "shop", first.WebsiteName)
	assert.Equal(t, domain.RunStatusPass, first.Status)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), first.CreatedAt)
	assert.Equal(t, domain.RunStatusFail, runs[1].Status)

	results := normalizer.NormalizeSmokeResults(first.Payload["results"])
	require.Len(t, results, 1)
	assert.Equal(t, "e2e", results[0].TestName)
	assert.Equal(t, domain.TestStatusPass, results[0].Status)
	assert.Equal(t, int64(90000), results[0].DurationMs)

	failed := normalizer.NormalizeSmokeResults(runs[1].Payload["results"])
	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].ErrorMessage)
	assert.Contains(t, *failed[0].ErrorMessage, "failure")
}

func TestGetWorkflowRuns_StableIDs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"total_count":1,"workflow_runs":[%s]}`, workflowRunJSON(7, "success"))
	})
	c := newTestCollector(t, mux)

	a, err := c.GetWorkflowRuns(context.Background(), "acme", "shop", time.Time{}, time.Time{})
	require.NoError(t, err)
	b, err := c.GetWorkflowRuns(context.Background(), "acme", "shop", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, a[0].ID, b[0].ID)
}

func TestGetWorkflowRuns_ActionsDisabled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/empty/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	c := newTestCollector(t, mux)

	runs, err := c.GetWorkflowRuns(context.Background(), "acme", "empty", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGetRepositories_SkipsArchived(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"shop"},{"name":"old","archived":true},{"name":"blog"}]`)
	})
	c := newTestCollector(t, mux)

	repos, err := c.GetRepositories(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop", "blog"}, repos)
}

func TestCollectRepositories_SkipsFailingRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"total_count":1,"workflow_runs":[%s]}`, workflowRunJSON(1, "success"))
	})
	mux.HandleFunc("/repos/acme/broken/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})
	c := newTestCollector(t, mux)

	var mu sync.Mutex
	var progress []float64
	runs, err := c.CollectRepositories(context.Background(), "acme", []string{"shop", "broken"}, time.Time{}, time.Time{},
		func(repo string, p float64) {
			mu.Lock()
			defer mu.Unlock()
			progress = append(progress, p)
		})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "shop", runs[0].WebsiteName)
	assert.ElementsMatch(t, []float64{0.5, 1}, progress)
}

func TestGetWorkflowRuns_RetriesAfterSecondaryRateLimit(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"You have exceeded a secondary rate limit","documentation_url":"https://docs.github.com/rest/overview/resources-in-the-rest-api#secondary-rate-limits"}`)
			return
		}
		fmt.Fprintf(w, `{"total_count":1,"workflow_runs":[%s]}`, workflowRunJSON(1, "success"))
	})
	c := newTestCollector(t, mux)

	runs, err := c.GetWorkflowRuns(context.Background(), "acme", "shop", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, 2, calls)
}

func TestGetWorkflowRuns_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		code   apperrors.ErrCode
	}{
		{"bad token", http.StatusUnauthorized, `{"message":"Bad credentials"}`, nil, apperrors.ErrCodeUnauthorized},
		{"no access", http.StatusForbidden, `{"message":"Resource not accessible by integration"}`, nil, apperrors.ErrCodeForbidden},
		{"secondary limit", http.StatusForbidden,
			`{"message":"You have exceeded a secondary rate limit","documentation_url":"https://docs.github.com/rest/overview/resources-in-the-rest-api#secondary-rate-limits"}`,
			apperrors.IsRateLimited, apperrors.ErrCodeRateLimited},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, nil, apperrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/acme/shop/actions/runs", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			c := newTestCollector(t, mux)

			_, err := c.GetWorkflowRuns(context.Background(), "acme", "shop", time.Time{}, time.Time{})
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
			if tt.check != nil {
				assert.True(t, tt.check(err))
			}
		})
	}
}

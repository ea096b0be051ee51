package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
)

const (
	// maxConcurrentRepos bounds the repositories collected in parallel
	maxConcurrentRepos  = 5
	maxRateLimitRetries = 3
	defaultAbuseBackoff = time.Minute
)

// githubCollector implements Collector using GitHub API
type githubCollector struct {
	client      *github.Client
	rateLimiter RateLimiter
}

// NewGitHubCollector creates a new GitHub collector
func NewGitHubCollector(token string) Collector {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return newCollector(github.NewClient(tc), NewRateLimiter())
}

func newCollector(client *github.Client, limiter RateLimiter) *githubCollector {
	return &githubCollector{
		client:      client,
		rateLimiter: limiter,
	}
}

// GetRepositories lists the repository names of an owner
func (c *githubCollector) GetRepositories(ctx context.Context, owner string) ([]string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var names []string
	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		repos, resp, err := c.client.Repositories.List(ctx, owner, opts)
		if err != nil {
			return nil, classifyError(fmt.Errorf("failed to list repositories: %w", err))
		}

		c.updateRateLimitFromResponse(resp)

		for _, repo := range repos {
			if repo.GetArchived() {
				continue
			}
			names = append(names, repo.GetName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return names, nil
}

// GetWorkflowRuns retrieves the workflow runs of a repository created in [since, until]
func (c *githubCollector) GetWorkflowRuns(ctx context.Context, owner, repo string, since, until time.Time) ([]domain.RunRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var runs []domain.RunRecord
	opts := &github.ListWorkflowRunsOptions{
		Created:     createdFilter(since, until),
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := c.listWorkflowRuns(ctx, owner, repo, opts)
		if err != nil {
			// Actions disabled or repository empty
			if resp != nil && (resp.StatusCode == 404 || resp.StatusCode == 409) {
				return runs, nil
			}
			return nil, classifyError(fmt.Errorf("failed to list workflow runs for %s/%s: %w", owner, repo, err))
		}

		c.updateRateLimitFromResponse(resp)

		for _, wr := range page.WorkflowRuns {
			runs = append(runs, workflowRunToRecord(repo, wr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// CollectRepositories imports workflow runs for several repositories concurrently.
// A failing repository is logged and skipped.
func (c *githubCollector) CollectRepositories(ctx context.Context, owner string, repos []string, since, until time.Time, onProgress ProgressCallback) ([]domain.RunRecord, error) {
	var allRuns []domain.RunRecord
	var mu sync.Mutex
	var wg sync.WaitGroup
	var done int
	errCh := make(chan error, len(repos))

	semaphore := make(chan struct{}, maxConcurrentRepos)

	for _, repo := range repos {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			runs, err := c.GetWorkflowRuns(ctx, owner, name, since, until)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				errCh <- fmt.Errorf("failed to get workflow runs for %s: %w", name, err)
			} else {
				allRuns = append(allRuns, runs...)
			}
			if onProgress != nil {
				onProgress(name, float64(done)/float64(len(repos)))
			}
		}(repo)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		slog.Warn("skipping repository", "owner", owner, "error", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return allRuns, nil
}

// listWorkflowRuns fetches one page, backing off and retrying on rate limit errors
func (c *githubCollector) listWorkflowRuns(ctx context.Context, owner, repo string, opts *github.ListWorkflowRunsOptions) (*github.WorkflowRuns, *github.Response, error) {
	for attempt := 0; ; attempt++ {
		page, resp, err := c.client.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
		if err == nil || attempt >= maxRateLimitRetries || !c.backoffOnRateLimit(err) {
			return page, resp, err
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, resp, err
		}
	}
}

// backoffOnRateLimit records the wait required by a rate limit error and
// reports whether err was one
func (c *githubCollector) backoffOnRateLimit(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		c.rateLimiter.UpdateLimit(0, rateErr.Rate.Reset.Time)
		return true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		wait := defaultAbuseBackoff
		if abuseErr.RetryAfter != nil {
			wait = *abuseErr.RetryAfter
		}
		c.rateLimiter.Backoff(time.Now().Add(wait))
		return true
	}
	return false
}

// classifyError maps GitHub API failures onto application error codes
func classifyError(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return wrapAppError(apperrors.NewRateLimitedError("github rate limit exceeded"), err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case 401:
			return wrapAppError(apperrors.NewUnauthorizedError("github token rejected"), err)
		case 403:
			return wrapAppError(apperrors.NewForbiddenError("github token lacks access"), err)
		}
	}
	return err
}

func wrapAppError(appErr *apperrors.AppError, err error) *apperrors.AppError {
	appErr.Err = err
	return appErr
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (c *githubCollector) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 && !resp.Rate.Reset.Time.IsZero() {
		c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

// createdFilter builds the "created" search qualifier for a date window
func createdFilter(since, until time.Time) string {
	const layout = "2006-01-02"
	switch {
	case !since.IsZero() && !until.IsZero():
		return since.Format(layout) + ".." + until.Format(layout)
	case !since.IsZero():
		return ">=" + since.Format(layout)
	case !until.IsZero():
		return "<=" + until.Format(layout)
	default:
		return ""
	}
}

// workflowRunStatus maps a workflow run's status and conclusion to a run status
func workflowRunStatus(status, conclusion string) string {
	switch conclusion {
	case "success":
		return domain.RunStatusPass
	case "failure", "timed_out", "startup_failure":
		return domain.RunStatusFail
	}
	switch status {
	case "queued", "in_progress", "waiting", "requested", "pending":
		return domain.RunStatusRunning
	}
	if conclusion != "" {
		return conclusion
	}
	return status
}

// workflowRunToRecord converts a workflow run into a smoke run whose payload
// carries one result per run
func workflowRunToRecord(repo string, wr *github.WorkflowRun) domain.RunRecord {
	status := workflowRunStatus(wr.GetStatus(), wr.GetConclusion())
	createdAt := wr.GetCreatedAt().Time.UTC()

	var durationMs int64
	started := wr.GetRunStartedAt().Time
	updated := wr.GetUpdatedAt().Time
	if status != domain.RunStatusRunning && !started.IsZero() && updated.After(started) {
		durationMs = updated.Sub(started).Milliseconds()
	}

	result := map[string]interface{}{
		"id":          fmt.Sprintf("%d", wr.GetID()),
		"test_name":   wr.GetName(),
		"category":    wr.GetEvent(),
		"status":      status,
		"duration_ms": durationMs,
		"created_at":  createdAt.Format(time.RFC3339),
	}
	if status == domain.RunStatusFail {
		result["error_message"] = "workflow concluded with " + wr.GetConclusion()
	}

	// Re-importing the same run yields the same ID.
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(wr.GetHTMLURL()))
	if wr.GetHTMLURL() == "" {
		id = uuid.New()
	}

	return domain.RunRecord{
		ID:          id.String(),
		TestType:    domain.TestTypeSmoke,
		WebsiteName: repo,
		Status:      status,
		CreatedAt:   createdAt,
		Payload: domain.RawRecord{
			"workflow": wr.GetName(),
			"branch":   wr.GetHeadBranch(),
			"url":      wr.GetHTMLURL(),
			"results":  []interface{}{result},
		},
	}
}

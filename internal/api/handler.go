package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/aggregator"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage"
)

// Handler handles API requests
type Handler struct {
	dashboard    aggregator.Dashboard
	timelineDays int
	location     *time.Location
}

// NewHandler creates a new API handler. loc must match the dashboard's
// location so that start/end filters follow the same day boundaries.
func NewHandler(dashboard aggregator.Dashboard, timelineDays int, loc *time.Location) *Handler {
	if timelineDays <= 0 {
		timelineDays = aggregator.DefaultTimelineDays
	}
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		dashboard:    dashboard,
		timelineDays: timelineDays,
		location:     loc,
	}
}

// GetStats returns pass/fail counters for the filtered runs
// GET /api/v1/runs/stats
func (h *Handler) GetStats(c *gin.Context) {
	filter, err := parseFilter(c, h.location)
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.dashboard.GetStats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// GetTimeline returns the rolling daily timeline
// GET /api/v1/runs/timeline
func (h *Handler) GetTimeline(c *gin.Context) {
	filter, err := parseFilter(c, h.location)
	if err != nil {
		respondError(c, err)
		return
	}
	days := parseIntQuery(c, "days", h.timelineDays)
	if days > aggregator.MaxTimelineDays {
		days = aggregator.MaxTimelineDays
	}

	buckets, err := h.dashboard.GetTimeline(c.Request.Context(), filter, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": buckets,
	})
}

// GetWebsiteGroups returns runs grouped by website
// GET /api/v1/runs/groups/website
func (h *Handler) GetWebsiteGroups(c *gin.Context) {
	filter, err := parseFilter(c, h.location)
	if err != nil {
		respondError(c, err)
		return
	}

	groups, err := h.dashboard.GetWebsiteGroups(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": groups,
	})
}

// GetDateGroups returns runs grouped by calendar day
// GET /api/v1/runs/groups/date
func (h *Handler) GetDateGroups(c *gin.Context) {
	filter, err := parseFilter(c, h.location)
	if err != nil {
		respondError(c, err)
		return
	}

	groups, err := h.dashboard.GetDateGroups(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": groups,
	})
}

// GetWebsiteSummaries returns per-website stats
// GET /api/v1/websites/summary
func (h *Handler) GetWebsiteSummaries(c *gin.Context) {
	filter, err := parseFilter(c, h.location)
	if err != nil {
		respondError(c, err)
		return
	}

	summaries, err := h.dashboard.GetWebsiteSummaries(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summaries,
	})
}

// GetRunResult returns the normalized result of one run
// GET /api/v1/runs/:id/result
func (h *Handler) GetRunResult(c *gin.Context) {
	id := c.Param("id")

	result, err := h.dashboard.GetRunResult(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// IngestRuns stores a batch of raw run rows
// POST /api/v1/runs
func (h *Handler) IngestRuns(c *gin.Context) {
	var rows []interface{}
	if err := c.ShouldBindJSON(&rows); err != nil {
		respondError(c, apperrors.NewBadRequestError("body must be a JSON array of run objects"))
		return
	}

	runs, err := h.dashboard.IngestRuns(c.Request.Context(), rows)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"count": len(runs),
			"ids":   ids,
		},
	})
}

// Normalize converts a raw payload of the given test type
// POST /api/v1/normalize/:type
func (h *Handler) Normalize(c *gin.Context) {
	testType, ok := domain.ParseTestType(c.Param("type"))
	if !ok {
		respondError(c, apperrors.NewBadRequestError("unknown test type: "+c.Param("type")))
		return
	}

	var raw interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondError(c, apperrors.NewBadRequestError("body must be valid JSON"))
		return
	}

	result, err := h.dashboard.Normalize(testType, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// parseFilter parses the run filter from query parameters.
// start and end are calendar days in loc; end covers its whole day.
func parseFilter(c *gin.Context, loc *time.Location) (storage.RunFilter, error) {
	var filter storage.RunFilter

	if s := c.Query("test_type"); s != "" {
		t, ok := domain.ParseTestType(s)
		if !ok {
			return filter, apperrors.NewBadRequestError("unknown test type: " + s)
		}
		filter.TestType = t
	}
	filter.Website = c.Query("website")

	if s := c.Query("start"); s != "" {
		start, err := aggregator.ParseDay(s, loc)
		if err != nil {
			return filter, apperrors.NewBadRequestError("start must be YYYY-MM-DD")
		}
		filter.Start = start
	}
	if s := c.Query("end"); s != "" {
		end, err := aggregator.ParseDay(s, loc)
		if err != nil {
			return filter, apperrors.NewBadRequestError("end must be YYYY-MM-DD")
		}
		filter.End = aggregator.EndOfDay(end)
	}

	return filter, nil
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		status = http.StatusForbidden
	case apperrors.ErrCodeBadRequest:
		status = http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

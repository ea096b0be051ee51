package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func TestGetStats(t *testing.T) {
	var query string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/stats", r.URL.Path)
		query = r.URL.RawQuery
		w.Write([]byte(`{"data":{"passed":2,"failed":1,"running":0,"total":3,"passRate":"66.7"}}`))
	})

	stats, err := c.GetStats(Filter{
		TestType: domain.TestTypeSmoke,
		Website:  "shop",
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, domain.Rate(66.7), stats.PassRate)
	assert.Equal(t, "start=2024-01-01&test_type=smoke&website=shop", query)
}

func TestGetTimeline(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("days"))
		w.Write([]byte(`{"data":[{"date":"2024-01-08","dayName":"Mon","runs":[],"stats":{"passRate":"0.0"}},{"date":"2024-01-09","dayName":"Tue","runs":[],"stats":{"passRate":"0.0"}},{"date":"2024-01-10","dayName":"Wed","runs":[],"stats":{"passRate":"0.0"}}]}`))
	})

	buckets, err := c.GetTimeline(Filter{}, 3)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "Mon", buckets[0].DayName)
}

func TestGetDateGroups_PreservesOrder(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"2024-01-10":[{"id":"a"}],"Unknown":[{"id":"b"}],"2024-01-09":[{"id":"c"}]}}`))
	})

	groups, err := c.GetDateGroups(Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-10", "Unknown", "2024-01-09"}, groups.Keys())
}

func TestNormalize(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/normalize/load", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &raw))
		assert.Equal(t, float64(100), raw["totalRequests"])

		w.Write([]byte(`{"data":{"testType":"load","load":{"totalRequests":100,"throughput":"10.00","errorRate":"0.00"}}}`))
	})

	res, err := c.Normalize(domain.TestTypeLoad, map[string]interface{}{"totalRequests": 100})
	require.NoError(t, err)
	require.NotNil(t, res.Load)
	assert.Equal(t, "10.00", res.Load.Throughput)
}

func TestIngestRuns(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"count":1,"ids":["a"]}}`))
	})

	res, err := c.IngestRuns([]interface{}{map[string]interface{}{"id": "a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"a"}, res.IDs)
}

func TestAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"run not found"}}`))
	})

	_, err := c.GetRunResult("missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "run not found", apiErr.Message)
}

func TestHealthCheck(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	assert.NoError(t, c.HealthCheck())
}

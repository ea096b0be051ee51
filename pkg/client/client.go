package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/normalizer"
)

// Client is the API client for qa-dashboard-metrics
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Filter narrows the runs a query covers. Zero fields are ignored.
type Filter struct {
	TestType domain.TestType
	Website  string
	Start    time.Time
	End      time.Time
}

// IngestResult is the response of IngestRuns
type IngestResult struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error: %d %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Message)
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetStats retrieves pass/fail statistics
func (c *Client) GetStats(filter Filter) (*domain.RunStats, error) {
	var response struct {
		Data *domain.RunStats `json:"data"`
	}
	if err := c.get("/api/v1/runs/stats", c.buildFilterParams(filter), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetTimeline retrieves the daily timeline for the last days days
func (c *Client) GetTimeline(filter Filter, days int) ([]domain.TimelineBucket, error) {
	params := c.buildFilterParams(filter)
	if days > 0 {
		params.Set("days", fmt.Sprintf("%d", days))
	}

	var response struct {
		Data []domain.TimelineBucket `json:"data"`
	}
	if err := c.get("/api/v1/runs/timeline", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetWebsiteSummaries retrieves per-website statistics
func (c *Client) GetWebsiteSummaries(filter Filter) ([]domain.WebsiteSummary, error) {
	var response struct {
		Data []domain.WebsiteSummary `json:"data"`
	}
	if err := c.get("/api/v1/websites/summary", c.buildFilterParams(filter), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetDateGroups retrieves runs grouped by day, in key order
func (c *Client) GetDateGroups(filter Filter) (*domain.RunGroups, error) {
	var response struct {
		Data *domain.RunGroups `json:"data"`
	}
	if err := c.get("/api/v1/runs/groups/date", c.buildFilterParams(filter), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRunResult retrieves the normalized result of a run
func (c *Client) GetRunResult(id string) (*normalizer.Result, error) {
	path := fmt.Sprintf("/api/v1/runs/%s/result", url.PathEscape(id))

	var response struct {
		Data *normalizer.Result `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Normalize converts a raw payload on the server
func (c *Client) Normalize(testType domain.TestType, raw interface{}) (*normalizer.Result, error) {
	path := fmt.Sprintf("/api/v1/normalize/%s", url.PathEscape(string(testType)))

	var response struct {
		Data *normalizer.Result `json:"data"`
	}
	if err := c.post(path, raw, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// IngestRuns uploads raw run rows
func (c *Client) IngestRuns(rows []interface{}) (*IngestResult, error) {
	var response struct {
		Data *IngestResult `json:"data"`
	}
	if err := c.post("/api/v1/runs", rows, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) buildFilterParams(filter Filter) url.Values {
	params := url.Values{}
	if filter.TestType != "" {
		params.Set("test_type", string(filter.TestType))
	}
	if filter.Website != "" {
		params.Set("website", filter.Website)
	}
	if !filter.Start.IsZero() {
		params.Set("start", filter.Start.Format("2006-01-02"))
	}
	if !filter.End.IsZero() {
		params.Set("end", filter.End.Format("2006-01-02"))
	}
	return params
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func (c *Client) post(path string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func decodeResponse(resp *http.Response, result interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(body)}

		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

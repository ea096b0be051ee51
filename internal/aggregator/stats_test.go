package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

func runsWithStatus(statuses ...string) []domain.RunRecord {
	runs := make([]domain.RunRecord, len(statuses))
	for i, s := range statuses {
		runs[i] = domain.RunRecord{Status: s}
	}
	return runs
}

func TestCalculateTestStats(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     domain.RunStats
		wantRate string
	}{
		{
			name:     "empty",
			statuses: nil,
			want:     domain.RunStats{},
			wantRate: "0.0",
		},
		{
			name:     "case-insensitive with unknown status",
			statuses: []string{"Pass", "FAIL", "running", "weird"},
			want:     domain.RunStats{Passed: 1, Failed: 1, Running: 1, Total: 4, PassRate: 25},
			wantRate: "25.0",
		},
		{
			name:     "missing status only counts in total",
			statuses: []string{"", "pass"},
			want:     domain.RunStats{Passed: 1, Total: 2, PassRate: 50},
			wantRate: "50.0",
		},
		{
			name:     "rounds to one decimal",
			statuses: []string{"pass", "pass", "fail"},
			want:     domain.RunStats{Passed: 2, Failed: 1, Total: 3, PassRate: 66.7},
			wantRate: "66.7",
		},
		{
			name:     "all passing",
			statuses: []string{"PASS", "pass"},
			want:     domain.RunStats{Passed: 2, Total: 2, PassRate: 100},
			wantRate: "100.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTestStats(runsWithStatus(tt.statuses...))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRate, got.PassRate.String())
		})
	}
}

func TestCalculateTestStats_OrderIndependent(t *testing.T) {
	a := CalculateTestStats(runsWithStatus("pass", "fail", "running", "pass", "skipped"))
	b := CalculateTestStats(runsWithStatus("skipped", "pass", "running", "fail", "pass"))
	assert.Equal(t, a, b)
}

func TestRunStats_JSON(t *testing.T) {
	data, err := CalculateTestStats(runsWithStatus("pass", "fail", "fail")).PassRate.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"33.3"`, string(data))
}

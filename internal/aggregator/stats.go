package aggregator

import (
	"strings"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// CalculateTestStats counts runs by status. Status matching ignores case;
// runs with any other status (or none) count towards Total only.
func CalculateTestStats(runs []domain.RunRecord) domain.RunStats {
	var stats domain.RunStats
	for _, run := range runs {
		stats.Total++
		switch strings.ToLower(run.Status) {
		case domain.RunStatusPass:
			stats.Passed++
		case domain.RunStatusFail:
			stats.Failed++
		case domain.RunStatusRunning:
			stats.Running++
		}
	}
	stats.PassRate = domain.NewRate(stats.Passed, stats.Total)
	return stats
}

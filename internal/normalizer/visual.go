package normalizer

import (
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// NormalizeVisual converts a raw visual regression row, or returns nil when raw is not an object
func NormalizeVisual(raw interface{}) *domain.VisualResult {
	r, ok := asRecord(raw)
	if !ok {
		return nil
	}

	return &domain.VisualResult{
		BaselineURL:     str(r, "baseline_url"),
		CurrentURL:      str(r, "current_url"),
		DiffURL:         str(r, "diff_url"),
		Comparisons:     comparisons(r["comparisons"]),
		IssuesDetected:  int(integer(r, "issues_detected")),
		SimilarityScore: float(r, "similarity_score"),
	}
}

func comparisons(v interface{}) []domain.VisualComparison {
	items := records(decodeList(v))
	out := make([]domain.VisualComparison, 0, len(items))
	for _, r := range items {
		diff := float(r, "diff_percentage", "diffPercentage", "mismatch")
		out = append(out, domain.VisualComparison{
			Name:           str(r, "name", "page"),
			Viewport:       str(r, "viewport"),
			BaselineURL:    str(r, "baseline_url", "baselineUrl"),
			CurrentURL:     str(r, "current_url", "currentUrl"),
			DiffURL:        str(r, "diff_url", "diffUrl"),
			DiffPercentage: diff,
			Passed:         boolean(r, diff == 0, "passed"),
		})
	}
	return out
}

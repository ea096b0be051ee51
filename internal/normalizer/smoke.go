package normalizer

import (
	"strings"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// NormalizeSmokeResults converts a list of raw smoke-test rows.
// Anything that is not a list yields an empty slice; non-object elements are skipped.
// Already normalized results are returned as a copy.
func NormalizeSmokeResults(raw interface{}) []domain.NormalizedTestResult {
	switch v := raw.(type) {
	case []domain.NormalizedTestResult:
		out := make([]domain.NormalizedTestResult, len(v))
		copy(out, v)
		return out
	case domain.NormalizedTestResult:
		return []domain.NormalizedTestResult{v}
	}

	items, ok := asList(raw)
	if !ok {
		return []domain.NormalizedTestResult{}
	}

	results := make([]domain.NormalizedTestResult, 0, len(items))
	for _, r := range records(items) {
		results = append(results, NormalizeSmokeResult(r))
	}
	return results
}

// NormalizeSmokeResult maps one raw smoke row onto the canonical field names.
// The camelCase names are accepted too so that canonical output normalizes to itself.
func NormalizeSmokeResult(r domain.RawRecord) domain.NormalizedTestResult {
	return domain.NormalizedTestResult{
		ID:            str(r, "id"),
		TestName:      str(r, "test_name", "testName"),
		Category:      optStr(r, "category"),
		Status:        parseTestStatus(str(r, "status")),
		DurationMs:    integer(r, "duration_ms", "durationMs"),
		ErrorMessage:  optStr(r, "error_message", "errorMessage"),
		ScreenshotURL: optStr(r, "screenshot_url", "screenshotUrl"),
		CreatedAt:     optTime(r, "created_at", "createdAt"),
	}
}

func parseTestStatus(s string) domain.TestStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "passed", "success":
		return domain.TestStatusPass
	default:
		return domain.TestStatusFail
	}
}

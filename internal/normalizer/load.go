package normalizer

import (
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// NormalizeLoad derives the load test summary of a raw row, or returns nil when raw is not an object.
// Counters are not validated: failed > total yields negative successful requests.
func NormalizeLoad(raw interface{}) *domain.LoadTestSummary {
	r, ok := asRecord(raw)
	if !ok {
		return nil
	}

	total := integer(r, "total_requests")
	failed := integer(r, "failed_requests")
	duration := float(r, "duration_seconds")

	var throughput, errorRate float64
	if duration > 0 {
		throughput = float64(total) / duration
	}
	if total != 0 {
		errorRate = float64(failed) / float64(total) * 100
	}

	return &domain.LoadTestSummary{
		TotalRequests:       total,
		SuccessfulRequests:  total - failed,
		FailedRequests:      failed,
		Duration:            duration,
		Throughput:          domain.FormatFixed2(throughput),
		ErrorRate:           domain.FormatFixed2(errorRate),
		AvgLatency:          float(r, "avg_latency_ms"),
		P95Latency:          float(r, "p95_latency_ms"),
		P99Latency:          float(r, "p99_latency_ms"),
		LatencyDistribution: latencyDistribution(r["latency_distribution"]),
	}
}

func latencyDistribution(v interface{}) []domain.LatencyBucket {
	items := records(decodeList(v))
	out := make([]domain.LatencyBucket, 0, len(items))
	for _, r := range items {
		out = append(out, domain.LatencyBucket{
			Range: str(r, "range", "bucket", "label"),
			Count: integer(r, "count"),
		})
	}
	return out
}

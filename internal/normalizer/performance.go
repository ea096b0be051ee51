package normalizer

import (
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/rating"
)

var metricLabels = map[string]string{
	rating.MetricLCP:  "Largest Contentful Paint",
	rating.MetricFID:  "First Input Delay",
	rating.MetricCLS:  "Cumulative Layout Shift",
	rating.MetricTTFB: "Time to First Byte",
	rating.MetricFCP:  "First Contentful Paint",
}

// Performance builds the metric view of a raw performance row, or nil when raw is not an object
func (n *Normalizer) Performance(raw interface{}) *domain.PerformanceMetricView {
	r, ok := asRecord(raw)
	if !ok {
		return nil
	}

	return &domain.PerformanceMetricView{
		LCP:        n.metric(r, rating.MetricLCP),
		FID:        n.metric(r, rating.MetricFID),
		CLS:        n.metric(r, rating.MetricCLS),
		TTFB:       n.metric(r, rating.MetricTTFB),
		FCP:        n.metric(r, rating.MetricFCP),
		Lighthouse: lighthouseScores(r),
	}
}

func (n *Normalizer) metric(r domain.RawRecord, name string) domain.MetricView {
	value := optFloat(r, name)
	return domain.MetricView{
		Value:  value,
		Rating: n.classifier.ClassifyOptional(name, value),
		Label:  metricLabels[name],
	}
}

func lighthouseScores(r domain.RawRecord) *domain.LighthouseScores {
	v, ok := lookup(r, "lighthouse_score", "lighthouseScore", "lighthouse")
	if !ok {
		return nil
	}
	scores := decodeObject(v)
	if len(scores) == 0 {
		return nil
	}
	return &domain.LighthouseScores{
		Performance:   float(scores, "performance"),
		Accessibility: float(scores, "accessibility"),
		BestPractices: float(scores, "best-practices", "bestPractices", "best_practices"),
		SEO:           float(scores, "seo"),
	}
}

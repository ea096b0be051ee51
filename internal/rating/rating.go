package rating

import (
	"math"
	"strings"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// Metric names with Web Vitals thresholds
const (
	MetricLCP  = "lcp"
	MetricFID  = "fid"
	MetricCLS  = "cls"
	MetricTTFB = "ttfb"
	MetricFCP  = "fcp"
)

// Threshold is the pair of boundaries for one metric.
// Values at or below Good are good, values at or above Poor are poor.
type Threshold struct {
	Good float64 `yaml:"good" json:"good"`
	Poor float64 `yaml:"poor" json:"poor"`
}

// Thresholds maps lower-case metric names to their boundaries
type Thresholds map[string]Threshold

// DefaultThresholds returns the Core Web Vitals threshold table
func DefaultThresholds() Thresholds {
	return Thresholds{
		MetricLCP:  {Good: 2500, Poor: 4000},
		MetricFID:  {Good: 100, Poor: 300},
		MetricCLS:  {Good: 0.1, Poor: 0.25},
		MetricTTFB: {Good: 800, Poor: 1800},
		MetricFCP:  {Good: 1800, Poor: 3000},
	}
}

// Classifier rates metric values against a fixed threshold table
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier owning a copy of thresholds
func NewClassifier(thresholds Thresholds) *Classifier {
	owned := make(Thresholds, len(thresholds))
	for name, t := range thresholds {
		owned[strings.ToLower(name)] = t
	}
	return &Classifier{thresholds: owned}
}

// NewDefaultClassifier creates a classifier with the Core Web Vitals table
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultThresholds())
}

// Classify returns the rating of value for the named metric.
// Unknown metric names and NaN rate as unknown.
func (c *Classifier) Classify(metric string, value float64) domain.Rating {
	t, ok := c.thresholds[strings.ToLower(metric)]
	if !ok || math.IsNaN(value) {
		return domain.RatingUnknown
	}
	switch {
	case value <= t.Good:
		return domain.RatingGood
	case value >= t.Poor:
		return domain.RatingPoor
	default:
		return domain.RatingNeedsImprovement
	}
}

// ClassifyOptional rates a nullable value, returning unknown for nil
func (c *Classifier) ClassifyOptional(metric string, value *float64) domain.Rating {
	if value == nil {
		return domain.RatingUnknown
	}
	return c.Classify(metric, *value)
}

// Threshold returns the boundaries configured for metric
func (c *Classifier) Threshold(metric string) (Threshold, bool) {
	t, ok := c.thresholds[strings.ToLower(metric)]
	return t, ok
}

var defaultClassifier = NewDefaultClassifier()

// Classify rates value with the default Core Web Vitals table
func Classify(metric string, value float64) domain.Rating {
	return defaultClassifier.Classify(metric, value)
}

// Package normalizer converts raw tool payloads into canonical dashboard
// records. Every function tolerates missing, null or malformed input by
// returning the category's empty default; none of them return errors for
// bad data.
package normalizer

import (
	"fmt"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/qa-dashboard-metrics/internal/errors"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/rating"
)

// Result holds the normalized form of one payload. Exactly the field
// matching TestType is populated; singleton fields may still be nil when
// the payload was absent.
type Result struct {
	TestType      domain.TestType                     `json:"testType"`
	Smoke         []domain.NormalizedTestResult       `json:"smoke,omitempty"`
	Performance   *domain.PerformanceMetricView       `json:"performance,omitempty"`
	Accessibility *domain.AccessibilityViolationGroup `json:"accessibility,omitempty"`
	Security      *domain.SecurityResult              `json:"security,omitempty"`
	SEO           *domain.SEOResult                   `json:"seo,omitempty"`
	Pixel         *domain.PixelResult                 `json:"pixel,omitempty"`
	Visual        *domain.VisualResult                `json:"visual,omitempty"`
	Load          *domain.LoadTestSummary             `json:"load,omitempty"`
}

// Normalizer owns the classifier used for performance payloads
type Normalizer struct {
	classifier *rating.Classifier
}

// New creates a normalizer; a nil classifier uses the Core Web Vitals defaults
func New(classifier *rating.Classifier) *Normalizer {
	if classifier == nil {
		classifier = rating.NewDefaultClassifier()
	}
	return &Normalizer{classifier: classifier}
}

// Normalize dispatches raw to the adapter for testType
func (n *Normalizer) Normalize(testType domain.TestType, raw interface{}) (*Result, error) {
	res := &Result{TestType: testType}
	switch testType {
	case domain.TestTypeSmoke:
		res.Smoke = NormalizeSmokeResults(smokeList(raw))
	case domain.TestTypePerformance:
		res.Performance = n.Performance(raw)
	case domain.TestTypeAccessibility:
		res.Accessibility = NormalizeAccessibility(raw)
	case domain.TestTypeSecurity:
		res.Security = NormalizeSecurity(raw)
	case domain.TestTypeSEO:
		res.SEO = NormalizeSEO(raw)
	case domain.TestTypePixel:
		res.Pixel = NormalizePixel(raw)
	case domain.TestTypeVisual:
		res.Visual = NormalizeVisual(raw)
	case domain.TestTypeLoad:
		res.Load = NormalizeLoad(raw)
	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unsupported test type %q", testType))
	}
	return res, nil
}

// smokeList unwraps smoke rows stored under "results" or "tests".
// A single row object is treated as a one-element list.
func smokeList(raw interface{}) interface{} {
	r, ok := asRecord(raw)
	if !ok {
		return raw
	}
	if v, ok := lookup(r, "results", "tests"); ok {
		return decodeList(v)
	}
	if _, ok := lookup(r, "test_name", "testName"); ok {
		return []interface{}{r}
	}
	return nil
}

var defaultNormalizer = New(nil)

// Normalize dispatches raw with the default classifier
func Normalize(testType domain.TestType, raw interface{}) (*Result, error) {
	return defaultNormalizer.Normalize(testType, raw)
}

// NormalizePerformance builds the metric view with the default classifier
func NormalizePerformance(raw interface{}) *domain.PerformanceMetricView {
	return defaultNormalizer.Performance(raw)
}

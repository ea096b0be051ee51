package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		value  float64
		want   domain.Rating
	}{
		{"lcp at good boundary", "lcp", 2500, domain.RatingGood},
		{"lcp just above good", "lcp", 2501, domain.RatingNeedsImprovement},
		{"lcp at poor boundary", "lcp", 4000, domain.RatingPoor},
		{"lcp well above poor", "lcp", 9000, domain.RatingPoor},
		{"lcp zero", "lcp", 0, domain.RatingGood},
		{"fid middle", "fid", 200, domain.RatingNeedsImprovement},
		{"fid at poor", "fid", 300, domain.RatingPoor},
		{"cls good", "cls", 0.1, domain.RatingGood},
		{"cls middle", "cls", 0.18, domain.RatingNeedsImprovement},
		{"cls poor", "cls", 0.25, domain.RatingPoor},
		{"ttfb good", "ttfb", 800, domain.RatingGood},
		{"ttfb middle", "ttfb", 1200, domain.RatingNeedsImprovement},
		{"fcp poor", "fcp", 3000, domain.RatingPoor},
		{"upper-case metric name", "LCP", 1000, domain.RatingGood},
		{"mixed-case metric name", "Ttfb", 2000, domain.RatingPoor},
		{"unknown metric", "inp", 10, domain.RatingUnknown},
		{"unknown metric huge value", "tbt", 1e9, domain.RatingUnknown},
		{"negative value is good", "fcp", -5, domain.RatingGood},
		{"NaN is unknown", "lcp", math.NaN(), domain.RatingUnknown},
		{"positive infinity is poor", "lcp", math.Inf(1), domain.RatingPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.metric, tt.value))
		})
	}
}

func TestClassifier_Total(t *testing.T) {
	c := NewDefaultClassifier()
	for name, th := range DefaultThresholds() {
		for _, v := range []float64{th.Good - 1, th.Good, (th.Good + th.Poor) / 2, th.Poor, th.Poor + 1} {
			got := c.Classify(name, v)
			assert.Contains(t, []domain.Rating{domain.RatingGood, domain.RatingNeedsImprovement, domain.RatingPoor}, got,
				"%s=%v", name, v)
		}
	}
}

func TestClassifyOptional_Nil(t *testing.T) {
	c := NewDefaultClassifier()
	assert.Equal(t, domain.RatingUnknown, c.ClassifyOptional("lcp", nil))

	v := 1200.0
	assert.Equal(t, domain.RatingGood, c.ClassifyOptional("lcp", &v))
}

func TestNewClassifier_CopiesThresholds(t *testing.T) {
	th := Thresholds{"LCP": {Good: 10, Poor: 20}}
	c := NewClassifier(th)
	th["LCP"] = Threshold{Good: 1000, Poor: 2000}

	assert.Equal(t, domain.RatingPoor, c.Classify("lcp", 25))
	got, ok := c.Threshold("Lcp")
	assert.True(t, ok)
	assert.Equal(t, Threshold{Good: 10, Poor: 20}, got)
}

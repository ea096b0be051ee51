package domain

import "time"

// TestStatus is the outcome of a single smoke check
type TestStatus string

const (
	TestStatusPass TestStatus = "Pass"
	TestStatusFail TestStatus = "Fail"
)

// NormalizedTestResult is one smoke check in canonical form
type NormalizedTestResult struct {
	ID            string     `json:"id"`
	TestName      string     `json:"testName"`
	Category      *string    `json:"category,omitempty"`
	Status        TestStatus `json:"status"`
	DurationMs    int64      `json:"durationMs"`
	ErrorMessage  *string    `json:"errorMessage,omitempty"`
	ScreenshotURL *string    `json:"screenshotUrl,omitempty"`
	CreatedAt     *time.Time `json:"createdAt"`
}

// Rating is the qualitative classification of a performance metric
type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
	RatingUnknown          Rating = "unknown"
)

// MetricView is a single Web Vitals metric with its rating
type MetricView struct {
	Value  *float64 `json:"value"`
	Rating Rating   `json:"rating"`
	Label  string   `json:"label"`
}

// LighthouseScores holds the Lighthouse category scores
type LighthouseScores struct {
	Performance   float64 `json:"performance"`
	Accessibility float64 `json:"accessibility"`
	BestPractices float64 `json:"bestPractices"`
	SEO           float64 `json:"seo"`
}

// PerformanceMetricView is the dashboard view of a performance run
type PerformanceMetricView struct {
	LCP        MetricView        `json:"lcp"`
	FID        MetricView        `json:"fid"`
	CLS        MetricView        `json:"cls"`
	TTFB       MetricView        `json:"ttfb"`
	FCP        MetricView        `json:"fcp"`
	Lighthouse *LighthouseScores `json:"lighthouse,omitempty"`
}

// Metrics returns the metric views keyed by metric name in a fixed order
func (p *PerformanceMetricView) Metrics() []NamedMetric {
	return []NamedMetric{
		{Name: "lcp", View: p.LCP},
		{Name: "fid", View: p.FID},
		{Name: "cls", View: p.CLS},
		{Name: "ttfb", View: p.TTFB},
		{Name: "fcp", View: p.FCP},
	}
}

// NamedMetric pairs a metric name with its view
type NamedMetric struct {
	Name string
	View MetricView
}

// Impact is the WCAG severity of an accessibility violation
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactSerious  Impact = "serious"
	ImpactModerate Impact = "moderate"
	ImpactMinor    Impact = "minor"
)

// Violation is a single accessibility rule failure
type Violation struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Help        string   `json:"help"`
	HelpURL     string   `json:"helpUrl"`
	Nodes       int      `json:"nodes"`
	WCAG        []string `json:"wcag"`
}

// AccessibilityViolationGroup buckets violations by impact.
// Violations with any other impact are not represented.
type AccessibilityViolationGroup struct {
	Critical []Violation `json:"critical"`
	Serious  []Violation `json:"serious"`
	Moderate []Violation `json:"moderate"`
	Minor    []Violation `json:"minor"`
}

// NewAccessibilityViolationGroup returns a group with all four buckets empty
func NewAccessibilityViolationGroup() *AccessibilityViolationGroup {
	return &AccessibilityViolationGroup{
		Critical: []Violation{},
		Serious:  []Violation{},
		Moderate: []Violation{},
		Minor:    []Violation{},
	}
}

// Add appends v to the bucket for impact and reports whether the impact was recognized
func (g *AccessibilityViolationGroup) Add(impact Impact, v Violation) bool {
	switch impact {
	case ImpactCritical:
		g.Critical = append(g.Critical, v)
	case ImpactSerious:
		g.Serious = append(g.Serious, v)
	case ImpactModerate:
		g.Moderate = append(g.Moderate, v)
	case ImpactMinor:
		g.Minor = append(g.Minor, v)
	default:
		return false
	}
	return true
}

// Total returns the number of grouped violations
func (g *AccessibilityViolationGroup) Total() int {
	return len(g.Critical) + len(g.Serious) + len(g.Moderate) + len(g.Minor)
}

// HeaderCheck describes one inspected HTTP security header
type HeaderCheck struct {
	Present bool   `json:"present"`
	Value   string `json:"value,omitempty"`
}

// Vulnerability is a finding reported by the security scan
type Vulnerability struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation,omitempty"`
}

// SecurityResult is the canonical security scan result
type SecurityResult struct {
	SSLStatus       string                 `json:"sslStatus"`
	SSLGrade        string                 `json:"sslGrade"`
	SSLExpires      *time.Time             `json:"sslExpires"`
	SecurityHeaders map[string]HeaderCheck `json:"securityHeaders"`
	Vulnerabilities []Vulnerability        `json:"vulnerabilities"`
}

// StructuredDataItem is one structured data block found on the page
type StructuredDataItem struct {
	Type   string   `json:"type"`
	Format string   `json:"format,omitempty"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// SEOIssue is a single SEO finding
type SEOIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// SEOResult is the canonical SEO audit result
type SEOResult struct {
	Score          float64              `json:"score"`
	MetaTags       map[string]string    `json:"metaTags"`
	StructuredData []StructuredDataItem `json:"structuredData"`
	TechnicalSEO   map[string]bool      `json:"technicalSeo"`
	Issues         []SEOIssue           `json:"issues"`
}

// DetectedPixel is a tracking pixel found on the page
type DetectedPixel struct {
	Name     string `json:"name"`
	PixelID  string `json:"pixelId,omitempty"`
	Platform string `json:"platform,omitempty"`
	Detected bool   `json:"detected"`
}

// PixelEvent is an event fired by a tracking pixel
type PixelEvent struct {
	Pixel     string                 `json:"pixel"`
	Event     string                 `json:"event"`
	Timestamp float64                `json:"timestamp"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

// NetworkRequest is one entry of the captured network timeline
type NetworkRequest struct {
	URL        string  `json:"url"`
	Method     string  `json:"method,omitempty"`
	Status     int     `json:"status"`
	Type       string  `json:"type,omitempty"`
	StartTime  float64 `json:"startTime"`
	DurationMs float64 `json:"duration"`
}

// PixelResult is the canonical pixel-tracking audit result
type PixelResult struct {
	PixelsDetected  []DetectedPixel  `json:"pixelsDetected"`
	Events          []PixelEvent     `json:"events"`
	NetworkTimeline []NetworkRequest `json:"networkTimeline"`
}

// VisualComparison is one screenshot comparison of a visual regression run
type VisualComparison struct {
	Name           string  `json:"name"`
	Viewport       string  `json:"viewport,omitempty"`
	BaselineURL    string  `json:"baselineUrl,omitempty"`
	CurrentURL     string  `json:"currentUrl,omitempty"`
	DiffURL        string  `json:"diffUrl,omitempty"`
	DiffPercentage float64 `json:"diffPercentage"`
	Passed         bool    `json:"passed"`
}

// VisualResult is the canonical visual regression result
type VisualResult struct {
	BaselineURL     string             `json:"baselineUrl"`
	CurrentURL      string             `json:"currentUrl"`
	DiffURL         string             `json:"diffUrl"`
	Comparisons     []VisualComparison `json:"comparisons"`
	IssuesDetected  int                `json:"issuesDetected"`
	SimilarityScore float64            `json:"similarityScore"`
}

// LatencyBucket is one bar of a latency histogram
type LatencyBucket struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// LoadTestSummary is the canonical load test result.
// SuccessfulRequests is not clamped and goes negative on inconsistent input.
type LoadTestSummary struct {
	TotalRequests       int64           `json:"totalRequests"`
	SuccessfulRequests  int64           `json:"successfulRequests"`
	FailedRequests      int64           `json:"failedRequests"`
	Duration            float64         `json:"duration"`
	Throughput          string          `json:"throughput"`
	ErrorRate           string          `json:"errorRate"`
	AvgLatency          float64         `json:"avgLatency"`
	P95Latency          float64         `json:"p95Latency"`
	P99Latency          float64         `json:"p99Latency"`
	LatencyDistribution []LatencyBucket `json:"latencyDistribution"`
}

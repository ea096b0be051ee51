package domain

import "strings"

// TestType represents the kind of tool that produced a run
type TestType string

const (
	TestTypeSmoke         TestType = "smoke"
	TestTypePerformance   TestType = "performance"
	TestTypeAccessibility TestType = "accessibility"
	TestTypeSecurity      TestType = "security"
	TestTypeSEO           TestType = "seo"
	TestTypePixel         TestType = "pixel"
	TestTypeVisual        TestType = "visual"
	TestTypeLoad          TestType = "load"
)

// TestTypes lists every supported test type in display order
var TestTypes = []TestType{
	TestTypeSmoke,
	TestTypePerformance,
	TestTypeAccessibility,
	TestTypeSecurity,
	TestTypeSEO,
	TestTypePixel,
	TestTypeVisual,
	TestTypeLoad,
}

// ParseTestType matches s against the known test types, ignoring case
func ParseTestType(s string) (TestType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range TestTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// RawRecord is a loosely-typed tool payload or storage row
type RawRecord map[string]interface{}

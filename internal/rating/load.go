package rating

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadThresholds reads a YAML file of the form
//
//	lcp:
//	  good: 2000
//	  poor: 3500
//
// and merges its entries over DefaultThresholds.
func LoadThresholds(path string) (Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	return ParseThresholds(data)
}

// ParseThresholds merges YAML threshold overrides over DefaultThresholds
func ParseThresholds(data []byte) (Thresholds, error) {
	var overrides map[string]Threshold
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds: %w", err)
	}

	merged := DefaultThresholds()
	for name, t := range overrides {
		if t.Good > t.Poor {
			return nil, fmt.Errorf("threshold %q: good (%v) must not exceed poor (%v)", name, t.Good, t.Poor)
		}
		merged[strings.ToLower(name)] = t
	}
	return merged, nil
}

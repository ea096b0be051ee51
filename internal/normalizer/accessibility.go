package normalizer

import (
	"strings"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// NormalizeAccessibility groups raw axe violations by impact.
// The input is a list of violations, a JSON-encoded list, or an object
// carrying them under "violations". Violations with an unrecognized
// impact are dropped. The result always has all four buckets.
func NormalizeAccessibility(raw interface{}) *domain.AccessibilityViolationGroup {
	group := domain.NewAccessibilityViolationGroup()

	var items []interface{}
	if r, ok := asRecord(raw); ok {
		items = decodeList(r["violations"])
	} else {
		items = decodeList(raw)
	}

	for _, v := range records(items) {
		impact := domain.Impact(strings.ToLower(strings.TrimSpace(str(v, "impact"))))
		group.Add(impact, domain.Violation{
			ID:          str(v, "id"),
			Description: str(v, "description"),
			Help:        str(v, "help"),
			HelpURL:     str(v, "helpUrl", "help_url"),
			Nodes:       nodeCount(v["nodes"]),
			WCAG:        wcagTags(v["tags"]),
		})
	}
	return group
}

// nodeCount counts affected nodes, accepting either the node list or a count
func nodeCount(v interface{}) int {
	if l, ok := asList(v); ok {
		return len(l)
	}
	if f, ok := toFloat(v); ok && f > 0 {
		return int(f)
	}
	return 0
}

// wcagTags keeps the WCAG criteria tags of a violation
func wcagTags(v interface{}) []string {
	tags := []string{}
	for _, item := range decodeList(v) {
		tag, ok := item.(string)
		if ok && strings.HasPrefix(strings.ToLower(tag), "wcag") {
			tags = append(tags, tag)
		}
	}
	return tags
}

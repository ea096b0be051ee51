package normalizer

import (
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// NormalizeSEO converts a raw SEO audit row, or returns nil when raw is not an object
func NormalizeSEO(raw interface{}) *domain.SEOResult {
	r, ok := asRecord(raw)
	if !ok {
		return nil
	}

	return &domain.SEOResult{
		Score:          float(r, "seo_score"),
		MetaTags:       metaTags(r["meta_tags"]),
		StructuredData: structuredData(r["structured_data"]),
		TechnicalSEO:   technicalSEO(r["technical_seo"]),
		Issues:         seoIssues(r["issues"]),
	}
}

func metaTags(v interface{}) map[string]string {
	tags := make(map[string]string)
	for name, value := range decodeObject(v) {
		s, _ := toString(value)
		tags[name] = s
	}
	return tags
}

func technicalSEO(v interface{}) map[string]bool {
	checks := make(map[string]bool)
	for name, value := range decodeObject(v) {
		checks[name] = toBool(value)
	}
	return checks
}

// structuredData accepts a list of items or a single object
func structuredData(v interface{}) []domain.StructuredDataItem {
	items := records(decodeList(v))
	if len(items) == 0 {
		if obj := decodeObject(v); len(obj) > 0 {
			items = []domain.RawRecord{obj}
		}
	}

	out := make([]domain.StructuredDataItem, 0, len(items))
	for _, r := range items {
		var errs []string
		for _, e := range decodeList(r["errors"]) {
			if s, ok := toString(e); ok {
				errs = append(errs, s)
			}
		}
		out = append(out, domain.StructuredDataItem{
			Type:   str(r, "type", "@type"),
			Format: str(r, "format"),
			Valid:  boolean(r, len(errs) == 0, "valid"),
			Errors: errs,
		})
	}
	return out
}

// seoIssues accepts issue objects or bare issue messages
func seoIssues(v interface{}) []domain.SEOIssue {
	items := decodeList(v)
	out := make([]domain.SEOIssue, 0, len(items))
	for _, item := range items {
		if msg, ok := item.(string); ok {
			out = append(out, domain.SEOIssue{Message: msg})
			continue
		}
		r, ok := asRecord(item)
		if !ok {
			continue
		}
		out = append(out, domain.SEOIssue{
			Type:     str(r, "type"),
			Severity: str(r, "severity"),
			Message:  str(r, "message", "description"),
		})
	}
	return out
}

package normalizer

import (
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// NormalizeSecurity converts a raw security scan row, or returns nil when raw is not an object
func NormalizeSecurity(raw interface{}) *domain.SecurityResult {
	r, ok := asRecord(raw)
	if !ok {
		return nil
	}

	return &domain.SecurityResult{
		SSLStatus:       str(r, "ssl_status"),
		SSLGrade:        str(r, "ssl_grade"),
		SSLExpires:      optTime(r, "ssl_expires"),
		SecurityHeaders: securityHeaders(r["security_headers"]),
		Vulnerabilities: vulnerabilities(r["vulnerabilities"]),
	}
}

// securityHeaders accepts per-header values as a bool, the header value or an object
func securityHeaders(v interface{}) map[string]domain.HeaderCheck {
	headers := make(map[string]domain.HeaderCheck)
	for name, value := range decodeObject(v) {
		switch h := value.(type) {
		case nil:
			headers[name] = domain.HeaderCheck{}
		case bool:
			headers[name] = domain.HeaderCheck{Present: h}
		case string:
			headers[name] = domain.HeaderCheck{Present: h != "", Value: h}
		default:
			obj, ok := asRecord(h)
			if !ok {
				headers[name] = domain.HeaderCheck{Present: toBool(h)}
				continue
			}
			value := str(obj, "value")
			headers[name] = domain.HeaderCheck{
				Present: boolean(obj, value != "", "present"),
				Value:   value,
			}
		}
	}
	return headers
}

func vulnerabilities(v interface{}) []domain.Vulnerability {
	items := records(decodeList(v))
	out := make([]domain.Vulnerability, 0, len(items))
	for _, r := range items {
		out = append(out, domain.Vulnerability{
			Type:           str(r, "type", "name"),
			Severity:       str(r, "severity"),
			Description:    str(r, "description", "message"),
			Recommendation: str(r, "recommendation", "fix"),
		})
	}
	return out
}

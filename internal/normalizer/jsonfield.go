package normalizer

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// decodeJSON decodes a JSON-encoded sub-field. The value may be a JSON
// string, raw bytes or an already-decoded structure. Absent, blank or
// malformed input reports false and leaves the zero value.
func decodeJSON[T any](v interface{}) (T, bool) {
	var out T

	var data []byte
	switch x := v.(type) {
	case nil:
		return out, false
	case string:
		data = []byte(x)
	case []byte:
		data = x
	case json.RawMessage:
		data = x
	default:
		encoded, err := json.Marshal(x)
		if err != nil {
			return out, false
		}
		data = encoded
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// decodeList decodes a JSON list sub-field into its elements.
// Anything that is not a list yields an empty, non-nil slice.
func decodeList(v interface{}) []interface{} {
	if l, ok := asList(v); ok {
		return l
	}
	l, ok := decodeJSON[[]interface{}](v)
	if !ok || l == nil {
		return []interface{}{}
	}
	return l
}

// decodeObject decodes a JSON object sub-field.
// Anything that is not an object yields an empty, non-nil record.
func decodeObject(v interface{}) domain.RawRecord {
	if r, ok := asRecord(v); ok {
		return r
	}
	m, ok := decodeJSON[map[string]interface{}](v)
	if !ok || m == nil {
		return domain.RawRecord{}
	}
	return domain.RawRecord(m)
}

// records keeps the object elements of a decoded list
func records(items []interface{}) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(items))
	for _, item := range items {
		if r, ok := asRecord(item); ok {
			out = append(out, r)
		}
	}
	return out
}

package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// asRecord accepts the map shapes a raw record can arrive in
func asRecord(v interface{}) (domain.RawRecord, bool) {
	switch r := v.(type) {
	case domain.RawRecord:
		return r, r != nil
	case map[string]interface{}:
		return domain.RawRecord(r), r != nil
	default:
		return nil, false
	}
}

// asList accepts the slice shapes a list payload can arrive in
func asList(v interface{}) ([]interface{}, bool) {
	switch l := v.(type) {
	case []interface{}:
		return l, l != nil
	case []map[string]interface{}:
		out := make([]interface{}, len(l))
		for i, r := range l {
			out[i] = r
		}
		return out, l != nil
	case []domain.RawRecord:
		out := make([]interface{}, len(l))
		for i, r := range l {
			out[i] = r
		}
		return out, l != nil
	default:
		return nil, false
	}
}

// lookup returns the first non-null value stored under one of keys
func lookup(r domain.RawRecord, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case []byte:
		return string(s), true
	case json.Number:
		return s.String(), true
	case fmt.Stringer:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool, int, int32, int64, uint, uint32, uint64, float32:
		return fmt.Sprint(s), true
	default:
		return "", false
	}
}

// str returns the string under keys, or "" when absent
func str(r domain.RawRecord, keys ...string) string {
	v, ok := lookup(r, keys...)
	if !ok {
		return ""
	}
	s, _ := toString(v)
	return s
}

// optStr returns the string under keys, or nil when absent or null
func optStr(r domain.RawRecord, keys ...string) *string {
	v, ok := lookup(r, keys...)
	if !ok {
		return nil
	}
	s, ok := toString(v)
	if !ok {
		return nil
	}
	return &s
}

// toFloat converts numbers and numeric strings; non-finite values are rejected
func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case []byte:
		return toFloat(string(n))
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// optFloat returns the number under keys, or nil when absent or not numeric
func optFloat(r domain.RawRecord, keys ...string) *float64 {
	v, ok := lookup(r, keys...)
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// float returns the number under keys, or 0
func float(r domain.RawRecord, keys ...string) float64 {
	if f := optFloat(r, keys...); f != nil {
		return *f
	}
	return 0
}

// integer returns the number under keys rounded to an int64, or 0
func integer(r domain.RawRecord, keys ...string) int64 {
	return int64(math.Round(float(r, keys...)))
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "pass", "passed", "ok", "1":
			return true
		}
		return false
	default:
		f, ok := toFloat(v)
		return ok && f != 0
	}
}

// boolean returns the truthiness of the value under keys, or def when absent
func boolean(r domain.RawRecord, def bool, keys ...string) bool {
	v, ok := lookup(r, keys...)
	if !ok {
		return def
	}
	return toBool(v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// toTime parses timestamps, datetime strings and unix epochs.
// Strings without a zone are read in the local zone. Results are in UTC.
func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	case []byte:
		return toTime(string(t))
	}

	f, ok := toFloat(v)
	if !ok {
		return time.Time{}, false
	}
	// Epochs past 1e12 are milliseconds.
	if math.Abs(f) >= 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Unix(int64(f), 0).UTC(), true
}

// optTime returns the timestamp under keys, or nil
func optTime(r domain.RawRecord, keys ...string) *time.Time {
	v, ok := lookup(r, keys...)
	if !ok {
		return nil
	}
	t, ok := toTime(v)
	if !ok {
		return nil
	}
	return &t
}

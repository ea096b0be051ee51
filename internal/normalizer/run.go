package normalizer

import (
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// runFields are the row columns lifted onto RunRecord rather than kept in the payload
var runFields = []string{"id", "test_type", "website_name", "status", "created_at", "result", "results"}

// RunRecordFromRaw lifts the run columns of a raw row onto a RunRecord.
// The tool payload is the nested "result" object when present, else the
// remaining fields of the row ("results" lists are kept under that key).
func RunRecordFromRaw(raw interface{}) (domain.RunRecord, bool) {
	r, ok := asRecord(raw)
	if !ok {
		return domain.RunRecord{}, false
	}

	run := domain.RunRecord{
		ID:          str(r, "id"),
		WebsiteName: str(r, "website_name"),
		Status:      str(r, "status"),
	}
	if t, ok := domain.ParseTestType(str(r, "test_type")); ok {
		run.TestType = t
	}
	if t := optTime(r, "created_at"); t != nil {
		run.CreatedAt = *t
	}

	if nested, ok := lookup(r, "result"); ok {
		if obj := decodeObject(nested); len(obj) > 0 {
			run.Payload = obj
			return run, true
		}
	}

	payload := make(domain.RawRecord, len(r))
	for k, v := range r {
		payload[k] = v
	}
	for _, k := range runFields {
		delete(payload, k)
	}
	if v, ok := lookup(r, "results"); ok {
		payload["results"] = v
	}
	run.Payload = payload
	return run, true
}

// RunRecordsFromRaw converts a list of raw rows, skipping elements that are not objects
func RunRecordsFromRaw(raw interface{}) []domain.RunRecord {
	items, ok := asList(raw)
	if !ok {
		return []domain.RunRecord{}
	}
	runs := make([]domain.RunRecord, 0, len(items))
	for _, item := range items {
		if run, ok := RunRecordFromRaw(item); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Run statuses recognized by the stats aggregator
const (
	RunStatusPass    = "pass"
	RunStatusFail    = "fail"
	RunStatusRunning = "running"
)

// UnknownKey is the group key used when a record has no value for the grouping field
const UnknownKey = "Unknown"

// RunRecord is one test run as stored by the dashboard.
// WebsiteName and Status are empty when absent; a zero CreatedAt means absent.
type RunRecord struct {
	ID          string    `json:"id"`
	TestType    TestType  `json:"test_type"`
	WebsiteName string    `json:"website_name,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Payload     RawRecord `json:"payload,omitempty"`
}

// RunStats summarizes a collection of runs
type RunStats struct {
	Passed   int  `json:"passed"`
	Failed   int  `json:"failed"`
	Running  int  `json:"running"`
	Total    int  `json:"total"`
	PassRate Rate `json:"passRate"`
}

// TimelineBucket is one calendar day of a rolling timeline
type TimelineBucket struct {
	Date    string      `json:"date"`
	DayName string      `json:"dayName"`
	Runs    []RunRecord `json:"runs"`
	Stats   RunStats    `json:"stats"`
}

// WebsiteSummary is the per-website roll-up shown on the dashboard
type WebsiteSummary struct {
	Website   string     `json:"website"`
	Stats     RunStats   `json:"stats"`
	LastRunAt *time.Time `json:"lastRunAt"`
}

// RunGroup is one key of a RunGroups mapping
type RunGroup struct {
	Key  string      `json:"key"`
	Runs []RunRecord `json:"runs"`
}

// RunGroups maps string keys to runs, iterating keys in first-seen order
type RunGroups struct {
	keys  []string
	index map[string]int
	runs  [][]RunRecord
}

// NewRunGroups returns an empty mapping
func NewRunGroups() *RunGroups {
	return &RunGroups{index: make(map[string]int)}
}

// Append adds run under key, creating the key at the end if it is new
func (g *RunGroups) Append(key string, run RunRecord) {
	i, ok := g.index[key]
	if !ok {
		i = len(g.keys)
		g.index[key] = i
		g.keys = append(g.keys, key)
		g.runs = append(g.runs, nil)
	}
	g.runs[i] = append(g.runs[i], run)
}

// Keys returns the keys in first-seen order
func (g *RunGroups) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Get returns the runs stored under key
func (g *RunGroups) Get(key string) ([]RunRecord, bool) {
	i, ok := g.index[key]
	if !ok {
		return nil, false
	}
	return g.runs[i], true
}

// Len returns the number of distinct keys
func (g *RunGroups) Len() int {
	return len(g.keys)
}

// Groups returns the key/runs pairs in first-seen key order
func (g *RunGroups) Groups() []RunGroup {
	out := make([]RunGroup, len(g.keys))
	for i, k := range g.keys {
		out[i] = RunGroup{Key: k, Runs: g.runs[i]}
	}
	return out
}

// MarshalJSON encodes the groups as a JSON object whose keys keep insertion order
func (g *RunGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		runs := g.runs[i]
		if runs == nil {
			runs = []RunRecord{}
		}
		rb, err := json.Marshal(runs)
		if err != nil {
			return nil, err
		}
		buf.Write(rb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving the order of its keys.
// A repeated key appends to the runs already decoded for it.
func (g *RunGroups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("run groups: expected JSON object, got %v", tok)
	}

	decoded := NewRunGroups()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var runs []RunRecord
		if err := dec.Decode(&runs); err != nil {
			return err
		}
		i, ok := decoded.index[key]
		if !ok {
			i = len(decoded.keys)
			decoded.index[key] = i
			decoded.keys = append(decoded.keys, key)
			decoded.runs = append(decoded.runs, nil)
		}
		decoded.runs[i] = append(decoded.runs[i], runs...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = *decoded
	return nil
}

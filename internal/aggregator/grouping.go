package aggregator

import (
	"time"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

// dayLayout is the calendar-day key format
const dayLayout = "2006-01-02"

// GroupByWebsite partitions runs by website name, using "Unknown" for runs without one
func GroupByWebsite(runs []domain.RunRecord) *domain.RunGroups {
	groups := domain.NewRunGroups()
	for _, run := range runs {
		key := run.WebsiteName
		if key == "" {
			key = domain.UnknownKey
		}
		groups.Append(key, run)
	}
	return groups
}

// GroupByDate partitions runs by calendar day in the local time zone
func GroupByDate(runs []domain.RunRecord) *domain.RunGroups {
	return GroupByDateIn(runs, time.Local)
}

// GroupByDateIn partitions runs by calendar day in loc.
// Runs without a creation time fall into "Unknown".
func GroupByDateIn(runs []domain.RunRecord, loc *time.Location) *domain.RunGroups {
	groups := domain.NewRunGroups()
	for _, run := range runs {
		groups.Append(dayKey(run.CreatedAt, loc), run)
	}
	return groups
}

// dayKey formats t as a calendar day in loc
func dayKey(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return domain.UnknownKey
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

// truncateToDay returns midnight of t's calendar day in loc
func truncateToDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDay parses a calendar-day key as midnight in loc, the same day
// boundaries GroupByDateIn uses
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dayLayout, s, loc)
}

// EndOfDay returns the last instant of the calendar day that starts at day
func EndOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

package aggregator

import (
	"time"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

const (
	// DefaultTimelineDays is the window length used when none is given
	DefaultTimelineDays = 7
	// MaxTimelineDays caps the window length
	MaxTimelineDays = 366
)

// TimelineBuilder builds rolling daily windows ending on the current day.
// Now is read once per Build call.
type TimelineBuilder struct {
	Location *time.Location
	Now      func() time.Time
}

// NewTimelineBuilder creates a builder for loc using the system clock
func NewTimelineBuilder(loc *time.Location) *TimelineBuilder {
	return &TimelineBuilder{Location: loc, Now: time.Now}
}

// Build returns exactly days buckets, oldest first, the last one being today.
// Days without runs get zeroed stats. days is capped at MaxTimelineDays.
func (b *TimelineBuilder) Build(runs []domain.RunRecord, days int) []domain.TimelineBucket {
	if days <= 0 {
		days = DefaultTimelineDays
	}
	if days > MaxTimelineDays {
		days = MaxTimelineDays
	}
	loc := b.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	today := truncateToDay(now(), loc)
	byDay := GroupByDateIn(runs, loc)

	buckets := make([]domain.TimelineBucket, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(dayLayout)

		dayRuns, _ := byDay.Get(key)
		if dayRuns == nil {
			dayRuns = []domain.RunRecord{}
		}
		buckets = append(buckets, domain.TimelineBucket{
			Date:    key,
			DayName: day.Format("Mon"),
			Runs:    dayRuns,
			Stats:   CalculateTestStats(dayRuns),
		})
	}
	return buckets
}

// GetTimelineData builds a days-long timeline in the local time zone using the system clock
func GetTimelineData(runs []domain.RunRecord, days int) []domain.TimelineBucket {
	return NewTimelineBuilder(time.Local).Build(runs, days)
}

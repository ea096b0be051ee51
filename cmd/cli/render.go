package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/aggregator"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
)

func renderStats(w io.Writer, stats domain.RunStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Total Runs", fmt.Sprintf("%d", stats.Total)})
	table.Append([]string{"Passed", fmt.Sprintf("%d", stats.Passed)})
	table.Append([]string{"Failed", fmt.Sprintf("%d", stats.Failed)})
	table.Append([]string{"Running", fmt.Sprintf("%d", stats.Running)})
	table.Append([]string{"Pass Rate", stats.PassRate.String() + "%"})
	table.Render()
}

func renderTimeline(w io.Writer, buckets []domain.TimelineBucket) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Day", "Runs", "Passed", "Failed", "Pass Rate"})
	for _, b := range buckets {
		table.Append([]string{
			b.Date,
			b.DayName,
			fmt.Sprintf("%d", b.Stats.Total),
			fmt.Sprintf("%d", b.Stats.Passed),
			fmt.Sprintf("%d", b.Stats.Failed),
			b.Stats.PassRate.String() + "%",
		})
	}
	table.Render()
}

// renderWebsites prints last-run times in loc, the zone used for day keys
func renderWebsites(w io.Writer, summaries []domain.WebsiteSummary, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Website", "Runs", "Passed", "Failed", "Running", "Pass Rate", "Last Run"})
	for _, s := range summaries {
		lastRun := "-"
		if s.LastRunAt != nil {
			lastRun = s.LastRunAt.In(loc).Format(time.DateTime)
		}
		table.Append([]string{
			s.Website,
			fmt.Sprintf("%d", s.Stats.Total),
			fmt.Sprintf("%d", s.Stats.Passed),
			fmt.Sprintf("%d", s.Stats.Failed),
			fmt.Sprintf("%d", s.Stats.Running),
			s.Stats.PassRate.String() + "%",
			lastRun,
		})
	}
	table.Render()
}

func renderDateGroups(w io.Writer, groups *domain.RunGroups) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Runs", "Passed", "Failed", "Pass Rate"})
	for _, g := range groups.Groups() {
		stats := aggregator.CalculateTestStats(g.Runs)
		table.Append([]string{
			g.Key,
			fmt.Sprintf("%d", stats.Total),
			fmt.Sprintf("%d", stats.Passed),
			fmt.Sprintf("%d", stats.Failed),
			stats.PassRate.String() + "%",
		})
	}
	table.Render()
}

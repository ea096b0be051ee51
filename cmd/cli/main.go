package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/aggregator"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/collector"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/config"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/domain"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/logging"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/normalizer"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/rating"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage/postgres"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage/sqlite"
)

var (
	outputJSON   bool
	testType     string
	website      string
	startDate    string
	endDate      string
	timelineDays int
)

var rootCmd = &cobra.Command{
	Use:   "qa-metrics",
	Short: "QA dashboard metrics tool",
	Long: `A CLI tool for importing QA test runs and viewing dashboard metrics.

Runs are imported from JSON exports or GitHub Actions, normalized per test
type, and summarized as pass/fail stats, daily timelines and groupings.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfg, err := config.Load(); err == nil {
			logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
		}
	},
	SilenceUsage: true,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import test runs from a JSON file",
	Long:  `Import an array of raw test run rows (or an object with a "runs" array) and store them. Use "-" to read stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var collectCmd = &cobra.Command{
	Use:   "collect [owner|owner/repo]",
	Short: "Import workflow runs from GitHub Actions",
	Long: `Import GitHub Actions workflow runs as smoke test runs. Without a repository, every repository of the owner is collected.
Runs are attributed to the repository name unless --website is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [type] [file]",
	Short: "Normalize a raw result payload",
	Long:  `Convert a raw tool payload of the given test type into its canonical form and print it as JSON.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runNormalize,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show run statistics",
	Long:  `Display pass/fail statistics for the stored runs.`,
	Args:  cobra.NoArgs,
	RunE:  runShowStats,
}

var showTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the daily timeline",
	Long:  `Display per-day statistics for the last N days, oldest first.`,
	Args:  cobra.NoArgs,
	RunE:  runShowTimeline,
}

var showWebsitesCmd = &cobra.Command{
	Use:   "websites",
	Short: "Show per-website statistics",
	Args:  cobra.NoArgs,
	RunE:  runShowWebsites,
}

var showDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Show runs grouped by day",
	Args:  cobra.NoArgs,
	RunE:  runShowDates,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&testType, "test-type", "", "only include runs of this test type")
	rootCmd.PersistentFlags().StringVar(&website, "website", "", "only include runs of this website")
	rootCmd.PersistentFlags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD)")

	showTimelineCmd.Flags().IntVar(&timelineDays, "days", 0, "number of days (default from TIMELINE_DAYS)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showTimelineCmd)
	showCmd.AddCommand(showWebsitesCmd)
	showCmd.AddCommand(showDatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func getNormalizer(cfg *config.Config) (*normalizer.Normalizer, error) {
	if cfg.ThresholdsFile == "" {
		return normalizer.New(nil), nil
	}
	thresholds, err := rating.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	return normalizer.New(rating.NewClassifier(thresholds)), nil
}

// session is a dashboard wired to storage for one command
type session struct {
	dashboard aggregator.Dashboard
	cfg       *config.Config
	location  *time.Location
	store     storage.Storage
}

// Close releases the storage
func (s *session) Close() {
	s.store.Close()
}

// openDashboard loads the config and wires storage into a dashboard
func openDashboard() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	n, err := getNormalizer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating thresholds: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &session{
		dashboard: aggregator.NewDashboard(store, n, aggregator.WithLocation(loc)),
		cfg:       cfg,
		location:  loc,
		store:     store,
	}, nil
}

// getFilter builds the run filter from the persistent flags.
// Dates are calendar days in loc, matching the dashboard's day keys.
func getFilter(loc *time.Location) (storage.RunFilter, error) {
	var filter storage.RunFilter

	if testType != "" {
		t, ok := domain.ParseTestType(testType)
		if !ok {
			return filter, fmt.Errorf("unknown test type %q", testType)
		}
		filter.TestType = t
	}
	filter.Website = website

	if startDate != "" {
		t, err := aggregator.ParseDay(startDate, loc)
		if err != nil {
			return filter, fmt.Errorf("invalid --start: %w", err)
		}
		filter.Start = t
	}
	if endDate != "" {
		t, err := aggregator.ParseDay(endDate, loc)
		if err != nil {
			return filter, fmt.Errorf("invalid --end: %w", err)
		}
		filter.End = aggregator.EndOfDay(t)
	}

	return filter, nil
}

// readInput reads a file, or stdin for "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// decodeRows accepts a JSON array of rows or an object with a "runs" array
func decodeRows(data []byte) ([]interface{}, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	switch v := raw.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		if rows, ok := v["runs"].([]interface{}); ok {
			return rows, nil
		}
	}
	return nil, fmt.Errorf(`expected a JSON array or an object with a "runs" array`)
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	rows, err := decodeRows(data)
	if err != nil {
		return err
	}

	sess, err := openDashboard()
	if err != nil {
		return err
	}
	defer sess.Close()

	runs, err := sess.dashboard.IngestRuns(context.Background(), rows)
	if err != nil {
		return fmt.Errorf("failed to import runs: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d runs\n", len(runs))
	return nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	owner, repo, _ := strings.Cut(args[0], "/")
	if owner == "" {
		return fmt.Errorf("owner is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateForCollect(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	filter, err := getFilter(loc)
	if err != nil {
		return err
	}
	// Default to the last month like the dashboard range pickers.
	if filter.Start.IsZero() {
		filter.Start = time.Now().AddDate(0, -1, 0)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	coll := collector.NewGitHubCollector(cfg.GitHubToken)
	ctx := context.Background()
	out := cmd.OutOrStdout()

	var runs []domain.RunRecord
	if repo != "" {
		fmt.Fprintf(out, "Collecting workflow runs for %s/%s\n", owner, repo)
		runs, err = coll.GetWorkflowRuns(ctx, owner, repo, filter.Start, filter.End)
		if err != nil {
			return fmt.Errorf("failed to collect workflow runs: %w", err)
		}
	} else {
		fmt.Fprintln(out, "Fetching repositories...")
		repos, err := coll.GetRepositories(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to get repositories: %w", err)
		}
		fmt.Fprintf(out, "Found %d repositories\n", len(repos))

		runs, err = coll.CollectRepositories(ctx, owner, repos, filter.Start, filter.End, func(repo string, progress float64) {
			fmt.Fprintf(out, "\rProgress: %.1f%% (%s)", progress*100, repo)
		})
		if err != nil {
			return fmt.Errorf("failed to collect workflow runs: %w", err)
		}
		fmt.Fprintln(out)
	}

	ptrs := make([]*domain.RunRecord, len(runs))
	for i := range runs {
		if website != "" {
			runs[i].WebsiteName = website
		}
		ptrs[i] = &runs[i]
	}
	if err := store.SaveRuns(ctx, ptrs); err != nil {
		return fmt.Errorf("failed to save runs: %w", err)
	}

	fmt.Fprintf(out, "Collected %d workflow runs\n", len(runs))
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	t, ok := domain.ParseTestType(args[0])
	if !ok {
		return fmt.Errorf("unknown test type %q", args[0])
	}

	data, err := readInput(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	n, err := getNormalizer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load rating thresholds: %w", err)
	}

	result, err := n.Normalize(t, raw)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func runShowStats(cmd *cobra.Command, args []string) error {
	sess, err := openDashboard()
	if err != nil {
		return err
	}
	defer sess.Close()

	filter, err := getFilter(sess.location)
	if err != nil {
		return err
	}

	stats, err := sess.dashboard.GetStats(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, stats)
	}
	renderStats(out, stats)
	return nil
}

func runShowTimeline(cmd *cobra.Command, args []string) error {
	sess, err := openDashboard()
	if err != nil {
		return err
	}
	defer sess.Close()

	filter, err := getFilter(sess.location)
	if err != nil {
		return err
	}

	days := timelineDays
	if days <= 0 {
		days = sess.cfg.TimelineDays
	}

	buckets, err := sess.dashboard.GetTimeline(context.Background(), filter, days)
	if err != nil {
		return fmt.Errorf("failed to get timeline: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, buckets)
	}
	renderTimeline(out, buckets)
	return nil
}

func runShowWebsites(cmd *cobra.Command, args []string) error {
	sess, err := openDashboard()
	if err != nil {
		return err
	}
	defer sess.Close()

	filter, err := getFilter(sess.location)
	if err != nil {
		return err
	}

	summaries, err := sess.dashboard.GetWebsiteSummaries(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to get website summaries: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, summaries)
	}
	renderWebsites(out, summaries, sess.location)
	return nil
}

func runShowDates(cmd *cobra.Command, args []string) error {
	sess, err := openDashboard()
	if err != nil {
		return err
	}
	defer sess.Close()

	filter, err := getFilter(sess.location)
	if err != nil {
		return err
	}

	groups, err := sess.dashboard.GetDateGroups(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to get date groups: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return printJSON(out, groups)
	}
	renderDateGroups(out, groups)
	return nil
}

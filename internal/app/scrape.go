package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dev-bikash-roy/briloai/internal/cli"
	"github.com/dev-bikash-roy/briloai/internal/feed"
	"github.com/dev-bikash-roy/briloai/internal/release"
)

func runScrape(args []string) int {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	brand := fs.String("brand", "", "Brand filter (case-insensitive substring)")
	limit := fs.Int("limit", 0, "Maximum releases to return (default from DEFAULT_LIMIT)")
	page := fs.Int("page", 1, "First calendar page")
	pages := fs.Int("pages", 0, "Calendar pages to fetch (default from DEFAULT_PAGES)")
	timeFilter := fs.String("time", "", "Time filter: today, tomorrow, yesterday, this week, this weekend, or a date")
	includeHistorical := fs.Bool("include-historical", false, "Merge historical releases after upcoming ones")
	historicalOnly := fs.Bool("historical-only", false, "Return only historical releases")
	weeksBack := fs.Int("weeks-back", 0, "Historical look-back in weeks (1-12, default 2)")
	archive := fs.Bool("archive", false, "Use the release archive when DATABASE_URL is set")
	format := fs.String("format", outputFormatJSON, "Output format: table or json")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "scrape does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := buildFeedRuntime(ctx, cfg, logger, feedRuntimeOptions{Archive: *archive})
	if err != nil {
		logger.Error().Err(err).Msg("scrape failed to initialize feed")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	payload, err := rt.feed.Releases(ctx, feed.Query{
		Brand:             *brand,
		Limit:             *limit,
		StartPage:         *page,
		Pages:             *pages,
		Time:              *timeFilter,
		IncludeHistorical: *includeHistorical,
		HistoricalOnly:    *historicalOnly,
		WeeksBack:         *weeksBack,
	})
	if err != nil {
		if errors.Is(err, feed.ErrInvalidQuery) {
			fmt.Fprintf(os.Stderr, "Invalid query: %v\n", err)
			return 2
		}
		logger.Error().Err(err).Msg("scrape failed")
		fmt.Fprintf(os.Stderr, "Scrape failed: %v\n", err)
		return 1
	}

	for _, report := range payload.Meta.Reports {
		if report.Error != "" {
			logger.Warn().Str("source", report.Source).Str("error", report.Error).Msg("source failed during scrape")
		}
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(os.Stdout, payload); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeReleaseTable(os.Stdout, payload.Results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render release table: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "\nmode=%s count=%d total=%d duplicates=%d sources=%s\n",
		payload.Meta.Mode,
		payload.Meta.Count,
		payload.Meta.TotalBeforeLimit,
		payload.Meta.DuplicatesRemoved,
		payload.Meta.Source,
	)
	return 0
}

func writeReleaseTable(w io.Writer, releases []release.Release) error {
	rows := make([][]string, 0, len(releases))
	for _, r := range releases {
		rows = append(rows, []string{
			formatUTCTimestampPtr(r.ReleaseInstant),
			r.BrandName(),
			truncateForTable(r.Title, 60),
			pointerStringOrEmpty(r.PriceHint),
			r.Source,
			pointerStringOrEmpty(r.URL),
		})
	}
	return writeTable(w, []string{"release_date", "brand", "title", "price", "source", "url"}, rows)
}

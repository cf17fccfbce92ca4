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
	"github.com/dev-bikash-roy/briloai/internal/db"
	"github.com/dev-bikash-roy/briloai/internal/globaltime"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
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

	pool, err := db.NewPool(ctx, cfg)
	if errors.Is(err, db.ErrArchiveDisabled) {
		fmt.Println("ok: archive disabled, nothing to check")
		return 0
	}
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	stats, err := pool.QueryArchiveStats(ctx, globaltime.UTC())
	if err != nil {
		logger.Error().Err(err).Msg("archive stats query failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	logger.Info().
		Dur("timeout", *timeout).
		Int64("total_releases", stats.TotalReleases).
		Msg("database health check passed")

	if outputFormat == outputFormatJSON {
		if err := printJSON(os.Stdout, stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}
	if err := writeArchiveStats(os.Stdout, stats); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render archive stats: %v\n", err)
		return 1
	}
	return 0
}

func writeArchiveStats(w io.Writer, stats *db.ArchiveStats) error {
	fmt.Fprintln(w, "ok: database ping successful")
	fmt.Fprintf(w, "releases=%d dated=%d completed_runs_24h=%d failed_runs_24h=%d last_run=%s last_status=%s\n\n",
		stats.TotalReleases,
		stats.DatedReleases,
		stats.CompletedRuns24h,
		stats.FailedRuns24h,
		formatUTCTimestampPtr(stats.LastRunAt),
		pointerStringOrEmpty(stats.LastRunStatus),
	)

	rows := make([][]string, 0, len(stats.Sources))
	for _, source := range stats.Sources {
		rows = append(rows, []string{source.Source, fmt.Sprintf("%d", source.Releases)})
	}
	return writeTable(w, []string{"source", "releases"}, rows)
}

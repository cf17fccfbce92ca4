package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dev-bikash-roy/briloai/internal/cli"
	"github.com/dev-bikash-roy/briloai/internal/feed"
	"github.com/dev-bikash-roy/briloai/internal/merge"
	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	payloadschema "github.com/dev-bikash-roy/briloai/schema"
)

func runMerge(args []string) int {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	currentPath := fs.String("current", "", "Candidate batch JSON file with upcoming listings")
	historicalPath := fs.String("historical", "", "Candidate batch JSON file with past listings")
	includeHistorical := fs.Bool("include-historical", false, "Merge historical releases after upcoming ones")
	historicalOnly := fs.Bool("historical-only", false, "Return only historical releases")
	limit := fs.Int("limit", 0, "Maximum releases to return (0 = unlimited)")
	weeksBack := fs.String("weeks-back", "", "Historical look-back in weeks (1-12, default 2)")
	nowRaw := fs.String("now", "", "Reference instant (RFC3339, default now)")
	format := fs.String("format", outputFormatJSON, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*currentPath) == "" && strings.TrimSpace(*historicalPath) == "" {
		fmt.Fprintln(os.Stderr, "--current or --historical is required")
		return 2
	}
	if *limit < 0 {
		fmt.Fprintln(os.Stderr, "--limit must be >= 0")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}
	now, err := parseNowFlag(*nowRaw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	current, err := readCandidateFile(*currentPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --current: %v\n", err)
		return 1
	}
	historical, err := readCandidateFile(*historicalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --historical: %v\n", err)
		return 1
	}

	cfg, _, err := loadRuntime(envLoader, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var rawWeeks any
	if trimmed := strings.TrimSpace(*weeksBack); trimmed != "" {
		rawWeeks = trimmed
	}
	result := feed.MergeBatches(cfg.DatePolicy(), current, historical, merge.Options{
		IncludeHistorical: *includeHistorical,
		HistoricalOnly:    *historicalOnly,
		Limit:             *limit,
		WeeksBack:         releasedate.CoerceWeeksBack(rawWeeks),
		Matcher:           cfg.TitleMatcher(),
	}, now)

	if outputFormat == outputFormatJSON {
		if err := printJSON(os.Stdout, result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeReleaseTable(os.Stdout, result.Releases); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render release table: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "\nmode=%s count=%d total=%d duplicates=%d excluded=%d historical_filtered=%d\n",
		result.Metadata.Mode,
		result.Metadata.Count,
		result.Metadata.TotalBeforeLimit,
		result.Metadata.DuplicatesRemoved,
		result.Metadata.Excluded,
		result.HistoricalFiltered,
	)
	return 0
}

// readCandidateFile loads and validates a candidate batch. An empty path is
// an empty batch.
func readCandidateFile(path string) ([]release.Candidate, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", trimmed, err)
	}
	batch, err := payloadschema.ValidateCandidateBatch(json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", trimmed, err)
	}
	return batch, nil
}

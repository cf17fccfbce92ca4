package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dev-bikash-roy/briloai/internal/cli"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

type dateResult struct {
	Text        string     `json:"text"`
	Historical  bool       `json:"historical"`
	ReleaseDate *time.Time `json:"release_date"`
}

type windowResult struct {
	releasedate.Window
	Description string    `json:"description"`
	Now         time.Time `json:"now"`
}

func runNormalizeDate(args []string) int {
	fs := flag.NewFlagSet("normalize-date", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	text := fs.String("text", "", "Date text to parse; further texts may follow as arguments")
	historical := fs.Bool("historical", false, "Infer years for past releases")
	nowRaw := fs.String("now", "", "Reference instant (RFC3339, default now)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	texts := make([]string, 0, fs.NArg()+1)
	if strings.TrimSpace(*text) != "" {
		texts = append(texts, *text)
	}
	texts = append(texts, fs.Args()...)
	if len(texts) == 0 {
		fmt.Fprintln(os.Stderr, "--text or at least one argument is required")
		return 2
	}

	now, err := parseNowFlag(*nowRaw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, _, err := loadRuntime(envLoader, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := printJSON(os.Stdout, normalizeDates(cfg.DatePolicy(), texts, *historical, now)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}

func normalizeDates(policy releasedate.Policy, texts []string, historical bool, now time.Time) []dateResult {
	out := make([]dateResult, 0, len(texts))
	for _, text := range texts {
		out = append(out, dateResult{
			Text:        text,
			Historical:  historical,
			ReleaseDate: policy.NormalizeDate(text, historical, now),
		})
	}
	return out
}

func runWindow(args []string) int {
	fs := flag.NewFlagSet("window", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	weeksBack := fs.String("weeks-back", "", "Weeks to look back (1-12, default 2)")
	nowRaw := fs.String("now", "", "Reference instant (RFC3339, default now)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "window does not accept positional arguments")
		return 2
	}

	now, err := parseNowFlag(*nowRaw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := printJSON(os.Stdout, computeWindowResult(*weeksBack, now)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}

func computeWindowResult(rawWeeksBack string, now time.Time) windowResult {
	var weeksBack any
	if trimmed := strings.TrimSpace(rawWeeksBack); trimmed != "" {
		weeksBack = trimmed
	}
	window := releasedate.ComputeWindow(weeksBack, now)
	return windowResult{
		Window:      window,
		Description: window.Description(),
		Now:         now,
	}
}

package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "serve":
		return runServe(args[1:])
	case "scrape":
		return runScrape(args[1:])
	case "normalize-date":
		return runNormalizeDate(args[1:])
	case "window":
		return runWindow(args[1:])
	case "merge":
		return runMerge(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "health":
		return runHealth(args[1:])
	case "hash-token":
		return runHashToken(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "briloai CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  briloai <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve           Start the release feed API server")
	fmt.Fprintln(os.Stderr, "  scrape          Collect, merge and print one release feed")
	fmt.Fprintln(os.Stderr, "  normalize-date  Parse release date text into a timestamp")
	fmt.Fprintln(os.Stderr, "  window          Print the historical look-back window")
	fmt.Fprintln(os.Stderr, "  merge           Merge candidate batch files")
	fmt.Fprintln(os.Stderr, "  validate        Validate candidate batch JSON files")
	fmt.Fprintln(os.Stderr, "  health          Verify archive database connectivity")
	fmt.Fprintln(os.Stderr, "  hash-token      Print a bcrypt hash for WEBHOOK_TOKEN_BCRYPT")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"briloai <command> -h\" for command-specific flags.")
}

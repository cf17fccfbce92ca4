package cli

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// Tests here mutate process environment and do not run in parallel.

func TestEnvLoaderLoadsFlagPath(t *testing.T) {
	t.Setenv(EnvFileOverride, "")
	t.Setenv("BRILOAI_TEST_VALUE", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	if err := os.WriteFile(path, []byte("BRILOAI_TEST_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(dir, "missing.env"), "")
	var notices bytes.Buffer
	loader.Notices = &notices
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded != path {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv("BRILOAI_TEST_VALUE"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if notices.Len() == 0 {
		t.Fatalf("expected a load notice")
	}
}

func TestEnvLoaderOverrideVariableWins(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "override.env")
	if err := os.WriteFile(override, []byte("BRILOAI_TEST_VALUE=override\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvFileOverride, override)
	t.Setenv("BRILOAI_TEST_VALUE", "")

	loader := AddEnvFlag(flag.NewFlagSet("test", flag.ContinueOnError), filepath.Join(dir, "missing.env"), "")
	loader.Notices = &bytes.Buffer{}
	loaded, err := loader.Load()
	if err != nil || loaded != override {
		t.Fatalf("unexpected load result: %q %v", loaded, err)
	}
	if got := os.Getenv("BRILOAI_TEST_VALUE"); got != "override" {
		t.Fatalf("expected override value, got %q", got)
	}
}

func TestEnvLoaderReportsMissingFile(t *testing.T) {
	t.Setenv(EnvFileOverride, "")

	loader := AddEnvFlag(flag.NewFlagSet("test", flag.ContinueOnError), filepath.Join(t.TempDir(), "nope.env"), "")
	loader.Notices = &bytes.Buffer{}
	if _, err := loader.Load(); !errors.Is(err, ErrEnvFileNotFound) {
		t.Fatalf("expected ErrEnvFileNotFound, got %v", err)
	}

	var nilLoader *EnvLoader
	if _, err := nilLoader.Load(); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm/logger"

	"github.com/dev-bikash-roy/briloai/internal/config"
)

func TestNewPoolWithoutDatabaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewPool(context.Background(), &config.Config{})
	if !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}
	if _, err := NewPool(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestResolveGormLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level       string
		environment string
		want        logger.LogLevel
	}{
		{level: "debug", want: logger.Info},
		{level: "info", want: logger.Warn},
		{level: "", want: logger.Warn},
		{level: "error", want: logger.Error},
		{level: "silent", want: logger.Silent},
		{level: "verbose", environment: "local", want: logger.Warn},
		{level: "verbose", environment: "production", want: logger.Error},
	}
	for _, tt := range tests {
		if got := resolveGormLogLevel(tt.level, tt.environment); got != tt.want {
			t.Fatalf("unexpected gorm level for %q/%q: got %v want %v", tt.level, tt.environment, got, tt.want)
		}
	}
}

func TestArchiveRunsAreTrackedByModels(t *testing.T) {
	t.Parallel()

	models := autoMigrateModels()
	if len(models) != 2 {
		t.Fatalf("expected 2 auto-migrated models, got %d", len(models))
	}
	if got := (ArchivedRelease{}).TableName(); got != "releases.archived_releases" {
		t.Fatalf("unexpected archive table: %q", got)
	}
	if got := (ScrapeRun{}).TableName(); got != "releases.scrape_runs" {
		t.Fatalf("unexpected run table: %q", got)
	}
}

func TestNilPoolIsSafe(t *testing.T) {
	t.Parallel()

	var p *Pool
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := p.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error for nil pool")
	}
	if _, err := p.UpsertArchivedReleases(context.Background(), "", nil, time.Time{}); err != nil {
		t.Fatalf("expected empty upsert to be a no-op, got %v", err)
	}
}

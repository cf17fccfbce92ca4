// Package ingest records scrape runs and keeps the release archive that feeds
// the historical batch.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/db"
	"github.com/dev-bikash-roy/briloai/internal/globaltime"
	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

const (
	maxRunErrorLength   = 4000
	defaultHistoryLimit = 200
)

// Store is the persistence the archive needs. *db.Pool implements it.
type Store interface {
	InsertScrapeRun(ctx context.Context, runUUID, source string, startedAt time.Time) (int64, error)
	CompleteScrapeRun(ctx context.Context, runID int64, itemsSeen, itemsArchived int, finishedAt time.Time) error
	FailScrapeRun(ctx context.Context, runID int64, message string, finishedAt time.Time) error
	UpsertArchivedReleases(ctx context.Context, runUUID string, rows []db.ArchiveRow, seenAt time.Time) (int64, error)
	ListArchivedReleases(ctx context.Context, start, end time.Time, limit int) ([]db.ArchivedRelease, error)
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

type Result struct {
	RunID    int64  `json:"run_id"`
	RunUUID  string `json:"run_uuid"`
	Seen     int    `json:"seen"`
	Archived int64  `json:"archived"`
	Status   string `json:"status"`
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ArchiveReleases upserts releases under a new scrape run. Releases without a
// URL have no stable identity and are skipped.
func (s *Service) ArchiveReleases(ctx context.Context, source string, releases []release.Release) (Result, error) {
	if s == nil || s.store == nil {
		return Result{}, fmt.Errorf("ingest service is not initialized")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return Result{}, fmt.Errorf("source is required")
	}

	rows := archiveRows(releases, source)
	runUUID := uuid.NewString()
	runID, err := s.store.InsertScrapeRun(ctx, runUUID, source, globaltime.UTC())
	if err != nil {
		return Result{}, fmt.Errorf("insert scrape run: %w", err)
	}

	archived, archiveErr := s.store.UpsertArchivedReleases(ctx, runUUID, rows, globaltime.UTC())
	if archiveErr != nil {
		if markErr := s.markRunFailed(ctx, runID, archiveErr); markErr != nil {
			return Result{}, fmt.Errorf("archive failed (%v); failed to mark run failed: %w", archiveErr, markErr)
		}
		return Result{}, archiveErr
	}

	if err := s.store.CompleteScrapeRun(ctx, runID, len(releases), int(archived), globaltime.UTC()); err != nil {
		return Result{}, fmt.Errorf("mark scrape run completed: %w", err)
	}

	s.logger.Info().
		Int64("run_id", runID).
		Str("run_uuid", runUUID).
		Str("source", source).
		Int("seen", len(releases)).
		Int64("archived", archived).
		Msg("archive completed")

	return Result{
		RunID:    runID,
		RunUUID:  runUUID,
		Seen:     len(releases),
		Archived: archived,
		Status:   "completed",
	}, nil
}

// ListBetween returns archived releases dated inside window, newest first.
func (s *Service) ListBetween(ctx context.Context, window releasedate.Window, limit int) ([]release.Release, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("ingest service is not initialized")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.store.ListArchivedReleases(ctx, window.Start, window.End, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived releases: %w", err)
	}

	out := make([]release.Release, 0, len(rows))
	for _, row := range rows {
		out = append(out, releaseFromRow(row))
	}
	return out, nil
}

func (s *Service) markRunFailed(ctx context.Context, runID int64, cause error) error {
	msg := strings.TrimSpace(cause.Error())
	if len(msg) > maxRunErrorLength {
		msg = msg[:maxRunErrorLength]
	}
	return s.store.FailScrapeRun(ctx, runID, msg, globaltime.UTC())
}

func archiveRows(releases []release.Release, fallbackSource string) []db.ArchiveRow {
	rows := make([]db.ArchiveRow, 0, len(releases))
	for _, r := range releases {
		url := r.URLKey()
		if url == "" {
			continue
		}
		source := strings.TrimSpace(r.Source)
		if source == "" {
			source = fallbackSource
		}
		rows = append(rows, db.ArchiveRow{
			URL:             url,
			Title:           r.Title,
			NormalizedTitle: r.NormalizedTitle(),
			Brand:           r.Brand,
			ReleaseAt:       normalizeNullableTime(r.ReleaseInstant),
			ImageURL:        r.Image,
			PriceHint:       r.PriceHint,
			Source:          source,
		})
	}
	return rows
}

func releaseFromRow(row db.ArchivedRelease) release.Release {
	url := row.URL
	return release.Release{
		Title:          row.Title,
		Brand:          normalizeNullableString(row.Brand),
		ReleaseInstant: normalizeNullableTime(row.ReleaseAt),
		URL:            &url,
		Image:          normalizeNullableString(row.ImageURL),
		PriceHint:      normalizeNullableString(row.PriceHint),
		Source:         row.Source,
	}
}

func normalizeNullableString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeNullableTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := t.UTC()
	return &normalized
}

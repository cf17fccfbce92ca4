package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ArchiveRow is one release to upsert into the archive.
type ArchiveRow struct {
	URL             string
	Title           string
	NormalizedTitle string
	Brand           *string
	ReleaseAt       *time.Time
	ImageURL        *string
	PriceHint       *string
	Source          string
}

func (p *Pool) InsertScrapeRun(ctx context.Context, runUUID, source string, startedAt time.Time) (int64, error) {
	const q = `
INSERT INTO releases.scrape_runs (scrape_run_uuid, source, status, started_at)
VALUES ($1, $2, 'running', $3)
RETURNING scrape_run_id
`
	var runID int64
	if err := p.QueryRow(ctx, q, runUUID, source, startedAt.UTC()).Scan(&runID); err != nil {
		return 0, fmt.Errorf("insert scrape run: %w", err)
	}
	return runID, nil
}

func (p *Pool) CompleteScrapeRun(ctx context.Context, runID int64, itemsSeen, itemsArchived int, finishedAt time.Time) error {
	const q = `
UPDATE releases.scrape_runs
SET status = 'completed',
	finished_at = $2,
	items_seen = $3,
	items_archived = $4,
	error_message = NULL
WHERE scrape_run_id = $1
`
	if _, err := p.Exec(ctx, q, runID, finishedAt.UTC(), itemsSeen, itemsArchived); err != nil {
		return fmt.Errorf("complete scrape run: %w", err)
	}
	return nil
}

func (p *Pool) FailScrapeRun(ctx context.Context, runID int64, message string, finishedAt time.Time) error {
	const q = `
UPDATE releases.scrape_runs
SET status = 'failed',
	finished_at = $2,
	error_message = $3
WHERE scrape_run_id = $1
`
	if _, err := p.Exec(ctx, q, runID, finishedAt.UTC(), message); err != nil {
		return fmt.Errorf("fail scrape run: %w", err)
	}
	return nil
}

// UpsertArchivedReleases writes rows in one transaction. Known URLs keep
// their first_seen_at and existing facts that the new row lacks.
func (p *Pool) UpsertArchivedReleases(ctx context.Context, runUUID string, rows []ArchiveRow, seenAt time.Time) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const q = `
INSERT INTO releases.archived_releases AS ar (
	url,
	title,
	normalized_title,
	brand,
	release_at,
	image_url,
	price_hint,
	source,
	last_run_uuid,
	first_seen_at,
	last_seen_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	normalized_title = EXCLUDED.normalized_title,
	brand = COALESCE(EXCLUDED.brand, ar.brand),
	release_at = COALESCE(EXCLUDED.release_at, ar.release_at),
	image_url = COALESCE(EXCLUDED.image_url, ar.image_url),
	price_hint = COALESCE(EXCLUDED.price_hint, ar.price_hint),
	source = EXCLUDED.source,
	last_run_uuid = EXCLUDED.last_run_uuid,
	last_seen_at = EXCLUDED.last_seen_at
`

	var affected int64
	seenUTC := seenAt.UTC()
	for _, row := range rows {
		url := strings.TrimSpace(row.URL)
		if url == "" {
			continue
		}
		var releaseAt *time.Time
		if row.ReleaseAt != nil {
			utc := row.ReleaseAt.UTC()
			releaseAt = &utc
		}
		tag, err := tx.Exec(ctx, q,
			url,
			row.Title,
			row.NormalizedTitle,
			row.Brand,
			releaseAt,
			row.ImageURL,
			row.PriceHint,
			row.Source,
			nullableUUID(runUUID),
			seenUTC,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert archived release %s: %w", url, err)
		}
		affected += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit archive tx: %w", err)
	}
	return affected, nil
}

// ListArchivedReleases returns releases dated within [start, end], newest
// first.
func (p *Pool) ListArchivedReleases(ctx context.Context, start, end time.Time, limit int) ([]ArchivedRelease, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end must not be before start")
	}
	if limit <= 0 {
		limit = 200
	}

	const q = `
SELECT
	ar.url,
	ar.title,
	ar.normalized_title,
	ar.brand,
	ar.release_at,
	ar.image_url,
	ar.price_hint,
	ar.source,
	ar.first_seen_at,
	ar.last_seen_at
FROM releases.archived_releases ar
WHERE ar.release_at >= $1
	AND ar.release_at <= $2
ORDER BY ar.release_at DESC, ar.archived_release_id ASC
LIMIT $3
`
	rows, err := p.Query(ctx, q, start.UTC(), end.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query archived releases: %w", err)
	}
	defer rows.Close()

	out := make([]ArchivedRelease, 0, 32)
	for rows.Next() {
		var row ArchivedRelease
		if err := rows.Scan(
			&row.URL,
			&row.Title,
			&row.NormalizedTitle,
			&row.Brand,
			&row.ReleaseAt,
			&row.ImageURL,
			&row.PriceHint,
			&row.Source,
			&row.FirstSeenAt,
			&row.LastSeenAt,
		); err != nil {
			return nil, fmt.Errorf("scan archived release: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived releases: %w", err)
	}
	return out, nil
}

func nullableUUID(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package db

import (
	"context"
	"fmt"
	"time"
)

// SourceCount stores archived release counts for one source.
type SourceCount struct {
	Source   string `json:"source"`
	Releases int64  `json:"releases"`
}

// ArchiveStats is the read model returned by the health command.
type ArchiveStats struct {
	Sources          []SourceCount `json:"sources"`
	TotalReleases    int64         `json:"total_releases"`
	DatedReleases    int64         `json:"dated_releases"`
	LastRunAt        *time.Time    `json:"last_run_at,omitempty"`
	LastRunStatus    *string       `json:"last_run_status,omitempty"`
	FailedRuns24h    int64         `json:"failed_runs_24h"`
	CompletedRuns24h int64         `json:"completed_runs_24h"`
}

// QueryArchiveStats returns per-source archive counts and recent run health.
func (p *Pool) QueryArchiveStats(ctx context.Context, now time.Time) (*ArchiveStats, error) {
	stats := &ArchiveStats{Sources: make([]SourceCount, 0, 8)}

	const countsQuery = `
SELECT
	ar.source,
	COUNT(*)::BIGINT AS releases,
	COUNT(ar.release_at)::BIGINT AS dated
FROM releases.archived_releases ar
GROUP BY ar.source
ORDER BY 1
`
	rows, err := p.Query(ctx, countsQuery)
	if err != nil {
		return nil, fmt.Errorf("query archive source counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row   SourceCount
			dated int64
		)
		if err := rows.Scan(&row.Source, &row.Releases, &dated); err != nil {
			return nil, fmt.Errorf("scan archive source row: %w", err)
		}
		stats.Sources = append(stats.Sources, row)
		stats.TotalReleases += row.Releases
		stats.DatedReleases += dated
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive source rows: %w", err)
	}

	const runsQuery = `
SELECT
	(SELECT sr.started_at FROM releases.scrape_runs sr ORDER BY sr.started_at DESC LIMIT 1) AS last_run_at,
	(SELECT sr.status::TEXT FROM releases.scrape_runs sr ORDER BY sr.started_at DESC LIMIT 1) AS last_run_status,
	(SELECT COUNT(*) FROM releases.scrape_runs sr WHERE sr.status = 'failed' AND sr.started_at >= $1) AS failed_runs,
	(SELECT COUNT(*) FROM releases.scrape_runs sr WHERE sr.status = 'completed' AND sr.started_at >= $1) AS completed_runs
`
	since := now.UTC().Add(-24 * time.Hour)
	if err := p.QueryRow(ctx, runsQuery, since).Scan(
		&stats.LastRunAt,
		&stats.LastRunStatus,
		&stats.FailedRuns24h,
		&stats.CompletedRuns24h,
	); err != nil {
		return nil, fmt.Errorf("query scrape run health: %w", err)
	}

	return stats, nil
}

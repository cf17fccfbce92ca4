// Package feed assembles the release feed: it collects candidates from the
// configured sources, normalizes and filters them, merges the current and
// historical batches and caches the rendered payload.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/cache"
	"github.com/dev-bikash-roy/briloai/internal/globaltime"
	"github.com/dev-bikash-roy/briloai/internal/ingest"
	"github.com/dev-bikash-roy/briloai/internal/merge"
	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	"github.com/dev-bikash-roy/briloai/internal/sources"
	"github.com/dev-bikash-roy/briloai/internal/titles"
)

// ErrInvalidQuery marks request parameters that cannot be served.
var ErrInvalidQuery = errors.New("invalid query")

const archiveSourceName = "feed"

// Collector gathers candidates for one batch.
type Collector interface {
	Collect(ctx context.Context, req sources.Request) ([]release.Candidate, []sources.Report)
	Names() []string
}

// Archive persists current releases and serves the historical batch.
type Archive interface {
	ArchiveReleases(ctx context.Context, source string, releases []release.Release) (ingest.Result, error)
	ListBetween(ctx context.Context, window releasedate.Window, limit int) ([]release.Release, error)
}

type Options struct {
	Policy   releasedate.Policy
	Matcher  titles.Matcher
	Location *time.Location
	CacheTTL time.Duration
	Limits   Limits
}

type Service struct {
	current    Collector
	historical Collector
	archive    Archive
	cache      cache.Cache
	normalizer release.Normalizer
	matcher    titles.Matcher
	loc        *time.Location
	cacheTTL   time.Duration
	limits     Limits
	logger     zerolog.Logger
}

// NewService wires the feed. historical, archive and store may be nil.
func NewService(current, historical Collector, archive Archive, store cache.Cache, opts Options, logger zerolog.Logger) *Service {
	if store == nil {
		store = cache.Nop{}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Service{
		current:    current,
		historical: historical,
		archive:    archive,
		cache:      store,
		normalizer: release.NewNormalizer(opts.Policy),
		matcher:    opts.Matcher,
		loc:        loc,
		cacheTTL:   ttl,
		limits:     opts.Limits.withDefaults(),
		logger:     logger,
	}
}

// WindowMeta describes the historical look-back window.
type WindowMeta struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
}

// Meta is the feed metadata block.
type Meta struct {
	merge.Metadata
	Source             string           `json:"source"`
	Sources            []string         `json:"sources"`
	StartPage          int              `json:"start_page"`
	PagesFetched       int              `json:"pages_fetched"`
	TotalFound         int              `json:"total_found"`
	Brand              string           `json:"brand,omitempty"`
	Time               string           `json:"time,omitempty"`
	Window             *WindowMeta      `json:"window,omitempty"`
	HistoricalFiltered int              `json:"historical_filtered"`
	Reports            []sources.Report `json:"reports,omitempty"`
	Cached             bool             `json:"cached"`
	LastUpdated        time.Time        `json:"last_updated"`
}

// Payload is the rendered feed.
type Payload struct {
	Results []release.Release `json:"results"`
	Meta    Meta              `json:"meta"`
}

// Releases serves one feed request, from cache when possible.
func (s *Service) Releases(ctx context.Context, q Query) (Payload, error) {
	q = q.Normalize(s.limits)

	key, err := cache.Key(q)
	if err != nil {
		return Payload{}, err
	}
	if cached, ok := s.cached(ctx, key); ok {
		return cached, nil
	}

	now := globaltime.UTC()
	filter, err := release.ParseTimeFilter(q.Time, now, s.loc)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	req := sources.Request{StartPage: q.StartPage, Pages: q.Pages, Limit: q.Limit, Tag: release.TagCurrent}
	var (
		current []release.Release
		reports []sources.Report
	)
	if !q.HistoricalOnly && s.current != nil {
		candidates, currentReports := s.current.Collect(ctx, req)
		reports = append(reports, currentReports...)
		current = s.normalizer.NormalizeAll(candidates, now)
	}

	var (
		historical []release.Release
		window     *releasedate.Window
		filtered   int
	)
	if q.historicalRequested() {
		w := releasedate.ComputeWindow(q.WeeksBack, now)
		window = &w
		var historicalReports []sources.Report
		historical, historicalReports = s.collectHistorical(ctx, req, w, now)
		reports = append(reports, historicalReports...)
		historical, filtered = merge.FilterHistorical(historical, w, now)
	}

	current = filter.Apply(release.FilterByBrand(current, q.Brand))
	historical = filter.Apply(release.FilterByBrand(historical, q.Brand))

	result := merge.Merge(current, historical, merge.Options{
		IncludeHistorical: q.IncludeHistorical,
		HistoricalOnly:    q.HistoricalOnly,
		Limit:             q.Limit,
		WeeksBack:         q.WeeksBack,
		Matcher:           s.matcher,
	}, now)

	s.archiveCurrent(ctx, current)

	payload := Payload{
		Results: result.Releases,
		Meta:    s.meta(q, result.Metadata, window, filtered, reports, now),
	}
	if payload.Results == nil {
		payload.Results = []release.Release{}
	}
	s.store(ctx, key, payload)
	return payload, nil
}

func (s *Service) collectHistorical(ctx context.Context, req sources.Request, window releasedate.Window, now time.Time) ([]release.Release, []sources.Report) {
	var (
		out     []release.Release
		reports []sources.Report
	)
	if s.historical != nil {
		req.Tag = release.TagHistorical
		candidates, historicalReports := s.historical.Collect(ctx, req)
		reports = historicalReports
		out = append(out, s.normalizer.NormalizeAll(candidates, now)...)
	}
	if s.archive != nil {
		archived, err := s.archive.ListBetween(ctx, window, 0)
		if err != nil {
			s.logger.Warn().Err(err).Msg("archive lookup failed, continuing without archived releases")
		} else {
			out = append(out, archived...)
		}
	}
	return out, reports
}

func (s *Service) archiveCurrent(ctx context.Context, current []release.Release) {
	if s.archive == nil || len(current) == 0 {
		return
	}
	if _, err := s.archive.ArchiveReleases(ctx, archiveSourceName, current); err != nil {
		s.logger.Warn().Err(err).Int("releases", len(current)).Msg("archive write failed")
	}
}

func (s *Service) meta(q Query, md merge.Metadata, window *releasedate.Window, filtered int, reports []sources.Report, now time.Time) Meta {
	names := s.sourceNames(q)
	meta := Meta{
		Metadata:           md,
		Source:             strings.Join(names, ","),
		Sources:            names,
		StartPage:          q.StartPage,
		PagesFetched:       q.Pages,
		TotalFound:         md.TotalBeforeLimit,
		Brand:              q.Brand,
		Time:               q.Time,
		HistoricalFiltered: filtered,
		Reports:            reports,
		LastUpdated:        now,
	}
	if window != nil {
		meta.Window = &WindowMeta{
			Start:       window.Start,
			End:         window.End,
			Description: window.Description(),
		}
	}
	return meta
}

func (s *Service) sourceNames(q Query) []string {
	names := make([]string, 0, 4)
	if !q.HistoricalOnly && s.current != nil {
		names = append(names, s.current.Names()...)
	}
	if q.historicalRequested() {
		if s.historical != nil {
			names = append(names, s.historical.Names()...)
		}
		if s.archive != nil {
			names = append(names, "archive")
		}
	}
	return names
}

func (s *Service) cached(ctx context.Context, key string) (Payload, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache read failed")
		return Payload{}, false
	}
	if !ok {
		return Payload{}, false
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Warn().Err(err).Msg("discarding undecodable cache entry")
		return Payload{}, false
	}
	payload.Meta.Cached = true
	return payload, true
}

func (s *Service) store(ctx context.Context, key string, payload Payload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache encode failed")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("cache write failed")
	}
}

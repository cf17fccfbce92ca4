package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dev-bikash-roy/briloai/internal/cache"
	"github.com/dev-bikash-roy/briloai/internal/config"
	"github.com/dev-bikash-roy/briloai/internal/db"
	"github.com/dev-bikash-roy/briloai/internal/feed"
	"github.com/dev-bikash-roy/briloai/internal/ingest"
	"github.com/dev-bikash-roy/briloai/internal/reader"
	"github.com/dev-bikash-roy/briloai/internal/sources"
)

type feedRuntimeOptions struct {
	// Archive connects the release archive when DATABASE_URL is set.
	Archive bool
	// Cache uses the configured cache backend instead of none.
	Cache bool
}

// feedRuntime owns everything a feed service needs.
type feedRuntime struct {
	feed    *feed.Service
	pool    *db.Pool
	archive *ingest.Service
	cache   cache.Cache
	sources []string
}

func buildFeedRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts feedRuntimeOptions) (*feedRuntime, error) {
	registry, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	fetcher := reader.NewFetcher(reader.FetchOptions{
		Timeout:   cfg.FetchTimeout,
		Retries:   cfg.FetchRetries,
		UserAgent: cfg.UserAgent,
	})
	currentSources, historicalSources, err := registry.Build(fetcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build sources: %w", err)
	}

	rt := &feedRuntime{cache: cache.Nop{}}
	if opts.Cache {
		rt.cache, err = cache.New(ctx, cache.Options{Backend: cfg.CacheBackendName(), RedisURL: cfg.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
	}

	// Interfaces stay nil unless a backend exists.
	var archive feed.Archive
	if opts.Archive && cfg.ArchiveEnabled() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			_ = rt.cache.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.pool = pool
		rt.archive = ingest.NewService(pool, logger)
		archive = rt.archive
	}

	current := sources.NewCollector(currentSources, logger)
	var historical feed.Collector
	if len(historicalSources) > 0 {
		historical = sources.NewCollector(historicalSources, logger)
	}

	rt.sources = append(rt.sources, current.Names()...)
	for _, src := range historicalSources {
		rt.sources = append(rt.sources, src.Name())
	}

	rt.feed = feed.NewService(current, historical, archive, rt.cache, feed.Options{
		Policy:   cfg.DatePolicy(),
		Matcher:  cfg.TitleMatcher(),
		Location: cfg.Location(),
		CacheTTL: cfg.CacheTTL,
		Limits: feed.Limits{
			DefaultLimit: cfg.DefaultLimit,
			MaxLimit:     cfg.MaxLimit,
			DefaultPages: cfg.DefaultPages,
			MaxPages:     cfg.MaxPages,
		},
	}, logger)

	logger.Debug().
		Strs("sources", rt.sources).
		Bool("archive", rt.pool != nil).
		Str("cache", cfg.CacheBackendName()).
		Msg("feed runtime ready")
	return rt, nil
}

func (r *feedRuntime) Close() {
	if r == nil {
		return
	}
	if r.cache != nil {
		_ = r.cache.Close()
	}
	if r.pool != nil {
		_ = r.pool.Close()
	}
}

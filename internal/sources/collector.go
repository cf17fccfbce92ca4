package sources

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dev-bikash-roy/briloai/internal/globaltime"
	"github.com/dev-bikash-roy/briloai/internal/release"
)

// Report summarizes one source in a collection pass.
type Report struct {
	Source     string `json:"source"`
	Candidates int    `json:"candidates"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Collector runs sources concurrently. A failing source contributes an empty
// batch and an error report; it never fails the pass.
type Collector struct {
	sources []Source
	logger  zerolog.Logger
}

func NewCollector(sources []Source, logger zerolog.Logger) *Collector {
	return &Collector{sources: sources, logger: logger}
}

func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sources)
}

// Names lists the sources in configured order.
func (c *Collector) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.sources))
	for _, src := range c.sources {
		names = append(names, src.Name())
	}
	return names
}

// Collect returns candidates in configured source order.
func (c *Collector) Collect(ctx context.Context, req Request) ([]release.Candidate, []Report) {
	if c.Len() == 0 {
		return nil, nil
	}

	passStarted := globaltime.Now()
	batches := make([][]release.Candidate, len(c.sources))
	reports := make([]Report, len(c.sources))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, src := range c.sources {
		group.Go(func() error {
			started := globaltime.Now()
			candidates, err := src.Collect(groupCtx, req)
			report := Report{
				Source:     src.Name(),
				Candidates: len(candidates),
				DurationMS: globaltime.Since(started).Milliseconds(),
			}
			if err != nil {
				report.Candidates = 0
				report.Error = err.Error()
				c.logger.Warn().Err(err).Str("source", src.Name()).Msg("source collection failed")
				candidates = nil
			}
			batches[i] = candidates
			reports[i] = report
			return nil
		})
	}
	_ = group.Wait()

	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	out := make([]release.Candidate, 0, total)
	for _, batch := range batches {
		out = append(out, batch...)
	}

	c.logger.Debug().
		Int("sources", len(c.sources)).
		Int("candidates", len(out)).
		Str("tag", string(req.Tag)).
		Dur("elapsed", globaltime.Since(passStarted)).
		Msg("collection pass finished")
	return out, reports
}

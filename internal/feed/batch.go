package feed

import (
	"time"

	"github.com/dev-bikash-roy/briloai/internal/merge"
	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

// BatchResult is the merge of two caller-supplied candidate batches.
type BatchResult struct {
	Releases           []release.Release   `json:"releases"`
	Metadata           merge.Metadata      `json:"metadata"`
	Window             *releasedate.Window `json:"window,omitempty"`
	HistoricalFiltered int                 `json:"historical_filtered"`
}

// MergeBatches normalizes both batches, keeps historical releases inside the
// look-back window and merges them. Historical candidates always use
// historical year inference, whatever tag they carry.
func MergeBatches(policy releasedate.Policy, current, historical []release.Candidate, opts merge.Options, now time.Time) BatchResult {
	normalizer := release.NewNormalizer(policy)
	currentReleases := normalizer.NormalizeAll(withTag(current, release.TagCurrent), now)
	historicalReleases := normalizer.NormalizeAll(withTag(historical, release.TagHistorical), now)

	opts.WeeksBack = releasedate.CoerceWeeksBack(opts.WeeksBack)

	var out BatchResult
	if opts.IncludeHistorical || opts.HistoricalOnly {
		window := releasedate.ComputeWindow(opts.WeeksBack, now)
		out.Window = &window
		historicalReleases, out.HistoricalFiltered = merge.FilterHistorical(historicalReleases, window, now)
	}

	result := merge.Merge(currentReleases, historicalReleases, opts, now)
	out.Releases = result.Releases
	out.Metadata = result.Metadata
	if out.Releases == nil {
		out.Releases = []release.Release{}
	}
	return out
}

func withTag(batch []release.Candidate, tag release.SourceTag) []release.Candidate {
	out := make([]release.Candidate, len(batch))
	for i, c := range batch {
		c.Tag = tag
		out[i] = c
	}
	return out
}

package merge

import (
	"sort"
	"time"

	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	"github.com/dev-bikash-roy/briloai/internal/titles"
)

// Mode names the batch selection used for a merge.
type Mode string

const (
	ModeCurrent        Mode = "current"
	ModeMixed          Mode = "mixed"
	ModeHistoricalOnly Mode = "historical_only"
)

type Options struct {
	IncludeHistorical bool
	HistoricalOnly    bool
	// Limit <= 0 means unlimited.
	Limit     int
	WeeksBack int
	Matcher   titles.Matcher
}

func (o Options) Mode() Mode {
	switch {
	case o.HistoricalOnly:
		return ModeHistoricalOnly
	case o.IncludeHistorical:
		return ModeMixed
	default:
		return ModeCurrent
	}
}

type Metadata struct {
	Mode              Mode `json:"mode"`
	CurrentInput      int  `json:"current_input"`
	HistoricalInput   int  `json:"historical_input"`
	Excluded          int  `json:"excluded"`
	DuplicatesRemoved int  `json:"duplicates_removed"`
	TotalBeforeLimit  int  `json:"total_before_limit"`
	Count             int  `json:"count"`
	Limit             int  `json:"limit,omitempty"`
	Upcoming          int  `json:"upcoming"`
	Historical        int  `json:"historical"`
	WeeksBack         int  `json:"weeks_back"`
}

type Result struct {
	Releases []release.Release `json:"releases"`
	Metadata Metadata          `json:"metadata"`
}

// Merge selects batches per the options, drops duplicates (same URL or a
// similar title, first seen wins), orders the survivors for the mode, then
// applies the limit. Inputs are not modified.
func Merge(current, historical []release.Release, opts Options, now time.Time) Result {
	mode := opts.Mode()
	meta := Metadata{
		Mode:            mode,
		CurrentInput:    len(current),
		HistoricalInput: len(historical),
		Limit:           max(opts.Limit, 0),
		WeeksBack:       releasedate.CoerceWeeksBack(opts.WeeksBack),
	}

	var selected []release.Release
	switch mode {
	case ModeHistoricalOnly:
		selected = append(selected, historical...)
	case ModeMixed:
		selected = make([]release.Release, 0, len(current)+len(historical))
		selected = append(selected, current...)
		selected = append(selected, historical...)
	default:
		selected = append(selected, current...)
	}

	kept, excluded, duplicates := dedupe(selected, opts.Matcher)
	meta.Excluded = excluded
	meta.DuplicatesRemoved = duplicates

	switch mode {
	case ModeHistoricalOnly:
		sortDescending(kept)
	case ModeMixed:
		kept = orderMixed(kept, now)
	default:
		sortAscending(kept)
	}

	for _, r := range kept {
		if isUpcoming(r, now) {
			meta.Upcoming++
		} else {
			meta.Historical++
		}
	}

	meta.TotalBeforeLimit = len(kept)
	if opts.Limit > 0 && len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}
	meta.Count = len(kept)

	return Result{Releases: kept, Metadata: meta}
}

func dedupe(in []release.Release, matcher titles.Matcher) ([]release.Release, int, int) {
	kept := make([]release.Release, 0, len(in))
	keptTitles := make([]string, 0, len(in))
	seenURLs := make(map[string]struct{}, len(in))
	excluded := 0
	duplicates := 0

	for _, r := range in {
		normalized := r.NormalizedTitle()
		if normalized == "" {
			excluded++
			continue
		}

		key := r.URLKey()
		if key != "" {
			if _, seen := seenURLs[key]; seen {
				duplicates++
				continue
			}
		}

		if similarToAny(matcher, normalized, keptTitles) {
			duplicates++
			continue
		}

		if key != "" {
			seenURLs[key] = struct{}{}
		}
		kept = append(kept, r)
		keptTitles = append(keptTitles, normalized)
	}
	return kept, excluded, duplicates
}

func similarToAny(matcher titles.Matcher, title string, kept []string) bool {
	for _, other := range kept {
		if matcher.AreSimilar(title, other) {
			return true
		}
	}
	return false
}

func isUpcoming(r release.Release, now time.Time) bool {
	return r.ReleaseInstant != nil && r.ReleaseInstant.After(now)
}

// orderMixed puts upcoming releases (ascending) ahead of everything else
// (descending, unknown dates last).
func orderMixed(in []release.Release, now time.Time) []release.Release {
	upcoming := make([]release.Release, 0, len(in))
	past := make([]release.Release, 0, len(in))
	for _, r := range in {
		if isUpcoming(r, now) {
			upcoming = append(upcoming, r)
		} else {
			past = append(past, r)
		}
	}
	sortAscending(upcoming)
	sortDescending(past)
	return append(upcoming, past...)
}

// sortAscending orders by instant with unknown dates last.
func sortAscending(in []release.Release) {
	sort.SliceStable(in, func(i, j int) bool {
		a, b := in[i].ReleaseInstant, in[j].ReleaseInstant
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})
}

// sortDescending orders newest first; unknown dates count as the epoch.
func sortDescending(in []release.Release) {
	sort.SliceStable(in, func(i, j int) bool {
		return instantOrEpoch(in[i]).After(instantOrEpoch(in[j]))
	})
}

func instantOrEpoch(r release.Release) time.Time {
	if r.ReleaseInstant == nil {
		return time.Unix(0, 0).UTC()
	}
	return *r.ReleaseInstant
}

package merge

import (
	"time"

	"github.com/dev-bikash-roy/briloai/internal/release"
	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

// FilterHistorical keeps historical releases with a known instant that lies
// inside the window and before now. It returns the kept releases and how many
// were dropped.
func FilterHistorical(historical []release.Release, window releasedate.Window, now time.Time) ([]release.Release, int) {
	kept := make([]release.Release, 0, len(historical))
	for _, r := range historical {
		if r.ReleaseInstant == nil {
			continue
		}
		if !releasedate.IsHistorical(*r.ReleaseInstant, now) || !window.Contains(*r.ReleaseInstant) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(historical) - len(kept)
}

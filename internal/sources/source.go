// Package sources scrapes raw release candidates from upstream calendars,
// widgets and feeds. Sources never normalize dates; they hand back the raw
// date text for the release package to interpret.
package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/dev-bikash-roy/briloai/internal/reader"
	"github.com/dev-bikash-roy/briloai/internal/release"
)

const (
	DefaultPages    = 2
	MaxPages        = 10
	DefaultPageSize = 15
)

// Request scopes one collection pass.
type Request struct {
	StartPage int
	Pages     int
	Limit     int
	Tag       release.SourceTag
}

func (r Request) withDefaults() Request {
	if r.StartPage < 1 {
		r.StartPage = 1
	}
	if r.Pages < 1 {
		r.Pages = DefaultPages
	}
	if r.Pages > MaxPages {
		r.Pages = MaxPages
	}
	if r.Limit < 1 {
		r.Limit = DefaultPageSize
	}
	if r.Tag == "" {
		r.Tag = release.TagCurrent
	}
	return r
}

// Source produces raw candidates.
type Source interface {
	Name() string
	Collect(ctx context.Context, req Request) ([]release.Candidate, error)
}

// Fetcher is the HTTP dependency shared by every source.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*reader.Page, error)
}

func absoluteURL(base *url.URL, href string) string {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return ""
	}
	ref, err := url.Parse(trimmed)
	if err != nil || base == nil {
		return trimmed
	}
	return base.ResolveReference(ref).String()
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

package feed

import (
	"strings"

	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	"github.com/dev-bikash-roy/briloai/internal/sources"
)

// Query is one feed request after parameter parsing.
type Query struct {
	Brand             string `json:"brand"`
	Limit             int    `json:"limit"`
	StartPage         int    `json:"page"`
	Pages             int    `json:"pages"`
	Time              string `json:"time"`
	IncludeHistorical bool   `json:"include_historical"`
	HistoricalOnly    bool   `json:"historical_only"`
	WeeksBack         int    `json:"weeks_back"`
}

// Limits bounds request parameters.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
	DefaultPages int
	MaxPages     int
}

func DefaultLimits() Limits {
	return Limits{
		DefaultLimit: sources.DefaultPageSize,
		MaxLimit:     50,
		DefaultPages: sources.DefaultPages,
		MaxPages:     sources.MaxPages,
	}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = def.DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = def.MaxLimit
	}
	if l.DefaultPages <= 0 {
		l.DefaultPages = def.DefaultPages
	}
	if l.MaxPages <= 0 {
		l.MaxPages = def.MaxPages
	}
	return l
}

// Normalize applies defaults and caps. Non-positive values fall back to
// defaults, larger values are capped.
func (q Query) Normalize(limits Limits) Query {
	limits = limits.withDefaults()

	q.Brand = strings.TrimSpace(q.Brand)
	q.Time = strings.ToLower(strings.TrimSpace(q.Time))
	if q.Limit <= 0 {
		q.Limit = limits.DefaultLimit
	}
	q.Limit = min(q.Limit, limits.MaxLimit)
	if q.StartPage <= 0 {
		q.StartPage = 1
	}
	if q.Pages <= 0 {
		q.Pages = limits.DefaultPages
	}
	q.Pages = min(q.Pages, limits.MaxPages)
	if q.HistoricalOnly {
		q.IncludeHistorical = false
	}
	if q.IncludeHistorical || q.HistoricalOnly {
		q.WeeksBack = releasedate.CoerceWeeksBack(q.WeeksBack)
	} else {
		q.WeeksBack = 0
	}
	return q
}

func (q Query) historicalRequested() bool {
	return q.IncludeHistorical || q.HistoricalOnly
}

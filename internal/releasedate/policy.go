package releasedate

import "time"

const (
	DefaultHistoricalCutoffMonths = 6
	DefaultMinPlausibleYear       = 2020
	DefaultMaxYearsAhead          = 2

	// Hour of day (UTC) every parsed date is pinned to.
	anchorHour = 12
)

// Policy holds the year-inference and plausibility thresholds.
// The zero value is not useful; start from DefaultPolicy.
type Policy struct {
	// A year-less historical date further than this many months ahead of now
	// is moved to the previous year.
	HistoricalCutoffMonths int
	MinPlausibleYear       int
	MaxYearsAhead          int
}

func DefaultPolicy() Policy {
	return Policy{
		HistoricalCutoffMonths: DefaultHistoricalCutoffMonths,
		MinPlausibleYear:       DefaultMinPlausibleYear,
		MaxYearsAhead:          DefaultMaxYearsAhead,
	}
}

func (p Policy) withDefaults() Policy {
	if p.HistoricalCutoffMonths <= 0 {
		p.HistoricalCutoffMonths = DefaultHistoricalCutoffMonths
	}
	if p.MinPlausibleYear <= 0 {
		p.MinPlausibleYear = DefaultMinPlausibleYear
	}
	if p.MaxYearsAhead < 0 {
		p.MaxYearsAhead = DefaultMaxYearsAhead
	}
	return p
}

// NormalizeDate parses text and drops the result when it is implausible.
func (p Policy) NormalizeDate(text string, allowHistorical bool, now time.Time) *time.Time {
	parsed, ok := p.Parse(text, allowHistorical, now)
	if !ok {
		return nil
	}
	if !p.IsPlausible(&parsed, now) {
		return nil
	}
	return &parsed
}

// NormalizeDate uses DefaultPolicy.
func NormalizeDate(text string, allowHistorical bool, now time.Time) *time.Time {
	return DefaultPolicy().NormalizeDate(text, allowHistorical, now)
}

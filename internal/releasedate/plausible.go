package releasedate

import "time"

// PlausibleRange returns the inclusive bounds a release date must fall in.
func (p Policy) PlausibleRange(now time.Time) (time.Time, time.Time) {
	p = p.withDefaults()
	start := time.Date(p.MinPlausibleYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.UTC().Year()+p.MaxYearsAhead+1, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	return start, end
}

// IsPlausible reports whether t is a usable release date.
func (p Policy) IsPlausible(t *time.Time, now time.Time) bool {
	if t == nil || t.IsZero() {
		return false
	}
	start, end := p.PlausibleRange(now)
	return !t.Before(start) && !t.After(end)
}

// IsPlausible uses DefaultPolicy.
func IsPlausible(t *time.Time, now time.Time) bool {
	return DefaultPolicy().IsPlausible(t, now)
}

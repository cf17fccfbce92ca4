package release

import (
	"fmt"
	"strings"
	"time"

	"github.com/dev-bikash-roy/briloai/internal/releasedate"
)

type TimeFilterKind string

const (
	TimeFilterToday     TimeFilterKind = "today"
	TimeFilterTomorrow  TimeFilterKind = "tomorrow"
	TimeFilterYesterday TimeFilterKind = "yesterday"
	TimeFilterWeek      TimeFilterKind = "week"
	TimeFilterWeekend   TimeFilterKind = "weekend"
	TimeFilterDate      TimeFilterKind = "date"
)

// TimeFilter selects releases whose instant falls inside [Start, End].
type TimeFilter struct {
	Kind  TimeFilterKind `json:"kind"`
	Start time.Time      `json:"start"`
	End   time.Time      `json:"end"`
}

// ParseTimeFilter understands "today", "tomorrow", "yesterday", "this week",
// "this weekend" and a specific day such as "nov 12" or "2025-11-12". Day
// boundaries are computed in loc (UTC when nil). An empty value returns nil.
func ParseTimeFilter(raw string, now time.Time, loc *time.Location) (*TimeFilter, error) {
	value := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := dayStart(local)

	switch value {
	case "today":
		return dayFilter(TimeFilterToday, today), nil
	case "tomorrow":
		return dayFilter(TimeFilterTomorrow, today.AddDate(0, 0, 1)), nil
	case "yesterday":
		return dayFilter(TimeFilterYesterday, today.AddDate(0, 0, -1)), nil
	case "week", "this week", "this-week", "thisweek":
		// Sunday through Saturday around today.
		sunday := today.AddDate(0, 0, -int(today.Weekday()))
		return &TimeFilter{
			Kind:  TimeFilterWeek,
			Start: sunday,
			End:   sunday.AddDate(0, 0, 7).Add(-time.Nanosecond),
		}, nil
	case "weekend", "this weekend", "this-weekend", "thisweekend":
		var saturday time.Time
		if today.Weekday() == time.Sunday {
			saturday = today.AddDate(0, 0, -1)
		} else {
			saturday = today.AddDate(0, 0, int(time.Saturday-today.Weekday()))
		}
		return &TimeFilter{
			Kind:  TimeFilterWeekend,
			Start: saturday,
			End:   saturday.AddDate(0, 0, 2).Add(-time.Nanosecond),
		}, nil
	}

	parsed, ok := releasedate.Parse(value, false, now)
	if !ok {
		return nil, fmt.Errorf("unrecognized time filter %q", raw)
	}
	y, m, d := parsed.Date()
	return dayFilter(TimeFilterDate, time.Date(y, m, d, 0, 0, 0, 0, loc)), nil
}

// Matches reports whether the release instant is inside the filter range.
// Releases without an instant never match.
func (f *TimeFilter) Matches(r Release) bool {
	if f == nil {
		return true
	}
	if r.ReleaseInstant == nil {
		return false
	}
	return releasedate.IsWithinRange(*r.ReleaseInstant, f.Start, f.End)
}

// Apply keeps releases matching the filter. A nil filter keeps everything.
func (f *TimeFilter) Apply(releases []Release) []Release {
	if f == nil {
		return releases
	}
	out := make([]Release, 0, len(releases))
	for _, r := range releases {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func dayFilter(kind TimeFilterKind, start time.Time) *TimeFilter {
	return &TimeFilter{
		Kind:  kind,
		Start: start,
		End:   start.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package releasedate

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return parsed
}

func TestParseMonthNameWithYearIsNoonUTC(t *testing.T) {
	t.Parallel()

	now := mustDate(t, "2025-11-01T09:30:00Z")
	inputs := []string{
		"Sep 13, 2025",
		"September 13 2025",
		"sept 13th, 2025",
		"Release Date September 13, 2025",
		"SEP. 13, 2025",
	}
	want := time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)

	for _, input := range inputs {
		got, ok := Parse(input, false, now)
		if !ok {
			t.Fatalf("expected %q to parse", input)
		}
		if !got.Equal(want) {
			t.Fatalf("unexpected instant for %q: got %s want %s", input, got.Format(time.RFC3339), want.Format(time.RFC3339))
		}
		if got.Location() != time.UTC {
			t.Fatalf("expected UTC location for %q, got %s", input, got.Location())
		}
	}
}

func TestParseUpcomingYearInference(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		now  string
		want time.Time
	}{
		{name: "before date stays in current year", now: "2025-06-01T10:00:00Z", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
		{name: "after date rolls to next year", now: "2025-10-01T10:00:00Z", want: time.Date(2026, time.September, 13, 12, 0, 0, 0, time.UTC)},
		{name: "same day stays in current year", now: "2025-09-13T18:00:00Z", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, ok := Parse("Sep 13", false, mustDate(t, tc.now))
		if !ok {
			t.Fatalf("%s: expected parse", tc.name)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%s: got %s want %s", tc.name, got.Format(time.RFC3339), tc.want.Format(time.RFC3339))
		}
	}
}

// The six-month cutoff is a tie-break heuristic: a year-less historical date
// more than six months ahead of now is assumed to be last year's.
func TestParseHistoricalSixMonthCutoff(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		now   string
		want  time.Time
	}{
		{name: "january from july stays in current year", input: "Jan 5", now: "2025-07-01T00:00:00Z", want: time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)},
		{name: "january from november stays in current year", input: "Jan 5", now: "2025-11-01T00:00:00Z", want: time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)},
		{name: "december from march is previous year", input: "Dec 20", now: "2025-03-01T00:00:00Z", want: time.Date(2024, time.December, 20, 12, 0, 0, 0, time.UTC)},
		{name: "december from july stays in current year", input: "Dec 20", now: "2025-07-01T00:00:00Z", want: time.Date(2025, time.December, 20, 12, 0, 0, 0, time.UTC)},
		{name: "past date is never rolled forward", input: "Oct 2", now: "2025-11-01T00:00:00Z", want: time.Date(2025, time.October, 2, 12, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, ok := Parse(tc.input, true, mustDate(t, tc.now))
		if !ok {
			t.Fatalf("%s: expected parse", tc.name)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%s: got %s want %s", tc.name, got.Format(time.RFC3339), tc.want.Format(time.RFC3339))
		}
	}
}

func TestParseHistoricalCutoffIsOverridable(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	policy.HistoricalCutoffMonths = 2

	now := mustDate(t, "2025-07-01T00:00:00Z")
	got, ok := policy.Parse("Oct 1", true, now)
	if !ok {
		t.Fatalf("expected parse")
	}
	if got.Year() != 2024 {
		t.Fatalf("unexpected year with 2 month cutoff: %d", got.Year())
	}
}

func TestParseNumericFormats(t *testing.T) {
	t.Parallel()

	now := mustDate(t, "2025-06-01T00:00:00Z")
	cases := []struct {
		input string
		want  time.Time
	}{
		{input: "09/13/2025", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
		{input: "9/3/25", want: time.Date(2025, time.September, 3, 12, 0, 0, 0, time.UTC)},
		{input: "12/01/99", want: time.Date(1999, time.December, 1, 12, 0, 0, 0, time.UTC)},
		{input: "2025-09-13", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
		{input: "drop 2025-9-3 online", want: time.Date(2025, time.September, 3, 12, 0, 0, 0, time.UTC)},
		{input: "09132025", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
		{input: "20250913", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
		{input: "091325", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
		{input: "9132025", want: time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, ok := Parse(tc.input, false, now)
		if !ok {
			t.Fatalf("expected %q to parse", tc.input)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("unexpected instant for %q: got %s want %s", tc.input, got.Format(time.RFC3339), tc.want.Format(time.RFC3339))
		}
	}
}

func TestParseFallsThroughOnRangeFailure(t *testing.T) {
	t.Parallel()

	now := mustDate(t, "2025-06-01T00:00:00Z")

	got, ok := Parse("13/45/2025 or 2025-07-04", false, now)
	if !ok {
		t.Fatalf("expected fallback to ISO format")
	}
	want := time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected fallback instant: %s", got.Format(time.RFC3339))
	}

	got, ok = Parse("Air Max 90 Sep 13", false, now)
	if !ok {
		t.Fatalf("expected month name after unknown word to parse")
	}
	if got.Month() != time.September || got.Day() != 13 {
		t.Fatalf("unexpected instant: %s", got.Format(time.RFC3339))
	}
}

func TestParseRejectsUnparseable(t *testing.T) {
	t.Parallel()

	now := mustDate(t, "2025-06-01T00:00:00Z")
	inputs := []string{
		"",
		"   ",
		"TBD",
		"Coming soon",
		"$180",
		"Foo 12",
		"Sep 45",
		"Feb 30, 2025",
		"13/13/2025",
		"2025-13-01",
	}
	for _, input := range inputs {
		if got, ok := Parse(input, false, now); ok {
			t.Fatalf("expected %q to fail, got %s", input, got.Format(time.RFC3339))
		}
	}
}

func TestNormalizeDateDropsImplausibleYears(t *testing.T) {
	t.Parallel()

	now := mustDate(t, "2025-06-01T00:00:00Z")

	if got := NormalizeDate("12/01/99", false, now); got != nil {
		t.Fatalf("expected 1999 date to be dropped, got %s", got.Format(time.RFC3339))
	}
	if got := NormalizeDate("Jan 1, 2031", false, now); got != nil {
		t.Fatalf("expected far-future date to be dropped, got %s", got.Format(time.RFC3339))
	}

	got := NormalizeDate("Sep 13", false, now)
	if got == nil {
		t.Fatalf("expected plausible date")
	}
	if !got.Equal(time.Date(2025, time.September, 13, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected normalized date: %s", got.Format(time.RFC3339))
	}
}

func TestMonthNumber(t *testing.T) {
	t.Parallel()

	if got, ok := MonthNumber(" SEPT "); !ok || got != time.September {
		t.Fatalf("unexpected month for sept: %v %t", got, ok)
	}
	if _, ok := MonthNumber("max"); ok {
		t.Fatalf("did not expect max to be a month")
	}
	if len(monthNumbers) != 24 {
		t.Fatalf("unexpected month table size: %d", len(monthNumbers))
	}
}

package releasedate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultWeeksBack = 2
	MinWeeksBack     = 1
	MaxWeeksBack     = 12

	descriptionDateLayout = "Jan 2, 2006"
)

// Window is an inclusive look-back range ending at the end of the reference day.
type Window struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	WeeksBack int       `json:"weeks_back"`
}

// ComputeWindow builds the look-back window for an untyped weeks-back value.
func ComputeWindow(weeksBack any, now time.Time) Window {
	weeks := CoerceWeeksBack(weeksBack)
	startDay := now.AddDate(0, 0, -7*weeks)
	return Window{
		Start:     startOfDay(startDay),
		End:       endOfDay(now),
		WeeksBack: weeks,
	}
}

// CoerceWeeksBack converts a raw request value into a week count in
// [MinWeeksBack, MaxWeeksBack]. Missing or non-numeric input and values
// below one fall back to DefaultWeeksBack; larger values are capped.
func CoerceWeeksBack(raw any) int {
	value, ok := coerceInt(raw)
	if !ok || value < MinWeeksBack {
		return DefaultWeeksBack
	}
	if value > MaxWeeksBack {
		return MaxWeeksBack
	}
	return value
}

func coerceInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return clampInt64(v), true
	case uint:
		return clampInt64(int64(min(v, uint(math.MaxInt64)))), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return clampInt64(int64(v)), true
	case uint64:
		return clampInt64(int64(min(v, uint64(math.MaxInt64)))), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		return leadingInt(v.String())
	case string:
		return leadingInt(v)
	case *int:
		if v == nil {
			return 0, false
		}
		return *v, true
	default:
		return 0, false
	}
}

func floatToInt(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if v < math.MinInt32 {
		return math.MinInt32, true
	}
	return int(math.Trunc(v)), true
}

func clampInt64(v int64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int(v)
}

// leadingInt reads an optional sign and the leading decimal digits of raw,
// ignoring anything after them ("4 weeks" is 4, "abc" is not a number).
func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	value, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		if strings.HasPrefix(s, "-") {
			return math.MinInt32, true
		}
		return math.MaxInt32, true
	}
	return clampInt64(value), true
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return IsWithinRange(t, w.Start, w.End)
}

// Description renders the window for humans, e.g. "Past 2 weeks (Oct 18, 2025 - Nov 1, 2025)".
func (w Window) Description() string {
	span := fmt.Sprintf("(%s - %s)", w.Start.Format(descriptionDateLayout), w.End.Format(descriptionDateLayout))
	if w.WeeksBack == 1 {
		return "Past week " + span
	}
	return fmt.Sprintf("Past %d weeks %s", w.WeeksBack, span)
}

// IsWithinRange reports start <= t <= end.
func IsWithinRange(t, start, end time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(start) && !t.After(end)
}

// IsHistorical reports whether t is strictly before now.
func IsHistorical(t, now time.Time) bool {
	return !t.IsZero() && t.Before(now)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

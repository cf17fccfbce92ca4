package releasedate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	monthNamePattern = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s*(\d{4})\b)?`)
	slashPattern     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)
	isoPattern       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	compactPattern   = regexp.MustCompile(`\b(\d{6,8})\b`)
)

var monthNumbers = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"sept":      time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
	"jan":       time.January,
	"feb":       time.February,
	"mar":       time.March,
	"apr":       time.April,
	"jun":       time.June,
	"jul":       time.July,
	"aug":       time.August,
	"sep":       time.September,
	"oct":       time.October,
	"nov":       time.November,
	"dec":       time.December,
}

// MonthNumber maps an English month name or abbreviation to its month.
func MonthNumber(name string) (time.Month, bool) {
	month, ok := monthNumbers[strings.ToLower(strings.TrimSpace(name))]
	return month, ok
}

type dateParts struct {
	year    int
	month   int
	day     int
	hasYear bool
}

// Parse uses DefaultPolicy.
func Parse(text string, allowHistorical bool, now time.Time) (time.Time, bool) {
	return DefaultPolicy().Parse(text, allowHistorical, now)
}

// Parse turns a free-text date fragment into noon UTC on the matched day.
// Formats are tried in order: month name, MM/DD/YY(YY), YYYY-MM-DD, compact
// digits. A format whose components fail range checks yields to the next one.
func (p Policy) Parse(text string, allowHistorical bool, now time.Time) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}
	p = p.withDefaults()

	extractors := []func(string) (dateParts, bool){
		matchMonthName,
		matchSlashDate,
		matchISODate,
		matchCompactDate,
	}
	for _, extract := range extractors {
		parts, ok := extract(trimmed)
		if !ok {
			continue
		}
		if !parts.hasYear {
			parts.year = p.inferYear(time.Month(parts.month), parts.day, allowHistorical, now)
		}
		if t, ok := buildInstant(parts); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// inferYear anchors a year-less date relative to now. Upcoming listings roll a
// date that already passed into next year. Historical listings pull a date
// that sits beyond the cutoff into the previous year.
func (p Policy) inferYear(month time.Month, day int, allowHistorical bool, now time.Time) int {
	nowUTC := now.UTC()
	currentYear := nowUTC.Year()
	candidate := time.Date(currentYear, month, day, 0, 0, 0, 0, time.UTC)

	if allowHistorical {
		cutoff := nowUTC.AddDate(0, p.HistoricalCutoffMonths, 0)
		if candidate.After(cutoff) {
			return currentYear - 1
		}
		return currentYear
	}

	today := time.Date(currentYear, nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		return currentYear + 1
	}
	return currentYear
}

func buildInstant(parts dateParts) (time.Time, bool) {
	if !validMonthDay(parts.month, parts.day) || parts.year <= 0 {
		return time.Time{}, false
	}
	t := time.Date(parts.year, time.Month(parts.month), parts.day, anchorHour, 0, 0, 0, time.UTC)
	// time.Date normalizes Feb 30 into March; such dates do not exist.
	if t.Day() != parts.day || int(t.Month()) != parts.month {
		return time.Time{}, false
	}
	return t, true
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func matchMonthName(text string) (dateParts, bool) {
	for _, m := range monthNamePattern.FindAllStringSubmatch(text, -1) {
		month, ok := MonthNumber(m[1])
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[2])
		if err != nil || !validMonthDay(int(month), day) {
			continue
		}
		parts := dateParts{month: int(month), day: day}
		if m[3] != "" {
			year, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			parts.year = year
			parts.hasYear = true
		}
		return parts, true
	}
	return dateParts{}, false
}

func matchSlashDate(text string) (dateParts, bool) {
	for _, m := range slashPattern.FindAllStringSubmatch(text, -1) {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year = expandTwoDigitYear(year)
		}
		if !validMonthDay(month, day) {
			continue
		}
		return dateParts{year: year, month: month, day: day, hasYear: true}, true
	}
	return dateParts{}, false
}

func matchISODate(text string) (dateParts, bool) {
	for _, m := range isoPattern.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if !validMonthDay(month, day) {
			continue
		}
		return dateParts{year: year, month: month, day: day, hasYear: true}, true
	}
	return dateParts{}, false
}

// matchCompactDate handles bare digit runs such as 09132025 (MMDDYYYY),
// 20250913 (YYYYMMDD), 9132025 (MDDYYYY) and 091325 (MMDDYY).
func matchCompactDate(text string) (dateParts, bool) {
	for _, m := range compactPattern.FindAllStringSubmatch(text, -1) {
		digits := m[1]
		var candidates []dateParts
		switch len(digits) {
		case 8:
			candidates = append(candidates,
				compactParts(digits[0:2], digits[2:4], digits[4:8]),
				compactParts(digits[4:6], digits[6:8], digits[0:4]),
			)
		case 7:
			candidates = append(candidates, compactParts(digits[0:1], digits[1:3], digits[3:7]))
		case 6:
			parts := compactParts(digits[0:2], digits[2:4], digits[4:6])
			parts.year = expandTwoDigitYear(parts.year)
			candidates = append(candidates, parts)
		}
		for _, parts := range candidates {
			if validMonthDay(parts.month, parts.day) {
				return parts, true
			}
		}
	}
	return dateParts{}, false
}

func compactParts(month, day, year string) dateParts {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	y, _ := strconv.Atoi(year)
	return dateParts{year: y, month: m, day: d, hasYear: true}
}

func expandTwoDigitYear(year int) int {
	if year < 50 {
		return 2000 + year
	}
	return 1900 + year
}

package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	unknownReleaseRe = regexp.MustCompile(`(?i)\b(tba|tbd|to be announced|coming soon)\b`)
	monthYearRe      = regexp.MustCompile(`^([A-Za-z]+) (\d{4})$`)
	quarterRe        = regexp.MustCompile(`(?i)^Q([1-4]) (\d{4})$`)
	seasonRe         = regexp.MustCompile(`(?i)^(spring|summer|fall|autumn|winter) (\d{4})$`)
	partOfYearRe     = regexp.MustCompile(`(?i)^(early|mid|late) (\d{4})$`)
	yearRe           = regexp.MustCompile(`^\d{4}$`)
)

var dayLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan, 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var quarterStart = map[string]time.Month{"1": time.January, "2": time.April, "3": time.July, "4": time.October}

// Winter is anchored to December of the stated year.
var seasonStart = map[string]time.Month{
	"spring": time.March,
	"summer": time.June,
	"fall":   time.September,
	"autumn": time.September,
	"winter": time.December,
}

// ParseReleaseText converts a store release string into an instant and its
// precision. Imprecise dates are anchored at the earliest plausible day
// (UTC midnight) so ordering and due checks keep working until the store
// publishes an exact date. Unknown or unparseable text yields nil.
func ParseReleaseText(text string) (*time.Time, ReleasePrecision) {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" || unknownReleaseRe.MatchString(s) {
		return nil, ReleasePrecisionUnknown
	}

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return anchor(t.Year(), t.Month(), t.Day()), ReleasePrecisionDay
		}
	}

	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		for _, layout := range []string{"Jan 2006", "January 2006"} {
			if t, err := time.Parse(layout, m[1]+" "+m[2]); err == nil {
				return anchor(t.Year(), t.Month(), 1), ReleasePrecisionMonth
			}
		}
	}

	if m := quarterRe.FindStringSubmatch(s); m != nil {
		return anchor(atoi(m[2]), quarterStart[m[1]], 1), ReleasePrecisionQuarter
	}

	if m := seasonRe.FindStringSubmatch(s); m != nil {
		return anchor(atoi(m[2]), seasonStart[strings.ToLower(m[1])], 1), ReleasePrecisionSeason
	}

	if yearRe.MatchString(s) {
		return anchor(atoi(s), time.January, 1), ReleasePrecisionYear
	}

	if m := partOfYearRe.FindStringSubmatch(s); m != nil {
		return anchor(atoi(m[2]), time.January, 1), ReleasePrecisionYear
	}

	return nil, ReleasePrecisionUnknown
}

func anchor(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// atoi is only called on strings already matched by \d{4}.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

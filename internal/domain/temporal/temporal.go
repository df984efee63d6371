// Package temporal parses the heterogeneous timestamp representations found
// in stat exports and derives calendar bucket keys. All calendar math is UTC:
// week keys follow ISO-8601 numbering with Monday as day 1, month keys are
// plain year-month. Upstream exports mixed conventions; this package is the
// single place the convention is fixed.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Seconds per day, used for span math.
const SecondsPerDay = 86400

// dotted matches DD.MM.YYYY HH:MM with optional seconds.
var dotted = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})[ T](\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Fallback layouts tried after the explicit forms.
var layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
}

// ParseTimestamp converts a raw timestamp value into unix seconds. Accepted
// forms: 13-digit epoch millis, 10-digit epoch seconds, dotted European
// date-time, then a short list of generic layouts. Returns false when the
// value matches none of them; callers skip the row rather than guess.
func ParseTimestamp(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if isDigits(s) {
		switch len(s) {
		case 13:
			ms, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return 0, false
			}
			return ms / 1000, true
		case 10:
			sec, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return 0, false
			}
			return sec, true
		default:
			return 0, false
		}
	}

	if m := dotted.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second := 0
		if m[6] != "" {
			second, _ = strconv.Atoi(m[6])
		}
		t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
		return t.Unix(), true
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// WeekKey identifies one ISO-8601 week.
type WeekKey struct {
	Year int
	Week int
}

// WeekKeyOf buckets an instant into its ISO week.
func WeekKeyOf(sec int64) WeekKey {
	y, w := time.Unix(sec, 0).UTC().ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// String renders the key as e.g. "2024-W07".
func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// Bounds returns the week's [Monday 00:00:00, next Monday 00:00:00 - 1s]
// span in unix seconds.
func (k WeekKey) Bounds() (start, end int64) {
	// January 4th is always inside ISO week 1.
	jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := jan4.AddDate(0, 0, 1-weekday).AddDate(0, 0, (k.Week-1)*7)
	start = monday.Unix()
	end = monday.AddDate(0, 0, 7).Unix() - 1
	return start, end
}

// MonthKey identifies one calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf buckets an instant into its calendar month.
func MonthKeyOf(sec int64) MonthKey {
	t := time.Unix(sec, 0).UTC()
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey reads a "2024-05" style key.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// String renders the key as e.g. "2024-05".
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Label renders a human-readable form, e.g. "May 2024".
func (k MonthKey) Label() string {
	return fmt.Sprintf("%s %d", k.Month.String(), k.Year)
}

// Bounds returns the month's [first instant, last instant] span in unix
// seconds.
func (k MonthKey) Bounds() (start, end int64) {
	first := time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
	start = first.Unix()
	end = first.AddDate(0, 1, 0).Unix() - 1
	return start, end
}

// DaysBetween returns the whole days elapsed from a to b.
func DaysBetween(a, b int64) int {
	if b < a {
		a, b = b, a
	}
	return int((b - a) / SecondsPerDay)
}

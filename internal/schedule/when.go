package schedule

import (
	"strings"
	"time"
	"unicode"
)

// Output layouts
const (
	DateLayout    = "2006-01-02"
	ISOLayout     = "2006-01-02T15:04:05"
	WeekdayLayout = "Mon"
)

// Schedule holds the derived schedule columns for one event. Every field is
// empty when it could not be resolved.
type Schedule struct {
	StartDate      string
	EndDate        string
	DayOfWeekStart string
	DayOfWeekEnd   string
	StartISO       string
	EndISO         string
	StartTime      string
	EndTime        string

	// DateResolved and TimesResolved describe how far parsing got
	DateResolved  bool
	TimesResolved int
}

// Tokens are the comma-separated parts of a when-string
type Tokens struct {
	DayOfWeek string
	Date      string
	Time      string
}

// SplitWhen splits a when-string on commas. The time token is everything after
// the date token, re-joined; with only two parts the second doubles as the time
// token when it contains a digit.
func SplitWhen(when string) Tokens {
	parts := make([]string, 0, 4)
	for _, p := range strings.Split(when, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	var tok Tokens
	if len(parts) > 0 {
		tok.DayOfWeek = parts[0]
	}
	if len(parts) > 1 {
		tok.Date = parts[1]
	}
	switch {
	case len(parts) > 2:
		tok.Time = strings.Join(parts[2:], ",")
	case len(parts) == 2 && strings.IndexFunc(parts[1], unicode.IsDigit) >= 0:
		tok.Time = parts[1]
	}
	return tok
}

// ParseWhen derives the schedule columns from a raw when-string
func (p *Parser) ParseWhen(when string) Schedule {
	tok := SplitWhen(when)

	date, dateOK := p.ParseDateToken(tok.Date)
	override, overrideOK := p.FindDate(tok.Time)
	times := ExtractTimes(tok.Time)

	return Assemble(date, dateOK, times, override, overrideOK)
}

// Assemble combines a resolved date with up to two times.
//
// Start and end instants are produced only when the date and at least one time
// resolved. The end uses the override date when one was found in the time
// token; otherwise an end that is not after the start moves to the next day.
// End date and weekday fall back to the start values when no end instant exists.
func Assemble(date time.Time, dateOK bool, times []TimeOfDay, override time.Time, overrideOK bool) Schedule {
	s := Schedule{TimesResolved: len(times)}
	if !dateOK {
		return s
	}
	s.DateResolved = true

	var start, end time.Time
	var hasStart, hasEnd bool

	if len(times) > 0 {
		start = combine(date, times[0])
		hasStart = true
		s.StartTime = times[0].String()

		if len(times) > 1 {
			endDate := date
			if overrideOK {
				endDate = override
			}
			end = combine(endDate, times[1])
			if !overrideOK && !end.After(start) {
				end = end.AddDate(0, 0, 1)
			}
			hasEnd = true
			s.EndTime = times[1].String()
		}
	}

	s.StartDate = date.Format(DateLayout)
	s.DayOfWeekStart = date.Format(WeekdayLayout)
	s.EndDate = s.StartDate
	s.DayOfWeekEnd = s.DayOfWeekStart

	if hasStart {
		s.StartISO = start.Format(ISOLayout)
	}
	if hasEnd {
		s.EndISO = end.Format(ISOLayout)
		s.EndDate = end.Format(DateLayout)
		s.DayOfWeekEnd = end.Format(WeekdayLayout)
	}
	return s
}

func combine(date time.Time, t TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}

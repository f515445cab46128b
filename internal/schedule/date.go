package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Parser resolves schedule tokens. The clock supplies the year for dates that
// omit one.
type Parser struct {
	now func() time.Time
}

// NewParser creates a Parser. A nil clock means time.Now.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// dateLayouts are tried in order; the first that accepts the whole token wins
var dateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{layout: "Jan 2 2006", hasYear: true},
	{layout: "January 2 2006", hasYear: true},
	{layout: "Jan 2", hasYear: false},
	{layout: "January 2", hasYear: false},
}

// datePattern finds "<Month> <Day>[ <Year>]" anywhere in a string
var datePattern = regexp.MustCompile(`([A-Za-z]+)\s+(\d{1,2})(?:\s+(\d{4}))?`)

// ParseDateToken resolves a date token like "Feb 18" or "February 18 2026".
// Tokens without a year take the clock's current year; no attempt is made to
// guess next year for dates that have already passed.
func (p *Parser) ParseDateToken(token string) (time.Time, bool) {
	token = strings.Join(strings.Fields(token), " ")
	if token == "" {
		return time.Time{}, false
	}

	for _, df := range dateLayouts {
		t, err := time.Parse(df.layout, token)
		if err != nil {
			continue
		}
		if df.hasYear {
			return t, true
		}
		// Feb 29 parses in year 0; it must exist in the current year too
		if d, ok := calendarDate(p.now().Year(), t.Month(), t.Day()); ok {
			return d, true
		}
		break
	}

	// Last resort: month/day anywhere in the token
	return p.FindDate(token)
}

// FindDate searches text for the first "<Month> <Day>[ <Year>]" and resolves it
// with year-bearing layouts only.
func (p *Parser) FindDate(text string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	year := m[3]
	if year == "" {
		year = fmt.Sprintf("%d", p.now().Year())
	}
	value := fmt.Sprintf("%s %s %s", m[1], m[2], year)

	for _, df := range dateLayouts {
		if !df.hasYear {
			continue
		}
		if t, err := time.Parse(df.layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// calendarDate builds a date and rejects values time.Date would normalize
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

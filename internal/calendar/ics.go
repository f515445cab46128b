package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/bookclub-events/internal/event"
)

const (
	ProdID  = "-//Book Clubs//bookclub-events//EN"
	UIDHost = "bookclub-events"

	// DefaultDuration is used when an event has no resolved end
	DefaultDuration = time.Hour

	isoLayout      = "2006-01-02T15:04:05"
	floatingLayout = "20060102T150405"
	maxLineOctets  = 75
)

// GenerateBulkICS generates one calendar with a VEVENT per record that has a
// resolved start. It returns the document and the number of events written.
func GenerateBulkICS(records []event.Record, calendarName string, now time.Time) (string, int) {
	var ics strings.Builder
	writeHeader(&ics, calendarName)

	count := 0
	for _, r := range records {
		if writeEvent(&ics, r, now) {
			count++
		}
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String(), count
}

func writeHeader(ics *strings.Builder, calendarName string) {
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + ProdID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		writeLine(ics, "X-WR-CALNAME:"+escapeICS(calendarName))
	}
}

// writeEvent writes a VEVENT for r. Start and end are floating local times,
// the way the cleaned start_iso and end_iso columns are.
func writeEvent(ics *strings.Builder, r event.Record, now time.Time) bool {
	start, err := time.Parse(isoLayout, r.Get(event.ColStartISO))
	if err != nil {
		return false
	}
	end, err := time.Parse(isoLayout, r.Get(event.ColEndISO))
	if err != nil || end.Before(start) {
		end = start.Add(DefaultDuration)
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, fmt.Sprintf("UID:%s@%s", event.GenerateID(r.Get(event.ColLink)), UIDHost))
	writeLine(ics, "DTSTAMP:"+formatICSTime(now))
	writeLine(ics, "DTSTART:"+start.Format(floatingLayout))
	writeLine(ics, "DTEND:"+end.Format(floatingLayout))
	writeLine(ics, "SUMMARY:"+escapeICS(r.Get(event.ColTitle)))

	if desc := description(r); desc != "" {
		writeLine(ics, "DESCRIPTION:"+escapeICS(desc))
	}
	if loc := location(r); loc != "" {
		writeLine(ics, "LOCATION:"+escapeICS(loc))
	}
	if link := r.Get(event.ColLink); link != "" {
		writeLine(ics, "URL:"+link)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
	return true
}

func description(r event.Record) string {
	var parts []string
	if title := r.Get(event.ColBookTitle); title != "" {
		book := "Book: " + title
		if author := r.Get(event.ColBookAuthor); author != "" {
			book += " by " + author
		}
		parts = append(parts, book)
	}
	if desc := r.Get(event.ColDescription); desc != "" {
		parts = append(parts, desc)
	}
	return strings.Join(parts, "\n\n")
}

func location(r event.Record) string {
	var parts []string
	for _, col := range []string{event.ColVenueName, event.ColAddress} {
		if v := r.Get(col); v != "" && !contains(parts, v) {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine writes a content line folded at 75 octets without splitting a
// UTF-8 sequence
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines start with a space
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

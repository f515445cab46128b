package calendar

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/bookclub-events/internal/event"
)

var stamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func cleanedRecord() event.Record {
	return event.Record{
		event.ColTitle:       "Piranesi Book Club",
		event.ColLink:        "https://example.com/piranesi",
		event.ColDescription: "Join us at the shop.",
		event.ColStartISO:    "2026-03-07T19:00:00",
		event.ColEndISO:      "2026-03-07T20:30:00",
		event.ColVenueName:   "Elliott Bay Book Company",
		event.ColAddress:     "1521 10th Ave",
		event.ColBookTitle:   "Piranesi",
		event.ColBookAuthor:  "Susanna Clarke",
	}
}

// singleICS renders a calendar holding only r
func singleICS(r event.Record) (string, bool) {
	ics, n := GenerateBulkICS([]event.Record{r}, "", stamp)
	return ics, n == 1
}

func TestGenerateBulkICS_SingleEvent(t *testing.T) {
	ics, ok := singleICS(cleanedRecord())
	if !ok {
		t.Fatal("GenerateBulkICS() wrote no event")
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"PRODID:-//Book Clubs//bookclub-events//EN\r\n",
		"BEGIN:VEVENT\r\n",
		"UID:" + event.GenerateID("https://example.com/piranesi") + "@bookclub-events\r\n",
		"DTSTAMP:20260301T120000Z\r\n",
		"DTSTART:20260307T190000\r\n",
		"DTEND:20260307T203000\r\n",
		"SUMMARY:Piranesi Book Club\r\n",
		"DESCRIPTION:Book: Piranesi by Susanna Clarke\\n\\nJoin us at the shop.\r\n",
		"LOCATION:Elliott Bay Book Company\\, 1521 10th Ave\r\n",
		"URL:https://example.com/piranesi\r\n",
		"END:VEVENT\r\n",
		"END:VCALENDAR\r\n",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %q", field)
		}
	}
}

func TestGenerateBulkICS_EndTime(t *testing.T) {
	tests := []struct {
		name    string
		endISO  string
		wantEnd string
	}{
		{name: "resolved end", endISO: "2026-03-08T01:00:00", wantEnd: "DTEND:20260308T010000"},
		{name: "no end defaults to one hour", endISO: "", wantEnd: "DTEND:20260307T200000"},
		{name: "end before start defaults to one hour", endISO: "2026-03-07T18:00:00", wantEnd: "DTEND:20260307T200000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cleanedRecord()
			r[event.ColEndISO] = tt.endISO
			ics, ok := singleICS(r)
			if !ok {
				t.Fatal("GenerateBulkICS() wrote no event")
			}
			if !strings.Contains(ics, tt.wantEnd+"\r\n") {
				t.Errorf("ICS missing %s:\n%s", tt.wantEnd, ics)
			}
		})
	}
}

func TestGenerateBulkICS_Unresolved(t *testing.T) {
	r := cleanedRecord()
	r[event.ColStartISO] = ""
	ics, ok := singleICS(r)
	if ok || strings.Contains(ics, "BEGIN:VEVENT") {
		t.Errorf("GenerateBulkICS() wrote an event for an unresolved start:\n%s", ics)
	}
}

func TestGenerateBulkICS_SpecialCharacters(t *testing.T) {
	r := cleanedRecord()
	r[event.ColTitle] = "Test Event; With, Special\\Characters\nAnd Newlines"

	ics, _ := singleICS(r)

	want := "SUMMARY:Test Event\\; With\\, Special\\\\Characters\\nAnd Newlines\r\n"
	if !strings.Contains(ics, want) {
		t.Errorf("ICS missing escaped summary %q:\n%s", want, ics)
	}
}

func TestGenerateBulkICS_FoldsLongLines(t *testing.T) {
	r := cleanedRecord()
	r[event.ColDescription] = strings.Repeat("\u00e9", 100)

	ics, _ := singleICS(r)

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if len(line) > maxLineOctets {
			t.Errorf("line longer than %d octets: %q", maxLineOctets, line)
		}
		if !utf8.ValidString(strings.TrimPrefix(line, " ")) {
			t.Errorf("fold split a UTF-8 sequence: %q", line)
		}
	}

	unfolded := strings.ReplaceAll(ics, "\r\n ", "")
	if !strings.Contains(unfolded, strings.Repeat("\u00e9", 100)) {
		t.Error("unfolded description does not match the original")
	}
}

func TestGenerateBulkICS(t *testing.T) {
	unresolved := cleanedRecord()
	unresolved[event.ColStartISO] = ""
	second := cleanedRecord()
	second[event.ColLink] = "https://example.com/other"

	ics, n := GenerateBulkICS([]event.Record{cleanedRecord(), unresolved, second}, "Seattle Book Clubs", stamp)

	if n != 2 {
		t.Errorf("GenerateBulkICS() count = %d, want 2", n)
	}
	if !strings.Contains(ics, "X-WR-CALNAME:Seattle Book Clubs\r\n") {
		t.Error("Missing calendar name")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("Expected 2 BEGIN:VEVENT, got %d", got)
	}
	if got := strings.Count(ics, "END:VEVENT"); got != 2 {
		t.Errorf("Expected 2 END:VEVENT, got %d", got)
	}
}

func TestGenerateBulkICS_EmptyEvents(t *testing.T) {
	ics, n := GenerateBulkICS(nil, "Test Calendar", stamp)

	if n != 0 || strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("Expected no events in calendar")
	}
	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("Empty calendar should still be a valid VCALENDAR")
	}
}

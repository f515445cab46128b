package clean

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/bookclub-events/internal/event"
	"github.com/pfrederiksen/bookclub-events/internal/logger"
	"github.com/pfrederiksen/bookclub-events/internal/metrics"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Now = fixedNow
	opts.Logger = logger.New(logger.LevelError, &bytes.Buffer{})
	return opts
}

func rawBatch() *event.Batch {
	b := event.NewBatch(
		event.ColQuery, event.ColTitle, event.ColLink, event.ColDescription, event.ColWhen,
		event.ColAddress, event.ColVenue, event.ColLocation, event.ColThumbnail, "extra",
	)
	b.Append(event.Record{
		event.ColQuery:       "book club events Seattle",
		event.ColTitle:       "Book Club: 'The Night Circus' by Erin Morgenstern",
		event.ColLink:        "https://example.com/e/1",
		event.ColDescription: "An epic fantasy with a ghost story",
		event.ColWhen:        "Sat, Mar 7, 11 PM – 1 AM",
		event.ColAddress:     "['1521 10th Ave', 'Seattle, WA']",
		event.ColVenue:       "{'name': 'Elliott Bay Book Company', 'rating': 4.8, 'reviews': 1524}",
		event.ColLocation:    "Seattle",
		event.ColThumbnail:   " https://img.example.com/1.jpg ",
		"extra":              "x1",
	})
	b.Append(event.Record{
		event.ColTitle: "Duplicate listing",
		event.ColLink:  "https://example.com/e/1",
	})
	b.Append(event.Record{
		event.ColTitle: "",
		event.ColLink:  "https://example.com/e/3",
	})
	b.Append(event.Record{})
	b.Append(event.Record{
		event.ColTitle:   "Reading Louise Penny's A World of Curiosities this month",
		event.ColLink:    "https://example.com/e/5",
		event.ColWhen:    "Mon, Jan 5, 7 PM",
		event.ColAddress: "Plain St",
		event.ColVenue:   "not a mapping",
		"extra":          "x5",
	})
	return b
}

func TestRun(t *testing.T) {
	out, report := Run(rawBatch(), testOptions())

	wantCols := []string{
		"title", "link", "description", "when",
		"day_of_week_start", "day_of_week_end", "start_date", "end_date",
		"start_time", "end_time", "start_iso", "end_iso",
		"address", "city_state",
		"venue_name", "venue_rating", "venue_reviews", "venue_search_link",
		"thumbnail", "book_title", "book_author", "tags", "extra",
	}
	if !reflect.DeepEqual(out.Columns, wantCols) {
		t.Fatalf("Columns =\n  %v\nwant\n  %v", out.Columns, wantCols)
	}
	if out.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Len())
	}

	first := out.Records[0]
	wantFirst := map[string]string{
		"title":             "Book Club: 'The Night Circus' by Erin Morgenstern",
		"day_of_week_start": "Sat",
		"day_of_week_end":   "Sun",
		"start_date":        "2026-03-07",
		"end_date":          "2026-03-08",
		"start_time":        "11:00 PM",
		"end_time":          "1:00 AM",
		"start_iso":         "2026-03-07T23:00:00",
		"end_iso":           "2026-03-08T01:00:00",
		"address":           "1521 10th Ave",
		"city_state":        "Seattle, WA",
		"venue_name":        "Elliott Bay Book Company",
		"venue_rating":      "4.8",
		"venue_reviews":     "1524",
		"venue_search_link": "",
		"thumbnail":         "https://img.example.com/1.jpg",
		"book_title":        "The Night Circus",
		"book_author":       "Erin Morgenstern",
		"tags":              "['fantasy', 'horror']",
		"extra":             "x1",
	}
	for col, want := range wantFirst {
		if got := first[col]; got != want {
			t.Errorf("first[%s] = %q, want %q", col, got, want)
		}
	}
	for _, col := range []string{"query", "venue", "location"} {
		if _, ok := first[col]; ok {
			t.Errorf("raw column %s still present", col)
		}
	}

	second := out.Records[1]
	wantSecond := map[string]string{
		"start_iso":   "2026-01-05T19:00:00",
		"end_iso":     "",
		"end_date":    "2026-01-05",
		"address":     "Plain St",
		"city_state":  "",
		"venue_name":  "",
		"book_title":  "A World of Curiosities",
		"book_author": "Louise Penny",
		"tags":        "[]",
		"extra":       "x5",
	}
	for col, want := range wantSecond {
		if got := second[col]; got != want {
			t.Errorf("second[%s] = %q, want %q", col, got, want)
		}
	}

	if report.RecordsIn != 5 || report.RecordsOut != 2 {
		t.Errorf("report in/out = %d/%d, want 5/2", report.RecordsIn, report.RecordsOut)
	}
	wantDropped := map[string]int{
		metrics.DropBlank:              1,
		metrics.DropMissingTitleOrLink: 1,
		metrics.DropDuplicateLink:      1,
	}
	if !reflect.DeepEqual(report.Dropped, wantDropped) {
		t.Errorf("report.Dropped = %v, want %v", report.Dropped, wantDropped)
	}
	if report.Rules["by_split"] != 1 || report.Rules["possessive"] != 1 {
		t.Errorf("report.Rules = %v", report.Rules)
	}
	if report.Unresolved[metrics.FacetVenue] != 1 {
		t.Errorf("report.Unresolved[venue] = %d, want 1", report.Unresolved[metrics.FacetVenue])
	}
	if report.Tags["fantasy"] != 1 || report.Tags["horror"] != 1 {
		t.Errorf("report.Tags = %v", report.Tags)
	}
}

func TestRun_Idempotent(t *testing.T) {
	once, _ := Run(rawBatch(), testOptions())
	twice, report := Run(once, testOptions())

	if !reflect.DeepEqual(twice.Columns, once.Columns) {
		t.Errorf("Columns changed:\n  %v\n  %v", once.Columns, twice.Columns)
	}
	if !reflect.DeepEqual(twice.Records, once.Records) {
		t.Errorf("Records changed on second run")
	}
	if len(report.Dropped) != 0 {
		t.Errorf("second run dropped records: %v", report.Dropped)
	}
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	in := rawBatch()
	Run(in, testOptions())

	if in.Len() != 5 {
		t.Errorf("input Len() = %d, want 5", in.Len())
	}
	if got := in.Records[0][event.ColThumbnail]; got != " https://img.example.com/1.jpg " {
		t.Errorf("input thumbnail = %q, want untouched", got)
	}
	if !in.HasColumn(event.ColVenue) {
		t.Error("input lost its venue column")
	}
}

func TestRun_StageFlags(t *testing.T) {
	opts := testOptions()
	opts.BookExtraction = false
	opts.Tagging = false

	out, report := Run(rawBatch(), opts)

	for _, col := range []string{event.ColBookTitle, event.ColBookAuthor, event.ColTags} {
		if out.HasColumn(col) {
			t.Errorf("column %s present with its stage disabled", col)
		}
	}
	if len(report.Rules) != 0 {
		t.Errorf("report.Rules = %v, want none", report.Rules)
	}
	if !out.HasColumn(event.ColStartISO) {
		t.Error("schedule columns missing")
	}
}

func TestRun_MissingColumns(t *testing.T) {
	b := event.NewBatch(event.ColTitle, event.ColLink)
	b.Append(event.Record{event.ColTitle: "Quiet reading hour", event.ColLink: "https://a"})

	out, _ := Run(b, testOptions())

	want := []string{event.ColTitle, event.ColLink, event.ColBookTitle, event.ColBookAuthor, event.ColTags}
	if !reflect.DeepEqual(out.Columns, want) {
		t.Errorf("Columns = %v, want %v", out.Columns, want)
	}
}

func TestRun_LogsDegradationsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions()
	opts.Logger = logger.New(logger.LevelDebug, &buf)

	b := event.NewBatch(event.ColTitle, event.ColLink, event.ColWhen)
	b.Append(event.Record{event.ColTitle: "Meetup", event.ColLink: "https://a", event.ColWhen: "Someday soon"})
	Run(b, opts)

	out := buf.String()
	if !strings.Contains(out, `"facet":"date"`) {
		t.Errorf("missing date degradation in log:\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.Contains(line, `"level":"DEBUG"`) {
			t.Errorf("degradation logged above DEBUG: %s", line)
		}
	}
}

func TestRun_RecordsMetrics(t *testing.T) {
	opts := testOptions()
	opts.Metrics = metrics.New()

	Run(rawBatch(), opts)

	families, err := opts.Metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	values := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if len(m.GetLabel()) == 0 {
				values[f.GetName()] = m.GetCounter().GetValue()
			}
		}
	}
	if values["bookclubs_records_in_total"] != 5 || values["bookclubs_records_out_total"] != 2 {
		t.Errorf("records in/out = %v/%v, want 5/2", values["bookclubs_records_in_total"], values["bookclubs_records_out_total"])
	}
}

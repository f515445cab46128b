package event

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
)

// Raw columns produced by the event source
const (
	ColQuery       = "query"
	ColTitle       = "title"
	ColLink        = "link"
	ColDescription = "description"
	ColWhen        = "when"
	ColAddress     = "address"
	ColVenue       = "venue"
	ColLocation    = "location"
	ColThumbnail   = "thumbnail"
)

// Derived columns added by cleaning
const (
	ColStartDate       = "start_date"
	ColEndDate         = "end_date"
	ColDayOfWeekStart  = "day_of_week_start"
	ColDayOfWeekEnd    = "day_of_week_end"
	ColStartTime       = "start_time"
	ColEndTime         = "end_time"
	ColStartISO        = "start_iso"
	ColEndISO          = "end_iso"
	ColCityState       = "city_state"
	ColVenueName       = "venue_name"
	ColVenueRating     = "venue_rating"
	ColVenueReviews    = "venue_reviews"
	ColVenueSearchLink = "venue_search_link"
	ColBookTitle       = "book_title"
	ColBookAuthor      = "book_author"
	ColTags            = "tags"
)

// Record is one event row keyed by column name. Missing keys read as "".
type Record map[string]string

// Get returns the value of col, or "" if absent
func (r Record) Get(col string) string {
	return r[col]
}

// IsBlank reports whether every value in the record is empty after trimming
func (r Record) IsBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Batch is an in-memory table of records sharing one header
type Batch struct {
	Columns []string
	Records []Record
}

// NewBatch creates an empty batch with the given header
func NewBatch(columns ...string) *Batch {
	cols := make([]string, 0, len(columns))
	b := &Batch{Columns: cols, Records: make([]Record, 0)}
	for _, c := range columns {
		b.AddColumn(c)
	}
	return b
}

// HasColumn reports whether col is part of the header
func (b *Batch) HasColumn(col string) bool {
	for _, c := range b.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn appends col to the header if it is not already present
func (b *Batch) AddColumn(col string) {
	if !b.HasColumn(col) {
		b.Columns = append(b.Columns, col)
	}
}

// DropColumn removes col from the header and from every record
func (b *Batch) DropColumn(col string) {
	kept := b.Columns[:0]
	for _, c := range b.Columns {
		if c != col {
			kept = append(kept, c)
		}
	}
	b.Columns = kept
	for _, r := range b.Records {
		delete(r, col)
	}
}

// Append adds a record, extending the header with any columns it introduces
// in sorted order so the header stays deterministic.
func (b *Batch) Append(r Record) {
	var extra []string
	for k := range r {
		if !b.HasColumn(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		b.AddColumn(k)
	}
	b.Records = append(b.Records, r)
}

// Clone returns a deep copy of the batch
func (b *Batch) Clone() *Batch {
	c := &Batch{
		Columns: append([]string(nil), b.Columns...),
		Records: make([]Record, len(b.Records)),
	}
	for i, r := range b.Records {
		cr := make(Record, len(r))
		for k, v := range r {
			cr[k] = v
		}
		c.Records[i] = cr
	}
	return c
}

// Len returns the number of records
func (b *Batch) Len() int {
	return len(b.Records)
}

// Row returns the values of record i in header order
func (b *Batch) Row(i int) []string {
	r := b.Records[i]
	row := make([]string, len(b.Columns))
	for j, c := range b.Columns {
		row[j] = r[c]
	}
	return row
}

// GenerateID creates a deterministic ID for an event from its link
func GenerateID(link string) string {
	h := sha1.New()
	h.Write([]byte(strings.TrimSpace(link)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

package clean

import (
	"strings"

	"github.com/pfrederiksen/bookclub-events/internal/event"
)

// droppedColumns are raw columns with no value left once expanded
var droppedColumns = []string{event.ColQuery, event.ColLocation, event.ColVenue}

// columnOrder is the canonical prefix of a cleaned header
var columnOrder = []string{
	event.ColTitle,
	event.ColLink,
	event.ColDescription,
	event.ColWhen,
	event.ColDayOfWeekStart,
	event.ColDayOfWeekEnd,
	event.ColStartDate,
	event.ColEndDate,
	event.ColStartTime,
	event.ColEndTime,
	event.ColStartISO,
	event.ColEndISO,
	event.ColAddress,
	event.ColCityState,
	event.ColVenueName,
	event.ColVenueRating,
	event.ColVenueReviews,
	event.ColVenueSearchLink,
	event.ColThumbnail,
	event.ColBookTitle,
	event.ColBookAuthor,
	event.ColTags,
}

// Finalize drops the raw query, location and venue columns, removes records
// missing a title or link, keeps only the first record per link and orders
// the header. It returns how many records were removed for each reason.
func Finalize(b *event.Batch) (missing, duplicates int) {
	for _, c := range droppedColumns {
		b.DropColumn(c)
	}

	seen := make(map[string]bool, len(b.Records))
	kept := b.Records[:0]
	for _, r := range b.Records {
		link := strings.TrimSpace(r.Get(event.ColLink))
		if strings.TrimSpace(r.Get(event.ColTitle)) == "" || link == "" {
			missing++
			continue
		}
		if seen[link] {
			duplicates++
			continue
		}
		seen[link] = true
		kept = append(kept, r)
	}
	b.Records = kept

	b.Columns = OrderColumns(b.Columns)
	return missing, duplicates
}

// OrderColumns returns cols with the known columns first, in canonical order,
// followed by the rest in their original order.
func OrderColumns(cols []string) []string {
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}

	known := make(map[string]bool, len(columnOrder))
	ordered := make([]string, 0, len(cols))
	for _, c := range columnOrder {
		known[c] = true
		if present[c] {
			ordered = append(ordered, c)
		}
	}
	for _, c := range cols {
		if !known[c] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

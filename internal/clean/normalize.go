package clean

import (
	"strings"

	"github.com/pfrederiksen/bookclub-events/internal/event"
)

// trimmedColumns are the free-text columns trimmed before parsing
var trimmedColumns = []string{
	event.ColQuery,
	event.ColTitle,
	event.ColLink,
	event.ColDescription,
	event.ColWhen,
	event.ColAddress,
	event.ColVenue,
	event.ColLocation,
	event.ColThumbnail,
}

// Normalize trims the free-text columns present in b and removes records
// whose every value is blank. It returns the number of records removed.
func Normalize(b *event.Batch) int {
	var cols []string
	for _, c := range trimmedColumns {
		if b.HasColumn(c) {
			cols = append(cols, c)
		}
	}

	kept := b.Records[:0]
	for _, r := range b.Records {
		for _, c := range cols {
			r[c] = strings.TrimSpace(r[c])
		}
		if r.IsBlank() {
			continue
		}
		kept = append(kept, r)
	}

	dropped := len(b.Records) - len(kept)
	b.Records = kept
	return dropped
}

package clean

import (
	"errors"
	"strings"

	"github.com/pfrederiksen/bookclub-events/internal/literal"
)

// Venue is the flattened form of a venue mapping
type Venue struct {
	Name       string
	Rating     string
	Reviews    string
	SearchLink string
}

var errNotMapping = errors.New("venue is not a mapping")

// ExpandVenue decodes a venue field such as
// {'name': 'Elliott Bay Book Company', 'rating': 4.8, 'reviews': 1524}.
// Missing and falsy entries become "". An empty field yields an empty Venue
// and no error; anything that is not a mapping literal yields an empty Venue
// and an error wrapping literal.ErrMalformed or errNotMapping.
func ExpandVenue(raw string) (Venue, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Venue{}, nil
	}

	v, err := literal.Parse(raw)
	if err != nil {
		return Venue{}, err
	}
	if v.Kind != literal.KindMap {
		return Venue{}, errNotMapping
	}

	return Venue{
		Name:       entry(v, "name"),
		Rating:     entry(v, "rating"),
		Reviews:    entry(v, "reviews"),
		SearchLink: entry(v, "link"),
	}, nil
}

func entry(v literal.Value, key string) string {
	e, ok := v.Get(key)
	if !ok || !e.Truthy() {
		return ""
	}
	return strings.TrimSpace(e.String())
}

// SplitAddress flattens an address field. A sequence literal such as
// ['1521 10th Ave', 'Seattle, WA'] yields its first element as the address
// and its second as city/state. Any other value is kept as the address with
// cityState passed through, so already flattened records are unchanged.
//
// A field that starts like a sequence but does not decode is kept verbatim
// with an empty city/state, and the decode error is returned.
func SplitAddress(raw, cityState string) (address, city string, err error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") {
		return raw, cityState, nil
	}

	v, err := literal.Parse(raw)
	if err != nil {
		return raw, "", err
	}
	if len(v.Items) > 0 {
		address = strings.TrimSpace(v.Items[0].String())
	}
	if len(v.Items) > 1 {
		city = strings.TrimSpace(v.Items[1].String())
	}
	return address, city, nil
}

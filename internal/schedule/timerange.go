package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time on a 12-hour clock without a leading zero, e.g. "7:00 PM"
func (t TimeOfDay) String() string {
	marker := "AM"
	if t.Hour >= 12 {
		marker = "PM"
	}
	hour := t.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, marker)
}

var (
	timePattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?)\s*([AP]M)?\b`)
	dashes      = strings.NewReplacer("–", "-", "—", "-")
)

// maxTimes is the most times a single token can contribute (start and end)
const maxTimes = 2

// ExtractTimes scans a time token for up to two clock times, left to right.
//
// The rightmost explicit AM/PM marker is inherited by the first match when it
// has none, so "7 – 8 PM" yields 7:00 PM and 8:00 PM. Bare numbers above 12
// with neither colon nor marker are skipped as stray calendar days, and
// matches that do not resolve to a valid time are skipped too.
func ExtractTimes(token string) []TimeOfDay {
	times := make([]TimeOfDay, 0, maxTimes)
	if token == "" {
		return times
	}

	matches := timePattern.FindAllStringSubmatch(dashes.Replace(token), -1)
	if len(matches) == 0 {
		return times
	}

	rightMarker := ""
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i][2] != "" {
			rightMarker = strings.ToUpper(matches[i][2])
			break
		}
	}

	for idx, m := range matches {
		hhmm := m[1]
		marker := strings.ToUpper(m[2])

		if marker == "" && !strings.Contains(hhmm, ":") {
			if n, err := strconv.Atoi(hhmm); err == nil && n > 12 {
				continue
			}
		}

		if marker == "" && idx == 0 {
			marker = rightMarker
		}

		t, ok := parseClock(hhmm, marker)
		if !ok {
			continue
		}
		times = append(times, t)
		if len(times) == maxTimes {
			break
		}
	}
	return times
}

// parseClock resolves "h" or "h:mm" with an optional AM/PM marker. Twelve-hour
// readings are tried first when a marker is present, then 24-hour, then an
// unmarked 12-hour reading.
func parseClock(hhmm, marker string) (TimeOfDay, bool) {
	hourText, minuteText, hasMinute := strings.Cut(hhmm, ":")
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return TimeOfDay{}, false
	}
	minute := 0
	if hasMinute {
		if minute, err = strconv.Atoi(minuteText); err != nil {
			return TimeOfDay{}, false
		}
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, false
	}

	if marker != "" && hour >= 1 && hour <= 12 {
		h := hour % 12
		if marker == "PM" {
			h += 12
		}
		return TimeOfDay{Hour: h, Minute: minute}, true
	}

	if hour >= 0 && hour <= 23 {
		return TimeOfDay{Hour: hour, Minute: minute}, true
	}

	if hour >= 1 && hour <= 12 {
		return TimeOfDay{Hour: hour, Minute: minute}, true
	}
	return TimeOfDay{}, false
}

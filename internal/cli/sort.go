package cli

import (
	"sort"
)

// nameCount is one entry of a report breakdown
type nameCount struct {
	Name  string
	Count int
}

// sortCounts orders a breakdown by count, largest first. Equal counts are
// ordered by name.
func sortCounts(counts map[string]int) []nameCount {
	out := make([]nameCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, nameCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

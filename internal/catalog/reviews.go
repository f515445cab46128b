package catalog

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/pfrederiksen/bookclub-events/internal/literal"
)

// DefaultMinRating is the lowest rating a review needs to count
const DefaultMinRating = 3

// ConvertReviews reads review lines from r and writes user_id,books rows to w.
// Reviews rated below minRating or lacking a user_id or parent_asin are
// skipped. Only users with more than one distinct book are written, in the
// order they first appear, with their books as a sorted list literal. It
// returns the number of users written.
func ConvertReviews(r io.Reader, w io.Writer, minRating float64) (int, error) {
	var order []string
	books := make(map[string]map[string]bool)

	err := eachLine(r, func(_ int, review literal.Value) error {
		if !rated(review, minRating) {
			return nil
		}
		user := stringField(review, "user_id")
		asin := stringField(review, "parent_asin")
		if user == "" || asin == "" {
			return nil
		}
		if books[user] == nil {
			books[user] = make(map[string]bool)
			order = append(order, user)
		}
		books[user][asin] = true
		return nil
	})
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write([]string{"user_id", "books"}); err != nil {
		return 0, err
	}

	count := 0
	for _, user := range order {
		if len(books[user]) < 2 {
			continue
		}
		asins := make([]string, 0, len(books[user]))
		for asin := range books[user] {
			asins = append(asins, asin)
		}
		sort.Strings(asins)
		if err := cw.Write([]string{user, literal.Repr(literal.Strings(asins))}); err != nil {
			return count, err
		}
		count++
	}

	cw.Flush()
	return count, cw.Error()
}

func rated(review literal.Value, minRating float64) bool {
	v, ok := review.Get("rating")
	if !ok || v.Kind != literal.KindNumber {
		return false
	}
	rating, err := strconv.ParseFloat(v.Text, 64)
	return err == nil && rating >= minRating
}

// stringField returns the text of a string or number field, or ""
func stringField(v literal.Value, key string) string {
	f, ok := v.Get(key)
	if !ok || (f.Kind != literal.KindString && f.Kind != literal.KindNumber) {
		return ""
	}
	return f.Text
}

package catalog

import (
	"encoding/csv"
	"io"

	"github.com/pfrederiksen/bookclub-events/internal/literal"
	"github.com/pfrederiksen/bookclub-events/internal/storage"
)

// TopCategories are the categories kept on each book. Together they cover
// most of the books in the metadata dump.
var TopCategories = map[string]bool{
	"Literature & Fiction":         true,
	"Children's Books":             true,
	"Genre Fiction":                true,
	"Mystery, Thriller & Suspense": true,
	"Arts & Photography":           true,
	"History":                      true,
	"Biographies & Memoirs":        true,
	"Science Fiction & Fantasy":    true,
	"Crafts, Hobbies & Home":       true,
	"Christian Books & Bibles":     true,
	"Thrillers & Suspense":         true,
	"Business & Money":             true,
	"Politics & Social Sciences":   true,
	"Growing Up & Facts of Life":   true,
	"Romance":                      true,
	"Science & Math":               true,
	"Teen & Young Adult":           true,
}

// RemovedBookColumns are dropped from every book
var RemovedBookColumns = []string{
	"main_category",
	"features",
	"price",
	"videos",
	"store",
	"details",
	"bought_together",
	"subtitle",
}

// ConvertBooks reads book metadata lines from r and writes them to w as CSV.
// The header is the key order of the first book. Keys missing from a later
// book are written empty and keys the header lacks are ignored. It returns
// the number of books written.
func ConvertBooks(r io.Reader, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	var header []string
	count := 0
	err := eachLine(r, func(_ int, book literal.Value) error {
		book = cleanBook(book)
		if header == nil {
			header = make([]string, 0, len(book.Entries))
			for _, e := range book.Entries {
				header = append(header, e.Key)
			}
			if err := cw.Write(header); err != nil {
				return err
			}
		}

		row := make([]string, len(header))
		for i, col := range header {
			if v, ok := book.Get(col); ok {
				row[i] = storage.FieldText(v)
			}
		}
		count++
		return cw.Write(row)
	})
	if err != nil {
		return count, err
	}

	cw.Flush()
	return count, cw.Error()
}

// cleanBook filters categories to TopCategories and drops RemovedBookColumns.
// Duplicate keys collapse to their last value at the first key's position.
func cleanBook(book literal.Value) literal.Value {
	removed := make(map[string]bool, len(RemovedBookColumns))
	for _, col := range RemovedBookColumns {
		removed[col] = true
	}

	entries := make([]literal.Entry, 0, len(book.Entries))
	seen := make(map[string]bool, len(book.Entries))
	for _, e := range book.Entries {
		if removed[e.Key] || seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		v, _ := book.Get(e.Key)
		if e.Key == "categories" && v.Kind == literal.KindList {
			v = filterCategories(v)
		}
		entries = append(entries, literal.Entry{Key: e.Key, Value: v})
	}
	return literal.Map(entries...)
}

func filterCategories(v literal.Value) literal.Value {
	kept := make([]literal.Value, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Kind == literal.KindString && TopCategories[item.Text] {
			kept = append(kept, item)
		}
	}
	return literal.List(kept...)
}

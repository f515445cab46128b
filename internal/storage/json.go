package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/bookclub-events/internal/event"
	"github.com/pfrederiksen/bookclub-events/internal/literal"
)

// DecodeJSON reads an array of objects. The header follows key order of
// first appearance. Scalars become their text (null becomes ""), nested
// objects and arrays become literal text such as
// ['1521 10th Ave', 'Seattle, WA'].
func DecodeJSON(data []byte) (*event.Batch, error) {
	v, err := literal.FromJSON(data)
	if err != nil {
		return nil, err
	}
	if v.Kind != literal.KindList {
		return nil, fmt.Errorf("expected an array of objects")
	}

	b := event.NewBatch()
	for i, item := range v.Items {
		if item.Kind != literal.KindMap {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
		rec := make(event.Record, len(item.Entries))
		for _, e := range item.Entries {
			b.AddColumn(e.Key)
			rec[e.Key] = FieldText(e.Value)
		}
		b.Append(rec)
	}
	return b, nil
}

// FieldText renders a decoded value as a flat field
func FieldText(v literal.Value) string {
	switch v.Kind {
	case literal.KindNone:
		return ""
	case literal.KindList, literal.KindMap:
		return literal.Repr(v)
	default:
		return v.Text
	}
}

// EncodeJSON writes b as an indented array of objects with keys in header
// order. Every value is a string.
func EncodeJSON(w io.Writer, b *event.Batch) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, r := range b.Records {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for j, col := range b.Columns {
			if j > 0 {
				buf.WriteString(",")
			}
			key, err := json.Marshal(col)
			if err != nil {
				return err
			}
			val, err := json.Marshal(r.Get(col))
			if err != nil {
				return err
			}
			buf.WriteString("\n    ")
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(val)
		}
		buf.WriteString("\n  }")
	}
	if len(b.Records) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	_, err := w.Write(buf.Bytes())
	return err
}

package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/bookclub-events/internal/event"
)

const utf8BOM = "\ufeff"

// DecodeCSV reads a header row and the records below it. Short rows are
// padded with empty values; fields beyond the header are ignored.
func DecodeCSV(r io.Reader) (*event.Batch, error) {
	br := bufio.NewReader(r)
	if p, _ := br.Peek(len(utf8BOM)); string(p) == utf8BOM {
		br.Discard(len(utf8BOM)) // nolint:errcheck
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return event.NewBatch(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	b := event.NewBatch(header...)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		rec := make(event.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		b.Append(rec)
	}
	return b, nil
}

// EncodeCSV writes b with a header row. Every field is quoted and rows end
// with "\n".
func EncodeCSV(w io.Writer, b *event.Batch) error {
	rows := make([][]string, len(b.Records))
	for i := range b.Records {
		rows[i] = b.Row(i)
	}
	return WriteQuotedCSV(w, b.Columns, rows)
}

// WriteQuotedCSV writes header and rows with every field quoted
func WriteQuotedCSV(w io.Writer, header []string, rows [][]string) error {
	if err := writeQuotedRow(w, header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeQuotedRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeQuotedRow(w io.Writer, fields []string) error {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

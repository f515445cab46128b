package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pfrederiksen/bookclub-events/internal/literal"
)

// eachLine decodes every non-blank line of r as a JSON object and calls fn
// with it. Line numbers start at 1.
func eachLine(r io.Reader, fn func(line int, obj literal.Value) error) error {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		raw, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading line %d: %w", n, err)
		}

		if line := bytes.TrimSpace(raw); len(line) > 0 {
			obj, decErr := literal.FromJSON(line)
			if decErr != nil {
				return fmt.Errorf("line %d: %w", n, decErr)
			}
			if obj.Kind != literal.KindMap {
				return fmt.Errorf("line %d: %w: expected an object", n, literal.ErrMalformed)
			}
			if fnErr := fn(n, obj); fnErr != nil {
				return fnErr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

package literal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when text is not a supported literal
var ErrMalformed = errors.New("malformed literal")

// Kind identifies the type of a Value
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// Value is a decoded literal. Scalars keep their text: the string contents,
// the number as written, or "True"/"False" for booleans.
type Value struct {
	Kind    Kind
	Text    string
	Items   []Value
	Entries []Entry
}

// Entry is one key/value pair of a mapping, in source order
type Entry struct {
	Key   string
	Value Value
}

// None returns the null value
func None() Value { return Value{Kind: KindNone} }

// Bool returns a boolean value
func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Text: "True"}
	}
	return Value{Kind: KindBool, Text: "False"}
}

// Number returns a number value with the given source text
func Number(text string) Value { return Value{Kind: KindNumber, Text: text} }

// String returns a string value
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// List returns a sequence value
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, Items: items}
}

// Strings returns a sequence of string values
func Strings(ss []string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return List(items...)
}

// Map returns a mapping value
func Map(entries ...Entry) Value {
	if entries == nil {
		entries = []Entry{}
	}
	return Value{Kind: KindMap, Entries: entries}
}

// Get looks up key in a mapping. The last occurrence of a duplicated key wins.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMap {
		return Value{}, false
	}
	for i := len(v.Entries) - 1; i >= 0; i-- {
		if v.Entries[i].Key == key {
			return v.Entries[i].Value, true
		}
	}
	return Value{}, false
}

// Truthy follows Python truthiness: None, False, zero, and empty strings or
// containers are false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindBool:
		return v.Text == "True"
	case KindNumber:
		return !isZeroNumber(v.Text)
	case KindString:
		return v.Text != ""
	case KindList:
		return len(v.Items) > 0
	case KindMap:
		return len(v.Entries) > 0
	}
	return false
}

// String renders the value the way Python's str() would: strings unquoted,
// containers as their repr.
func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "None"
	case KindBool, KindNumber, KindString:
		return v.Text
	}
	return Repr(v)
}

// Repr renders v as a Python literal
func Repr(v Value) string {
	var b strings.Builder
	writeRepr(&b, v)
	return b.String()
}

func writeRepr(b *strings.Builder, v Value) {
	switch v.Kind {
	case KindNone:
		b.WriteString("None")
	case KindBool, KindNumber:
		b.WriteString(v.Text)
	case KindString:
		b.WriteString(quote(v.Text))
	case KindList:
		b.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, item)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(e.Key))
			b.WriteString(": ")
			writeRepr(b, e.Value)
		}
		b.WriteByte('}')
	}
}

// quote uses single quotes unless the string holds a single quote and no
// double quote, matching Python's repr.
func quote(s string) string {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func isZeroNumber(text string) bool {
	t := strings.TrimLeft(text, "+-")
	if i := strings.IndexAny(t, "eE"); i >= 0 {
		t = t[:i]
	}
	for _, r := range t {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}

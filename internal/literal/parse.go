package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse decodes a single mapping or sequence literal. Sequences may use [] or ();
// elements and mapping values must be scalars and mapping keys must be strings.
func Parse(text string) (Value, error) {
	p := &parser{src: text}
	p.skipSpace()

	var v Value
	var err error
	switch p.peek() {
	case '{':
		v, err = p.parseMap()
	case '[', '(':
		v, err = p.parseList()
	default:
		return Value{}, p.errorf("expected mapping or sequence")
	}
	if err != nil {
		return Value{}, err
	}

	p.skipSpace()
	if !p.eof() {
		return Value{}, p.errorf("unexpected trailing text")
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformed, fmt.Sprintf(format, args...), p.pos)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseList() (Value, error) {
	closer := byte(']')
	if p.peek() == '(' {
		closer = ')'
	}
	p.pos++

	items := make([]Value, 0)
	for {
		p.skipSpace()
		if p.peek() == closer {
			p.pos++
			return List(items...), nil
		}

		item, err := p.parseScalar()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return List(items...), nil
		default:
			return Value{}, p.errorf("expected ',' or %q", closer)
		}
	}
}

func (p *parser) parseMap() (Value, error) {
	p.pos++

	entries := make([]Entry, 0)
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return Map(entries...), nil
		}

		key, err := p.parseScalar()
		if err != nil {
			return Value{}, err
		}
		if key.Kind != KindString {
			return Value{}, p.errorf("mapping key must be a string")
		}

		p.skipSpace()
		if p.peek() != ':' {
			return Value{}, p.errorf("expected ':'")
		}
		p.pos++
		p.skipSpace()

		val, err := p.parseScalar()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key.Text, Value: val})

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return Map(entries...), nil
		default:
			return Value{}, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *parser) parseScalar() (Value, error) {
	c := p.peek()
	switch {
	case c == '\'' || c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case isIdentStart(c):
		start := p.pos
		for !p.eof() && isIdentStart(p.peek()) {
			p.pos++
		}
		switch word := p.src[start:p.pos]; word {
		case "None", "null":
			return None(), nil
		case "True", "true":
			return Bool(true), nil
		case "False", "false":
			return Bool(false), nil
		default:
			p.pos = start
			return Value{}, p.errorf("unsupported name %q", word)
		}
	case c == '[' || c == '(' || c == '{':
		return Value{}, p.errorf("nested containers are not supported")
	case c == 0:
		return Value{}, p.errorf("unexpected end of input")
	}
	return Value{}, p.errorf("unexpected character %q", c)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	for !p.eof() {
		c := p.peek()
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '_' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}

	text := p.src[start:p.pos]
	if _, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err != nil {
		p.pos = start
		return Value{}, p.errorf("invalid number %q", text)
	}
	return Number(text), nil
}

func (p *parser) parseString() (string, error) {
	q := p.peek()
	p.pos++

	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return "", p.errorf("newline in string")
		case c == '\\':
			if err := p.parseEscape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *parser) parseEscape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.eof() {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++

	switch c {
	case '\\', '\'', '"', '/':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'x':
		return p.hexEscape(b, 2)
	case 'u':
		return p.hexEscape(b, 4)
	case 'U':
		return p.hexEscape(b, 8)
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *parser) hexEscape(b *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.errorf("truncated escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return p.errorf("invalid escape")
	}
	p.pos += digits
	b.WriteRune(rune(n))
	return nil
}

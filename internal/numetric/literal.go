package numetric

// literal.go coerces stringified list values into structured values before
// upload. Only a narrow, explicit grammar is recognized:
//
//	list    = '[' [ literal { ',' literal } [','] ] ']'
//	literal = quoted string | integer | float | True | False | None
//
// This is deliberately not a general expression parser; arbitrary cell data
// must never reach anything resembling an evaluator.

import (
	"strconv"
	"strings"
)

// CoerceValue substitutes a value only when it parses completely as a list
// literal. A multi-element list stays a list, a single-element list collapses
// to its element, and an empty list becomes nil. Anything that does not parse
// as a list, including bare numbers like "3.5", is returned unchanged.
//
// The collapse rules mirror what the receiving API has historically been sent;
// they are convention, not documented contract.
func CoerceValue(s string) any {
	items, ok := parseListLiteral(s)
	if !ok {
		return s
	}
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	default:
		return items
	}
}

// parseListLiteral parses s as a bracketed comma-separated list of scalar
// literals. The second return value is false when s is not such a list.
func parseListLiteral(s string) ([]any, bool) {
	p := &literalParser{s: s}
	p.skipSpace()
	if !p.eat('[') {
		return nil, false
	}

	items := []any{}
	for {
		p.skipSpace()
		if p.eat(']') {
			break
		}
		v, ok := p.literal()
		if !ok {
			return nil, false
		}
		items = append(items, v)

		p.skipSpace()
		if p.eat(']') {
			break
		}
		if !p.eat(',') {
			return nil, false
		}
	}

	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, false
	}
	return items, true
}

type literalParser struct {
	s   string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) eat(c byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// literal parses one scalar literal at the current position.
func (p *literalParser) literal() (any, bool) {
	if p.pos >= len(p.s) {
		return nil, false
	}
	switch c := p.s[p.pos]; {
	case c == '\'' || c == '"':
		return p.quotedString(c)
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.keyword()
	}
}

// quotedString parses a string delimited by quote, handling the common
// backslash escapes. Unknown escapes keep the escaped character as-is.
func (p *literalParser) quotedString(quote byte) (any, bool) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), true
		case '\\':
			p.pos++
			if p.pos >= len(p.s) {
				return nil, false
			}
			switch e := p.s[p.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(e)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return nil, false // unterminated
}

// number parses an integer or float literal. Integers that fit in int64 stay
// integral; everything else numeric becomes float64.
func (p *literalParser) number() (any, bool) {
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
		p.pos++
	}
	digits := 0
	float := false
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c >= '0' && c <= '9':
			digits++
			p.pos++
		case c == '.' && !float:
			float = true
			p.pos++
		case (c == 'e' || c == 'E') && digits > 0:
			float = true
			p.pos++
			if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	if digits == 0 {
		return nil, false
	}
	text := p.s[start:p.pos]
	if !float {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, true
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// keyword parses the Python constants True, False, and None.
func (p *literalParser) keyword() (any, bool) {
	rest := p.s[p.pos:]
	switch {
	case strings.HasPrefix(rest, "True"):
		p.pos += len("True")
		return true, true
	case strings.HasPrefix(rest, "False"):
		p.pos += len("False")
		return false, true
	case strings.HasPrefix(rest, "None"):
		p.pos += len("None")
		return nil, true
	default:
		return nil, false
	}
}

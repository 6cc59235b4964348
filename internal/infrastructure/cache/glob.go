package cache

import (
	"errors"
	"regexp"
	"strings"
)

var errUnterminatedClass = errors.New("unterminated [ in pattern")

// compileGlob translates a Redis MATCH pattern into an anchored regexp.
// '*' and '?' match any character including '/', '[...]' is a character
// class ('^' negates, 'a-z' ranges) and '\' escapes the next character.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '\\':
			if i+1 < len(runes) {
				i++
			}
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case '[':
			end, class, err := globClass(runes, i+1)
			if err != nil {
				return nil, err
			}
			b.WriteString(class)
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}

// globClass converts the class starting at runes[start] and returns the
// index of its closing ']'
func globClass(runes []rune, start int) (int, string, error) {
	var b strings.Builder
	b.WriteByte('[')
	i := start
	if i < len(runes) && runes[i] == '^' {
		b.WriteByte('^')
		i++
	}
	for ; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ']':
			if b.Len() == 1 || b.String() == "[^" {
				// empty class matches nothing
				return i, `[^\x00-\x{10FFFF}]`, nil
			}
			b.WriteByte(']')
			return i, b.String(), nil
		case r == '-' && b.Len() > 1 && b.String() != "[^" && i+1 < len(runes) && runes[i+1] != ']':
			b.WriteByte('-')
		case r == '\\' && i+1 < len(runes):
			i++
			writeClassLiteral(&b, runes[i])
		default:
			writeClassLiteral(&b, r)
		}
	}
	return 0, "", errUnterminatedClass
}

// writeClassLiteral writes r so that it only matches itself inside a class
func writeClassLiteral(b *strings.Builder, r rune) {
	if r < 0x80 && !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
		b.WriteByte('\\')
	}
	b.WriteRune(r)
}

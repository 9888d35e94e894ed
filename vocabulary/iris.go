package vocabulary

import (
	"fmt"
	"net/url"
	"strings"
)

// IsIRI reports whether s is an absolute IRI that can be written between
// angle brackets in a query without escaping.
func IsIRI(s string) bool {
	if s == "" || strings.ContainsAny(s, "<>\"{}|^`\\ \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// Ref renders an IRI as a query term. It returns an error for strings that
// are not safe to embed.
func Ref(iri string) (string, error) {
	if !IsIRI(iri) {
		return "", fmt.Errorf("not an absolute IRI: %q", iri)
	}
	return "<" + iri + ">", nil
}

// Literal renders s as a quoted string literal, with an optional language
// tag.
//
// Examples:
//   - Literal("Montréal", "") -> "\"Montréal\""
//   - Literal("Saint-John's", "en") -> "\"Saint-John's\"@en"
func Literal(s, lang string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	if lang != "" {
		b.WriteByte('@')
		b.WriteString(lang)
	}
	return b.String()
}

// TrimIRI strips whitespace, surrounding quotes and angle brackets from a
// value read from a query result or a guide file.
func TrimIRI(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	return strings.TrimSpace(s)
}

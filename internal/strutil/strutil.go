// Package strutil provides naming helpers shared by the migration writer,
// the schema-file loader and the CLI.
package strutil

import (
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------------
// Case Conversion
// -----------------------------------------------------------------------------

// ToSnakeCase converts a string to snake_case.
// Examples: userName -> user_name, OrderStatus -> order_status, HTTPServer -> http_server
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s) + 4)

	for i, r := range s {
		if unicode.IsUpper(r) {
			// underscore before an upper-case letter that starts a new word
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) {
					result.WriteByte('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) && prev != '_' {
					result.WriteByte('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else if r == '-' || r == ' ' {
			result.WriteByte('_')
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// Slug turns a free-form revision name into a file-name safe snake_case word.
// Runs of anything other than letters and digits collapse into a single
// underscore. "Add banned status!" -> "add_banned_status"
func Slug(s string) string {
	snake := ToSnakeCase(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(snake))
	pending := false
	for _, r := range snake {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// Reference Parsing
// -----------------------------------------------------------------------------

// ParseRef splits a dot-separated reference into schema and name.
// Handles relative refs: ".color" → ("", "color").
// Empty or no-dot input → ("", ref).
func ParseRef(ref string) (schema, name string) {
	if ref == "" {
		return "", ""
	}
	if ref[0] == '.' {
		return "", ref[1:]
	}
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

// QualifiedName joins schema and name with a dot; an empty schema yields name.
func QualifiedName(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}

// -----------------------------------------------------------------------------
// Formatting
// -----------------------------------------------------------------------------

// Indent indents each non-empty line of text with the given number of spaces.
func Indent(text string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// Package rewrite updates stored SQL text when enum labels are renamed.
//
// The functions are string substitution over a handful of known literal
// shapes, not a SQL parser. Text in any other shape is returned unchanged.
package rewrite

import (
	"regexp"
	"strings"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
)

// typeRef matches a possibly schema-qualified, possibly quoted type name.
const typeRef = `(?:"(?:[^"]|"")+"|[A-Za-z_][A-Za-z0-9_$]*)(?:\.(?:"(?:[^"]|"")+"|[A-Za-z_][A-Za-z0-9_$]*))?`

var (
	// 'v'::type   '{a,b}'::type[]   '{"a"}'::type
	castLiteralRe = regexp.MustCompile(`^'((?:[^']|'')*)'::` + typeRef + `((?:\[\])?)$`)

	// ARRAY['a'::type, 'b'::type]   ARRAY['a', 'b']::type[]
	arrayCtorRe = regexp.MustCompile(`(?is)^ARRAY\[(.*?)\](?:::` + typeRef + `(\[\]))?$`)

	// NULL::type
	nullCastRe = regexp.MustCompile(`(?i)^NULL::` + typeRef + `((?:\[\])?)$`)

	// one ARRAY[...] element: 'v' with an optional cast
	ctorElemRe = regexp.MustCompile(`^'((?:[^']|'')*)'(?:(::)` + typeRef + `((?:\[\])?))?$`)
)

// RenameDefault rewrites a column default captured before a sync so it fits
// the new enum: renamed labels are substituted and every cast points at the
// new type, schema-qualified when schema is set. Recognised shapes:
//
//	'v'::old_type
//	'{a,"b"}'::old_type[]
//	ARRAY['a'::old_type, 'b'::old_type]
//	ARRAY['a', 'b']::old_type[]
//	NULL::old_type
func RenameDefault(schema, def, enumName string, renames []ast.RenamePair) string {
	text := strings.TrimSpace(def)
	target := dialect.Postgres().Qualify(schema, enumName)
	table := renameTable(renames)

	if m := castLiteralRe.FindStringSubmatch(text); m != nil {
		body, suffix := unescapeLiteral(m[1]), m[2]
		if isArrayLiteral(body) {
			return escapeLiteral(renameArrayLiteral(body, table)) + "::" + target + suffix
		}
		return escapeLiteral(renameLabel(body, table)) + "::" + target + suffix
	}

	if m := nullCastRe.FindStringSubmatch(text); m != nil {
		return "NULL::" + target + m[1]
	}

	if m := arrayCtorRe.FindStringSubmatch(text); m != nil {
		inner, trailing := m[1], m[2] != ""
		if strings.TrimSpace(inner) == "" {
			if trailing {
				return "ARRAY[]::" + target + "[]"
			}
			return def
		}
		elems, ok := splitTopLevel(inner)
		if !ok {
			return def
		}
		out := make([]string, 0, len(elems))
		for _, elem := range elems {
			em := ctorElemRe.FindStringSubmatch(strings.TrimSpace(elem))
			if em == nil {
				return def
			}
			lit := escapeLiteral(renameLabel(unescapeLiteral(em[1]), table))
			if em[2] != "" {
				lit += "::" + target + em[3]
			}
			out = append(out, lit)
		}
		result := "ARRAY[" + strings.Join(out, ", ") + "]"
		if trailing {
			result += "::" + target + "[]"
		}
		return result
	}

	return def
}

func renameTable(renames []ast.RenamePair) map[string]string {
	table := make(map[string]string, len(renames))
	for _, r := range renames {
		table[r.Old] = r.New
	}
	return table
}

func renameLabel(label string, table map[string]string) string {
	if renamed, ok := table[label]; ok {
		return renamed
	}
	return label
}

func unescapeLiteral(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}

func escapeLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// splitTopLevel splits s on commas that are outside single-quoted literals.
// It reports false when a literal is left unterminated.
func splitTopLevel(s string) ([]string, bool) {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' && inQuote && i+1 < len(s) && s[i+1] == '\'':
			cur.WriteString("''")
			i++
		case c == '\'':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ',' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if inQuote {
		return nil, false
	}
	return append(parts, cur.String()), true
}

// -----------------------------------------------------------------------------
// Array literals: {a,"b c",NULL}
// -----------------------------------------------------------------------------

func isArrayLiteral(body string) bool {
	return strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}")
}

type arrayElem struct {
	raw    string // as written
	value  string // unescaped
	quoted bool
}

// renameArrayLiteral renames labels inside a Postgres array literal. Elements
// that are not renamed keep their original spelling.
func renameArrayLiteral(body string, table map[string]string) string {
	elems, ok := parseArrayLiteral(body[1 : len(body)-1])
	if !ok {
		return body
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		renamed, hit := table[e.value]
		switch {
		case !hit || (!e.quoted && strings.EqualFold(e.raw, "NULL")):
			b.WriteString(e.raw)
		case e.quoted || needsArrayQuote(renamed):
			b.WriteString(quoteArrayElem(renamed))
		default:
			b.WriteString(renamed)
		}
	}
	b.WriteByte('}')
	return b.String()
}

func parseArrayLiteral(s string) ([]arrayElem, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	var elems []arrayElem
	i := 0
	for i <= len(s) {
		start := i
		var val strings.Builder
		quoted := false
		if i < len(s) && s[i] == '"' {
			quoted = true
			i++
			closed := false
			for i < len(s) {
				c := s[i]
				if c == '\\' && i+1 < len(s) {
					val.WriteByte(s[i+1])
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				val.WriteByte(c)
				i++
			}
			if !closed {
				return nil, false
			}
		} else {
			for i < len(s) && s[i] != ',' {
				if s[i] == '{' || s[i] == '"' {
					return nil, false // nested arrays and stray quotes are out of scope
				}
				val.WriteByte(s[i])
				i++
			}
		}
		raw := s[start:i]
		value := val.String()
		if !quoted {
			value = strings.TrimSpace(value)
		}
		elems = append(elems, arrayElem{raw: raw, value: value, quoted: quoted})
		if i >= len(s) {
			break
		}
		if s[i] != ',' {
			return nil, false
		}
		i++
	}
	return elems, true
}

func needsArrayQuote(v string) bool {
	if v == "" || strings.EqualFold(v, "NULL") {
		return true
	}
	return strings.ContainsAny(v, "{},\"\\ \t\n")
}

func quoteArrayElem(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

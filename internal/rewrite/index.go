package rewrite

import (
	"strings"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
)

// TransformIndexDefinition rewrites 'old'::enum and 'old'::schema.enum casts in
// an index definition to use the renamed labels. Everything else, including
// literals cast to other types, is left verbatim. All pairs are applied in one
// pass, so swaps like a->b, b->a work.
func TransformIndexDefinition(def, enumName string, renames []ast.RenamePair, schema string) string {
	if len(renames) == 0 {
		return def
	}
	spellings := typeSpellings(schema, enumName)

	var b strings.Builder
	for i := 0; i < len(def); {
		if def[i] == '\'' && (i == 0 || def[i-1] != '\'') {
			if n, repl := matchCast(def[i:], renames, spellings); n > 0 {
				b.WriteString(repl)
				i += n
				continue
			}
		}
		b.WriteByte(def[i])
		i++
	}
	return b.String()
}

// matchCast reports the length of a 'old'::typ prefix of s and its replacement.
func matchCast(s string, renames []ast.RenamePair, spellings []string) (int, string) {
	for _, r := range renames {
		lit := escapeLiteral(r.Old) + "::"
		if !strings.HasPrefix(s, lit) {
			continue
		}
		for _, typ := range spellings {
			n := len(lit) + len(typ)
			if !strings.HasPrefix(s[len(lit):], typ) || (n < len(s) && isTypeChar(s[n])) {
				continue
			}
			return n, escapeLiteral(r.New) + "::" + typ
		}
	}
	return 0, ""
}

func isTypeChar(c byte) bool {
	return c == '_' || c == '$' || c == '.' || c == '"' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// TransformIndexes applies TransformIndexDefinition to every index.
func TransformIndexes(indexes []ast.TableIndex, enumName string, renames []ast.RenamePair, schema string) []ast.TableIndex {
	if len(renames) == 0 {
		return indexes
	}
	out := make([]ast.TableIndex, len(indexes))
	for i, idx := range indexes {
		out[i] = ast.TableIndex{
			Name:       idx.Name,
			Definition: TransformIndexDefinition(idx.Definition, enumName, renames, schema),
		}
	}
	return out
}

// typeSpellings lists how pg_get_indexdef may spell the enum type: bare and
// quoted, unqualified and schema-qualified.
func typeSpellings(schema, enumName string) []string {
	pg := dialect.Postgres()
	names := uniq(enumName, pg.QuoteIdent(enumName))
	spellings := append([]string(nil), names...)
	if schema != "" {
		for _, s := range uniq(schema, pg.QuoteIdent(schema)) {
			for _, n := range names {
				spellings = append(spellings, s+"."+n)
			}
		}
	}
	return spellings
}

func uniq(a, b string) []string {
	if a == b {
		return []string{a}
	}
	return []string{a, b}
}

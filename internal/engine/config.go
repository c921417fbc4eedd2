// Package engine compares declared enums against the catalog and plans
// migration revisions.
package engine

import (
	"path"

	"github.com/hlop3z/enumsync/internal/alerr"
)

// Config controls one reconciliation pass.
type Config struct {
	// DropUnusedEnums emits a drop for catalog enums nothing declares.
	DropUnusedEnums bool

	// SyncEnumValues emits a value sync for enums whose labels changed.
	SyncEnumValues bool

	// IgnoreEnumValuesOrder compares label lists as sets.
	IgnoreEnumValuesOrder bool

	// IncludeName filters the enums in scope. Nil includes all.
	IncludeName func(name string) bool

	// ForceDialectSupport runs the comparison on dialects without native
	// enums instead of skipping it.
	ForceDialectSupport bool

	// DefaultSchema replaces the dialect default for unqualified declarations.
	DefaultSchema string
}

// DefaultConfig returns the default reconciliation settings.
func DefaultConfig() Config {
	return Config{
		DropUnusedEnums: true,
		SyncEnumValues:  true,
	}
}

func (c Config) includes(name string) bool {
	return c.IncludeName == nil || c.IncludeName(name)
}

// NamePredicate builds an inclusion predicate from glob lists. An empty
// include list includes everything; excludes win over includes.
func NamePredicate(include, exclude []string) (func(string) bool, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if _, err := path.Match(p, ""); err != nil {
			return nil, alerr.Wrapf(alerr.ErrSchemaInvalid, err, "invalid enum name pattern %q", p).
				WithHelp("patterns use shell glob syntax, e.g. order_* or *_status")
		}
	}
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}

	match := func(patterns []string, name string) bool {
		for _, p := range patterns {
			if ok, _ := path.Match(p, name); ok {
				return true
			}
		}
		return false
	}

	return func(name string) bool {
		if match(exclude, name) {
			return false
		}
		return len(include) == 0 || match(include, name)
	}, nil
}

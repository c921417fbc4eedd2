package engine

import (
	"testing"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.DropUnusedEnums || !cfg.SyncEnumValues {
		t.Errorf("DefaultConfig() = %+v, want drops and syncs enabled", cfg)
	}
	if cfg.IgnoreEnumValuesOrder || cfg.ForceDialectSupport {
		t.Errorf("DefaultConfig() = %+v, want order-sensitive and no forcing", cfg)
	}
	if !cfg.includes("anything") {
		t.Error("DefaultConfig() excludes names")
	}
}

func TestNamePredicate(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		in      map[string]bool
	}{
		{
			name:    "include only",
			include: []string{"order_*"},
			in:      map[string]bool{"order_status": true, "color": false},
		},
		{
			name:    "exclude only",
			exclude: []string{"legacy_*"},
			in:      map[string]bool{"legacy_mood": false, "mood": true},
		},
		{
			name:    "exclude wins",
			include: []string{"*_status"},
			exclude: []string{"old_status"},
			in:      map[string]bool{"order_status": true, "old_status": false, "color": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := NamePredicate(tt.include, tt.exclude)
			testutil.AssertNoError(t, err)
			for name, want := range tt.in {
				if got := pred(name); got != want {
					t.Errorf("pred(%q) = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestNamePredicateEmpty(t *testing.T) {
	pred, err := NamePredicate(nil, nil)
	testutil.AssertNoError(t, err)
	if pred != nil {
		t.Error("NamePredicate() with no patterns should return nil")
	}
}

func TestNamePredicateInvalid(t *testing.T) {
	_, err := NamePredicate([]string{"[a-"}, nil)
	testutil.AssertError(t, err, alerr.ErrSchemaInvalid)
}

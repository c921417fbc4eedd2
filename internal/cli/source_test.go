package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlop3z/enumsync/internal/testutil"
)

func plainMode(t *testing.T) {
	t.Helper()
	original := defaultCfg
	t.Cleanup(func() { defaultCfg = original })
	SetDefault(&Config{Mode: ModePlain})
}

func TestNewSourceSnippet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	content := "tables:\n  orders:\n    columns:\n      status: {enum: moood}\n      note: text\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		line          int
		before, after int
		wantStart     int
		wantLines     int
	}{
		{"middle", 4, 1, 1, 3, 3},
		{"clamped at start", 1, 3, 0, 1, 1},
		{"past the end", 5, 1, 5, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSourceSnippet(path, tt.line, tt.before, tt.after)
			testutil.AssertNoError(t, err)
			if s.StartLine != tt.wantStart || len(s.Lines) != tt.wantLines {
				t.Errorf("NewSourceSnippet() = start %d, %d lines; want start %d, %d lines",
					s.StartLine, len(s.Lines), tt.wantStart, tt.wantLines)
			}
		})
	}

	if _, err := NewSourceSnippet(filepath.Join(t.TempDir(), "missing.yaml"), 1, 0, 0); err == nil {
		t.Error("NewSourceSnippet() on a missing file should fail")
	}
}

func TestSourceSnippetRender(t *testing.T) {
	plainMode(t)

	s := &SourceSnippet{
		StartLine: 9,
		Lines:     []string{"    columns:", "      status: {enum: moood}"},
		Target:    10,
		Label:     "unknown enum",
	}
	got := s.Render()
	want := strings.Join([]string{
		"   |",
		" 9 |     columns:",
		"10 |       status: {enum: moood}",
		"   |       ^^^^^^^^^^^^^^^^^^^^^ unknown enum",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}

	if (&SourceSnippet{}).Render() != "" {
		t.Error("Render() of an empty snippet should be empty")
	}
}

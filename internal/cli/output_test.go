package cli

import (
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	plainMode(t)

	table := NewTable("REVISION", "NAME")
	table.AddRow("20260101120000", "add_mood")
	table.AddRow("20260102120000") // short rows are padded

	got := table.String()
	want := strings.Join([]string{
		"REVISION        NAME",
		"──────────────  ────────",
		"20260101120000  add_mood",
		"20260102120000",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Table.String() =\n%q\nwant\n%q", got, want)
	}

	if NewTable().String() != "" {
		t.Error("Table.String() with no headers should be empty")
	}
}

func TestList(t *testing.T) {
	plainMode(t)

	l := NewList()
	if l.String() != "" {
		t.Errorf("empty List.String() = %q, want empty", l.String())
	}
	l.AddSuccess("applied 001_mood")
	l.AddError("failed 002_color")
	l.AddWarning("drift")
	l.AddInfo("next")
	l.Add("plain")

	want := "  ✓ applied 001_mood\n  ✗ failed 002_color\n  ! drift\n  → next\n  • plain\n"
	if got := l.String(); got != want {
		t.Errorf("List.String() = %q, want %q", got, want)
	}
	if l.Len() != 5 {
		t.Errorf("List.Len() = %d, want 5", l.Len())
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 revisions"},
		{1, "1 revision"},
		{3, "3 revisions"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n, "revision", "revisions"); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatKeyValue(t *testing.T) {
	plainMode(t)
	if got := FormatKeyValue("base", "abc"); got != "base: abc" {
		t.Errorf("FormatKeyValue() = %q, want %q", got, "base: abc")
	}
}

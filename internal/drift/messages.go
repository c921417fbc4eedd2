package drift

import (
	"fmt"
	"strings"
)

// FormatResult formats a drift detection result for CLI output.
func FormatResult(result *Result) string {
	if result == nil {
		return "No drift detection result available."
	}

	if !result.HasDrift {
		return FormatNoDrift(result)
	}

	return FormatDrift(result)
}

// FormatNoDrift formats a successful (no drift) result.
func FormatNoDrift(result *Result) string {
	var b strings.Builder

	b.WriteString("Enum check passed\n\n")
	fmt.Fprintf(&b, "  Enums:        %d\n", len(result.Expected.Leaves()))
	fmt.Fprintf(&b, "  Schema hash:  %s\n", truncateHash(result.ExpectedHash))
	b.WriteString("\n  Database enums match the declared schema.\n")

	return b.String()
}

// FormatDrift formats a drift detection result with differences.
func FormatDrift(result *Result) string {
	var b strings.Builder

	b.WriteString("Enum drift detected\n\n")
	fmt.Fprintf(&b, "  Expected hash: %s\n", truncateHash(result.ExpectedHash))
	fmt.Fprintf(&b, "  Actual hash:   %s\n", truncateHash(result.ActualHash))
	b.WriteString("\n")

	comp := result.Comparison
	expected := result.Expected.Leaves()
	actual := result.Actual.Leaves()

	if len(comp.Missing) > 0 {
		b.WriteString("  Missing enums (declared but not in database):\n")
		for _, name := range comp.Missing {
			fmt.Fprintf(&b, "    - %s\n", expected[name])
		}
		b.WriteString("\n")
	}

	if len(comp.Extra) > 0 {
		b.WriteString("  Extra enums (in database but not declared):\n")
		for _, name := range comp.Extra {
			fmt.Fprintf(&b, "    + %s\n", actual[name])
		}
		b.WriteString("\n")
	}

	if len(comp.Modified) > 0 {
		b.WriteString("  Enums with different values:\n")
		for _, name := range comp.Modified {
			fmt.Fprintf(&b, "    ~ %s\n", name)
			fmt.Fprintf(&b, "        declared: %s\n", values(expected[name]))
			fmt.Fprintf(&b, "        database: %s\n", values(actual[name]))
		}
	}

	b.WriteString("\nFix:\n")
	b.WriteString("  Create a migration to reconcile the differences:\n")
	b.WriteString("    enumsync new reconcile_enums\n")

	return b.String()
}

// values returns the label part of a leaf.
func values(leaf string) string {
	_, v, _ := strings.Cut(leaf, "=")
	return "[" + v + "]"
}

// FormatSummary formats a one-line summary of a comparison.
func FormatSummary(comp *HashComparison) string {
	if comp == nil || !comp.HasDifferences() {
		return "No drift detected."
	}

	var parts []string
	if n := len(comp.Missing); n > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", n))
	}
	if n := len(comp.Extra); n > 0 {
		parts = append(parts, fmt.Sprintf("%d extra", n))
	}
	if n := len(comp.Modified); n > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", n))
	}

	return fmt.Sprintf("Drift detected: %s", strings.Join(parts, ", "))
}

// FormatQuickStatus formats a quick status line for drift detection.
func FormatQuickStatus(hasDrift bool, expectedHash, actualHash string) string {
	if !hasDrift {
		return fmt.Sprintf("OK  %s", truncateHash(expectedHash))
	}
	return fmt.Sprintf("DRIFT  expected: %s  actual: %s",
		truncateHash(expectedHash), truncateHash(actualHash))
}

// truncateHash returns the first 12 characters of a hash for display.
func truncateHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

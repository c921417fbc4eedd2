package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hlop3z/enumsync/internal/engine"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// RenderTitle renders a section title followed by a blank line.
func RenderTitle(title string) string {
	return render(styleTitle, title) + "\n\n"
}

// RenderPanel draws content in a rounded box. Plain mode prints the title
// above the indented content instead.
func RenderPanel(title, content string) string {
	content = strings.TrimRight(content, "\n")
	if !EnableColors() {
		var b strings.Builder
		if title != "" {
			b.WriteString(title + "\n")
		}
		for _, line := range strings.Split(content, "\n") {
			b.WriteString("  " + line + "\n")
		}
		return b.String()
	}
	body := content
	if title != "" {
		body = styleTitle.Render(title) + "\n" + content
	}
	return stylePanel.Render(body) + "\n"
}

// StatusBadge returns a colored label for a revision status.
func StatusBadge(s engine.PlanStatus) string {
	label := s.String()
	switch s {
	case engine.StatusApplied:
		return Success(label)
	case engine.StatusPending:
		return Warning(label)
	case engine.StatusMissing, engine.StatusModified:
		return Error(label)
	default:
		return Dim(label)
	}
}

// StatusTable renders the revision history as a table.
func StatusTable(statuses []engine.MigrationStatus) string {
	table := NewTable("REVISION", "NAME", "STATUS", "APPLIED AT")
	for _, s := range statuses {
		appliedAt := Dim("-")
		if s.AppliedAt != nil {
			appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		table.AddRow(s.Revision, s.Name, StatusBadge(s.Status), appliedAt)
	}
	return table.String()
}

// StatusSummary counts revisions per status: "2 applied, 1 pending".
func StatusSummary(statuses []engine.MigrationStatus) string {
	counts := make(map[engine.PlanStatus]int)
	for _, s := range statuses {
		counts[s.Status]++
	}
	order := []engine.PlanStatus{engine.StatusApplied, engine.StatusPending, engine.StatusModified, engine.StatusMissing}
	var parts []string
	for _, st := range order {
		if n := counts[st]; n > 0 || st == engine.StatusApplied || st == engine.StatusPending {
			parts = append(parts, FormatCount(n, st.String(), st.String()))
		}
	}
	return strings.Join(parts, ", ")
}

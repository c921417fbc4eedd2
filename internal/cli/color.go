package cli

import "github.com/charmbracelet/lipgloss"

// ANSI 256 colors for broad terminal compatibility.
var (
	colorPrimary   = lipgloss.Color("12") // blue
	colorSuccess   = lipgloss.Color("10") // green
	colorWarning   = lipgloss.Color("11") // yellow
	colorError     = lipgloss.Color("9")  // red
	colorMuted     = lipgloss.Color("8")  // gray
	colorHighlight = lipgloss.Color("14") // cyan
)

var (
	// Message type styles
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleInfo    = lipgloss.NewStyle().Foreground(colorHighlight)
	styleCode    = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	// Source display
	styleLineNum  = lipgloss.NewStyle().Foreground(colorPrimary)
	stylePipe     = lipgloss.NewStyle().Foreground(colorPrimary)
	stylePointer  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleFilePath = lipgloss.NewStyle().Bold(true)

	// Enum diff markers
	styleAdded   = lipgloss.NewStyle().Foreground(colorSuccess)
	styleRemoved = lipgloss.NewStyle().Foreground(colorError)
	styleChanged = lipgloss.NewStyle().Foreground(colorWarning)

	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	styleHighlight = lipgloss.NewStyle().Foreground(colorHighlight)
)

// render applies style when colors are enabled.
func render(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error returns text styled as an error label.
func Error(s string) string { return render(styleError, s) }

// Warning returns text styled as a warning label.
func Warning(s string) string { return render(styleWarning, s) }

// Note returns text styled as a note label.
func Note(s string) string { return render(styleNote, s) }

// Help returns text styled as a help label.
func Help(s string) string { return render(styleHelp, s) }

func Success(s string) string { return render(styleSuccess, s) }
func Info(s string) string    { return render(styleInfo, s) }

// Code returns text styled as an error code.
func Code(s string) string { return render(styleCode, s) }

func LineNum(s string) string  { return render(styleLineNum, s) }
func Pointer(s string) string  { return render(stylePointer, s) }
func FilePath(s string) string { return render(styleFilePath, s) }

// Pipe returns the gutter character used in source display.
func Pipe() string { return render(stylePipe, "|") }

// Added, Removed and Changed color diff lines.
func Added(s string) string   { return render(styleAdded, s) }
func Removed(s string) string { return render(styleRemoved, s) }
func Changed(s string) string { return render(styleChanged, s) }

func Header(s string) string    { return render(styleHeader, s) }
func Dim(s string) string       { return render(styleDim, s) }
func Highlight(s string) string { return render(styleHighlight, s) }

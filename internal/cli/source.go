package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// SourceSnippet is a few lines of a schema or revision file shown under a
// diagnostic.
type SourceSnippet struct {
	File      string
	StartLine int
	Lines     []string
	Target    int    // line to mark, 0 for none
	Label     string // text after the marker
}

// NewSourceSnippet reads the lines around targetLine from file.
func NewSourceSnippet(file string, targetLine, contextBefore, contextAfter int) (*SourceSnippet, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	startLine := max(targetLine-contextBefore, 1)
	endLine := targetLine + contextAfter

	var lines []string
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan() && lineNum <= endLine; lineNum++ {
		if lineNum >= startLine {
			lines = append(lines, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &SourceSnippet{
		File:      file,
		StartLine: startLine,
		Lines:     lines,
		Target:    targetLine,
	}, nil
}

// Render draws the snippet with a line-number gutter. The target line gets
// a marker under its first non-blank character.
func (s *SourceSnippet) Render() string {
	if len(s.Lines) == 0 {
		return ""
	}

	var b strings.Builder
	width := len(fmt.Sprintf("%d", s.StartLine+len(s.Lines)-1))
	gutter := strings.Repeat(" ", width) + " " + Pipe()

	b.WriteString(gutter + "\n")
	for i, line := range s.Lines {
		lineNum := s.StartLine + i
		fmt.Fprintf(&b, "%s %s %s\n", LineNum(fmt.Sprintf("%*d", width, lineNum)), Pipe(), line)

		if lineNum != s.Target {
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)
		marker := Pointer(strings.Repeat("^", max(len(strings.TrimRight(trimmed, " ")), 1)))
		b.WriteString(gutter + " " + strings.Repeat(" ", indent) + marker)
		if s.Label != "" {
			b.WriteString(" " + s.Label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

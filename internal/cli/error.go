package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hlop3z/enumsync/internal/alerr"
)

// hiddenKeys are context entries FormatError renders on their own.
var hiddenKeys = map[string]bool{
	"file": true, "line": true, "notes": true, "helps": true,
}

// FormatError formats an error for CLI display in rustc style. Coded errors
// show their location, context, notes and helps; anything else is a single
// line.
//
//	error[E1001]: unknown enum "moood"
//	  --> schemas/orders.yaml:4
//	   |
//	 4 |       status: {enum: moood}
//	   |       ^^^^^^^^^^^^^^^^^^^^^
//	   = table: public.orders
//	help: did you mean 'mood'?
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ae *alerr.Error
	if !errors.As(err, &ae) {
		return Error("error") + ": " + err.Error() + "\n"
	}

	var b strings.Builder
	ctx := ae.GetContext()

	fmt.Fprintf(&b, "%s[%s]: %s\n", Error("error"), Code(string(ae.GetCode())), ae.GetMessage())

	file, _ := ctx["file"].(string)
	line, _ := ctx["line"].(int)
	if file != "" {
		loc := file
		if line > 0 {
			loc = fmt.Sprintf("%s:%d", file, line)
		}
		fmt.Fprintf(&b, "  %s %s\n", render(stylePipe, "-->"), FilePath(loc))
		if line > 0 {
			if snippet, err := NewSourceSnippet(file, line, 0, 0); err == nil {
				b.WriteString(snippet.Render())
			}
		}
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !hiddenKeys[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "   = %s: %v\n", Dim(k), ctx[k])
	}

	if cause := ae.GetCause(); cause != nil {
		msg := strings.ReplaceAll(cause.Error(), "\n", "\n  ")
		fmt.Fprintf(&b, "%s: %s\n", Note("cause"), msg)
	}
	for _, note := range ae.Notes() {
		b.WriteString(FormatNote(note))
	}
	for _, help := range ae.Helps() {
		b.WriteString(FormatHelp(help))
	}
	return b.String()
}

// FormatWarning formats a warning with optional help lines.
func FormatWarning(msg string, helps ...string) string {
	var b strings.Builder
	b.WriteString(Warning("warning") + ": " + msg + "\n")
	for _, h := range helps {
		b.WriteString(FormatHelp(h))
	}
	return b.String()
}

// FormatNote formats a note message.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp formats a help message.
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}

// FormatStack returns the stack captured where err was created, dimmed, or
// "" when err carries none.
func FormatStack(err error) string {
	var ae *alerr.Error
	if !errors.As(err, &ae) || ae.GetStack() == "" {
		return ""
	}
	return Dim("stack:\n"+ae.GetStack()) + "\n"
}

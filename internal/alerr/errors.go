// Package alerr provides the coded error type used throughout enumsync.
// Every error carries a stable code, structured context and an optional cause.
package alerr

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Code is a stable, machine-readable error code of the form E{category}{number}.
type Code string

const (
	// Declared schema errors (E1xxx)
	ErrSchemaInvalid  Code = "E1001" // Declared schema file is malformed
	ErrSchemaNotFound Code = "E1002" // Schema does not exist in the database

	// Validation errors (E2xxx)
	ErrInvalidIdentifier Code = "E2001" // Enum, schema or column name is empty or unusable
	ErrInvalidColumnRef  Code = "E2002" // Affected column entry is malformed
	ErrInvalidRename     Code = "E2003" // Rename batch has empty or colliding labels

	// Migration errors (E3xxx)
	ErrMigrationFailed   Code = "E3001" // Migration document failed to apply
	ErrMigrationNotFound Code = "E3002" // Migration document does not exist
	ErrMigrationInvalid  Code = "E3003" // Migration document could not be parsed
	ErrMigrationChecksum Code = "E3004" // Applied migration was edited afterwards

	// SQL errors (E4xxx)
	ErrSQLExecution   Code = "E4001" // Statement failed to execute
	ErrSQLConnection  Code = "E4002" // Database connection failed
	ErrSQLTransaction Code = "E4003" // Transaction could not begin, commit or roll back

	// Enum errors (E5xxx)
	ErrEnumValueConflict Code = "E5001" // Stored data holds a value the new enum lacks

	// Catalog errors (E6xxx)
	ErrIntrospection    Code = "E6001" // Catalog query failed
	EUnsupportedDialect Code = "E6003" // Dialect has no native enums
	ErrDrift            Code = "E6004" // Live enums differ from the last applied state

	// Git errors (E7xxx)
	ENotGitRepo   Code = "E7001" // Path is not inside a git repository
	EGitOperation Code = "E7002" // git command failed
)

// Error is the coded error type.
type Error struct {
	code    Code
	message string
	context map[string]any
	cause   error
	stack   string
}

// Error returns the formatted error string.
//
//	[E5001] enum value conflict
//	  enum: public.status
//	  column: public.orders.state
//	  cause: pq: invalid input value for enum status: "archived"
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.code, e.message)

	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %v", k, e.context[k])
		}
	}

	if e.cause != nil {
		fmt.Fprintf(&b, "\n  cause: %v", e.cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	var t *Error
	if errors.As(target, &t) {
		return e.code == t.code
	}
	return false
}

func (e *Error) GetCode() Code { return e.code }
func (e *Error) GetMessage() string { return e.message }
func (e *Error) GetContext() map[string]any { return e.context }
func (e *Error) GetCause() error { return e.cause }
func (e *Error) GetStack() string { return e.stack }

// With adds a key-value pair to the error context.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable adds "schema.table" context, or just "table" when schema is empty.
func (e *Error) WithTable(schema, table string) *Error {
	if schema != "" {
		return e.With("table", schema+"."+table)
	}
	return e.With("table", table)
}

func (e *Error) WithColumn(name string) *Error {
	return e.With("column", name)
}

// WithEnum adds the qualified enum name.
func (e *Error) WithEnum(schema, name string) *Error {
	if schema != "" {
		return e.With("enum", schema+"."+name)
	}
	return e.With("enum", name)
}

func (e *Error) WithSQL(sql string) *Error {
	return e.With("sql", sql)
}

// WithFile adds the path of the document the error came from.
func (e *Error) WithFile(path string) *Error {
	return e.With("file", path)
}

// WithNote appends a note line.
func (e *Error) WithNote(note string) *Error {
	notes, _ := e.context["notes"].([]string)
	return e.With("notes", append(notes, note))
}

// WithHelp appends a remedy line.
func (e *Error) WithHelp(help string) *Error {
	helps, _ := e.context["helps"].([]string)
	return e.With("helps", append(helps, help))
}

func (e *Error) Notes() []string {
	notes, _ := e.context["notes"].([]string)
	return notes
}

func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

func captureStack(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}

// New creates an Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		code:    code,
		message: fmt.Sprintf(format, args...),
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Wrap creates an Error around an existing error. A nil err behaves like New.
func Wrap(code Code, err error, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		cause:   err,
		stack:   captureStack(3),
	}
}

// Wrapf wraps with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return &Error{
		code:    code,
		message: fmt.Sprintf(format, args...),
		context: make(map[string]any),
		cause:   err,
		stack:   captureStack(3),
	}
}

// GetErrorCode extracts the first code found in an error chain.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}

// HasCode reports whether err carries any code.
func HasCode(err error) bool {
	return GetErrorCode(err) != ""
}

// WrapSQL creates an ErrSQLExecution error with table context.
// Example: WrapSQL(err, "alter column type", "public.orders")
func WrapSQL(err error, op string, table string) *Error {
	e := Wrap(ErrSQLExecution, err, "failed to "+op)
	if table != "" {
		e.WithTable("", table)
	}
	return e
}

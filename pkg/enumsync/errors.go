// Package enumsync provides the public API for reconciling Postgres enumerated
// types with a declared schema: diffing, generating revision files, applying
// and rolling them back, and checking for drift.
//
// Errors raised by the engine are *alerr.Error values with stable codes; the
// sentinels below cover client setup.
package enumsync

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrMissingDatabaseURL is returned when no database URL or handle is provided.
	ErrMissingDatabaseURL = errors.New("enumsync: database URL required")

	// ErrConnectionFailed is returned when the database connection fails.
	ErrConnectionFailed = errors.New("enumsync: connection failed")

	// ErrUnsupportedDialect is returned when the database dialect is not supported.
	ErrUnsupportedDialect = errors.New("enumsync: unsupported dialect")

	// ErrNoChanges is returned by Generate when the declared enums already
	// match the database.
	ErrNoChanges = errors.New("enumsync: no enum changes")
)

// ConnectionError provides detailed information about a database connection error.
type ConnectionError struct {
	// URL is the database URL (with password redacted).
	URL string

	// Dialect is the database dialect (postgres, sqlite).
	Dialect string

	// Cause is the underlying error from the database driver.
	Cause error
}

// Error returns a formatted error message.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("enumsync: failed to connect to %s database %s: %v", e.Dialect, e.URL, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/introspect"
)

// Revision tracking table schema:
// CREATE TABLE enumsync_revisions (
//     revision     VARCHAR(32) PRIMARY KEY,
//     name         VARCHAR(255) NOT NULL,
//     checksum     VARCHAR(64),
//     applied_at   TIMESTAMPTZ NOT NULL DEFAULT (now()),
//     exec_time_ms INTEGER
// )

const (
	// TableName is the name of the revision tracking table.
	TableName = "enumsync_revisions"
)

// VersionManager reads and writes the revision tracking table.
type VersionManager struct {
	q       introspect.Querier
	dialect dialect.Dialect
}

// NewVersionManager creates a VersionManager issuing statements on q.
func NewVersionManager(q introspect.Querier, d dialect.Dialect) *VersionManager {
	return &VersionManager{q: q, dialect: d}
}

// On returns a VersionManager bound to another connection, usually the
// transaction a revision runs in.
func (v *VersionManager) On(q introspect.Querier) *VersionManager {
	return &VersionManager{q: q, dialect: v.dialect}
}

// EnsureTable creates the tracking table if it doesn't exist.
func (v *VersionManager) EnsureTable(ctx context.Context) error {
	query := v.createTableSQL()
	if _, err := v.q.ExecContext(ctx, query); err != nil {
		return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to create revisions table").
			WithSQL(query)
	}
	return nil
}

func (v *VersionManager) createTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    revision     VARCHAR(32) PRIMARY KEY,
    name         VARCHAR(255) NOT NULL,
    checksum     VARCHAR(64),
    applied_at   %s NOT NULL DEFAULT (%s),
    exec_time_ms INTEGER
)`, v.dialect.QuoteIdent(TableName), v.dialect.TimestampType(), v.dialect.CurrentTimestamp())
}

// GetApplied returns all applied revisions ordered by revision.
func (v *VersionManager) GetApplied(ctx context.Context) ([]engine.AppliedMigration, error) {
	query := fmt.Sprintf(
		"SELECT revision, name, checksum, applied_at, exec_time_ms FROM %s ORDER BY revision ASC",
		v.dialect.QuoteIdent(TableName),
	)

	rows, err := v.q.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "failed to query applied revisions").
			WithSQL(query)
	}
	defer rows.Close()

	var applied []engine.AppliedMigration
	for rows.Next() {
		var m engine.AppliedMigration
		var checksum sql.NullString
		var execTime sql.NullInt64
		var appliedAt any

		if err := rows.Scan(&m.Revision, &m.Name, &checksum, &appliedAt, &execTime); err != nil {
			return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "failed to scan revision row")
		}

		m.AppliedAt = parseAppliedAt(appliedAt)
		m.Checksum = checksum.String
		m.ExecTimeMs = int(execTime.Int64)
		applied = append(applied, m)
	}

	if err := rows.Err(); err != nil {
		return nil, alerr.Wrap(alerr.ErrSQLExecution, err, "error iterating revision rows")
	}
	return applied, nil
}

// parseAppliedAt converts the stored timestamp to time.Time. SQLite hands
// timestamps back as text.
func parseAppliedAt(val any) time.Time {
	switch t := val.(type) {
	case time.Time:
		return t
	case string:
		for _, format := range []string{
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z",
			"2006-01-02T15:04:05",
		} {
			if parsed, err := time.Parse(format, t); err == nil {
				return parsed
			}
		}
		return time.Time{}
	case []byte:
		return parseAppliedAt(string(t))
	default:
		return time.Time{}
	}
}

// RecordApplied records that a revision has been applied.
func (v *VersionManager) RecordApplied(ctx context.Context, m engine.Migration, execTime time.Duration) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (revision, name, checksum, exec_time_ms) VALUES (%s, %s, %s, %s)",
		v.dialect.QuoteIdent(TableName),
		v.dialect.Placeholder(1), v.dialect.Placeholder(2), v.dialect.Placeholder(3), v.dialect.Placeholder(4),
	)

	if _, err := v.q.ExecContext(ctx, query, m.Revision, m.Name, m.Checksum, int(execTime.Milliseconds())); err != nil {
		return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to record applied revision").
			With("revision", m.Revision).
			WithSQL(query)
	}
	return nil
}

// RecordRollback removes a revision record.
func (v *VersionManager) RecordRollback(ctx context.Context, revision string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE revision = %s",
		v.dialect.QuoteIdent(TableName), v.dialect.Placeholder(1))

	result, err := v.q.ExecContext(ctx, query, revision)
	if err != nil {
		return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to remove revision record").
			With("revision", revision).
			WithSQL(query)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return alerr.New(alerr.ErrMigrationNotFound, "revision not found in tracking table").
			With("revision", revision)
	}
	return nil
}

// GetChecksum returns the checksum of an applied revision.
func (v *VersionManager) GetChecksum(ctx context.Context, revision string) (string, error) {
	query := fmt.Sprintf("SELECT checksum FROM %s WHERE revision = %s",
		v.dialect.QuoteIdent(TableName), v.dialect.Placeholder(1))

	var checksum sql.NullString
	err := v.q.QueryRowContext(ctx, query, revision).Scan(&checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", alerr.New(alerr.ErrMigrationNotFound, "revision not applied").
			With("revision", revision)
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrSQLExecution, err, "failed to get revision checksum").
			With("revision", revision).
			WithSQL(query)
	}
	return checksum.String, nil
}

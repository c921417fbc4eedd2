package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
)

// Direction indicates whether migrations run up (apply) or down (rollback).
type Direction int

const (
	// Up applies migrations.
	Up Direction = iota
	// Down rolls back migrations.
	Down
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Migration is one revision of enum operations.
type Migration struct {
	// Revision is the unique, sortable identifier (e.g. "20260101120000").
	Revision string

	// Name is the human-readable name (e.g. "add_banned_status").
	Name string

	// Path is the file the migration was loaded from.
	Path string

	// Checksum is the SHA-256 of the rendered document.
	Checksum string

	// Base is the drift fingerprint of the catalog the revision was
	// generated against. Empty disables the drift guard.
	Base string

	Upgrade   []ast.EnumOperation
	Downgrade []ast.EnumOperation
}

// Operations returns the operations to run in the given direction.
func (m Migration) Operations(dir Direction) []ast.EnumOperation {
	if dir == Down {
		return m.Downgrade
	}
	return m.Upgrade
}

// AppliedMigration is a row of the revision table.
type AppliedMigration struct {
	Revision   string
	Name       string
	Checksum   string
	AppliedAt  time.Time
	ExecTimeMs int
}

// Plan represents a set of migrations to execute in a specific direction.
type Plan struct {
	// Migrations to execute, in order.
	Migrations []Migration

	// Direction of execution (Up or Down).
	Direction Direction
}

// IsEmpty returns true if the plan has no migrations to execute.
func (p *Plan) IsEmpty() bool {
	return len(p.Migrations) == 0
}

// PlanMigrations creates an execution plan based on current state.
//
// For Up, the plan holds the pending revisions in order, up to and including
// target when it is set. Applied revisions must still match their recorded
// checksum.
//
// For Down, the plan holds the applied revisions newest first, stopping
// after steps revisions (0 means all).
func PlanMigrations(all []Migration, applied []AppliedMigration, target string, dir Direction, steps int) (*Plan, error) {
	switch dir {
	case Up:
		if err := verifyChecksums(all, applied); err != nil {
			return nil, err
		}
		return planUp(all, applied, target)
	case Down:
		return planDown(all, applied, steps)
	default:
		return &Plan{Direction: dir}, nil
	}
}

// verifyChecksums checks that all applied migrations still match their recorded checksums.
func verifyChecksums(all []Migration, applied []AppliedMigration) error {
	recorded := lo.KeyBy(applied, func(a AppliedMigration) string { return a.Revision })
	for _, m := range all {
		a, ok := recorded[m.Revision]
		if !ok || a.Checksum == "" || m.Checksum == "" {
			continue
		}
		if a.Checksum != m.Checksum {
			return alerr.New(alerr.ErrMigrationChecksum, "migration file was modified after being applied").
				With("revision", m.Revision).
				With("name", m.Name).
				With("expected", a.Checksum).
				With("actual", m.Checksum).
				WithHelp("restore the original file, or roll the revision back before editing it")
		}
	}
	return nil
}

func sortedByRevision(all []Migration) []Migration {
	sorted := slices.Clone(all)
	slices.SortFunc(sorted, func(a, b Migration) int {
		return strings.Compare(a.Revision, b.Revision)
	})
	return sorted
}

func planUp(all []Migration, applied []AppliedMigration, target string) (*Plan, error) {
	plan := &Plan{Direction: Up, Migrations: make([]Migration, 0)}

	if target != "" && !lo.ContainsBy(all, func(m Migration) bool { return m.Revision == target }) {
		return nil, alerr.New(alerr.ErrMigrationNotFound, "target migration not found").
			With("target", target)
	}

	done := lo.KeyBy(applied, func(a AppliedMigration) string { return a.Revision })
	for _, m := range sortedByRevision(all) {
		if _, ok := done[m.Revision]; !ok {
			plan.Migrations = append(plan.Migrations, m)
		}
		if target != "" && m.Revision == target {
			break
		}
	}
	return plan, nil
}

func planDown(all []Migration, applied []AppliedMigration, steps int) (*Plan, error) {
	plan := &Plan{Direction: Down, Migrations: make([]Migration, 0)}

	byRevision := lo.KeyBy(all, func(m Migration) string { return m.Revision })

	newestFirst := slices.Clone(applied)
	slices.SortFunc(newestFirst, func(a, b AppliedMigration) int {
		return strings.Compare(b.Revision, a.Revision)
	})

	for _, a := range newestFirst {
		if steps > 0 && len(plan.Migrations) == steps {
			break
		}
		m, ok := byRevision[a.Revision]
		if !ok {
			return nil, alerr.New(alerr.ErrMigrationNotFound, "migration file not found for applied revision").
				With("revision", a.Revision)
		}
		plan.Migrations = append(plan.Migrations, m)
	}
	return plan, nil
}

// PlanStatus represents the status of a migration.
type PlanStatus int

const (
	// StatusPending means the migration has not been applied.
	StatusPending PlanStatus = iota
	// StatusApplied means the migration has been applied.
	StatusApplied
	// StatusMissing means the migration file is missing but was previously applied.
	StatusMissing
	// StatusModified means the migration checksum doesn't match.
	StatusModified
)

// String returns the string representation of the status.
func (s PlanStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApplied:
		return "applied"
	case StatusMissing:
		return "missing"
	case StatusModified:
		return "modified"
	default:
		return "unknown"
	}
}

// MigrationStatus provides status information about a migration.
type MigrationStatus struct {
	Revision  string
	Name      string
	Status    PlanStatus
	AppliedAt *time.Time // nil if not applied
}

// GetStatus returns the status of every known revision, applied or on disk,
// in revision order.
func GetStatus(all []Migration, applied []AppliedMigration) []MigrationStatus {
	appliedMap := lo.KeyBy(applied, func(a AppliedMigration) string { return a.Revision })
	migrationMap := lo.KeyBy(all, func(m Migration) string { return m.Revision })

	revisions := lo.Uniq(append(lo.Keys(migrationMap), lo.Keys(appliedMap)...))
	slices.Sort(revisions)

	statuses := make([]MigrationStatus, 0, len(revisions))
	for _, rev := range revisions {
		status := MigrationStatus{Revision: rev, Status: StatusPending}

		m, hasMigration := migrationMap[rev]
		a, wasApplied := appliedMap[rev]

		if hasMigration {
			status.Name = m.Name
		} else {
			status.Name = a.Name
		}

		if wasApplied {
			appliedAt := a.AppliedAt
			status.AppliedAt = &appliedAt

			switch {
			case !hasMigration:
				status.Status = StatusMissing
			case a.Checksum != "" && m.Checksum != "" && a.Checksum != m.Checksum:
				status.Status = StatusModified
			default:
				status.Status = StatusApplied
			}
		}

		statuses = append(statuses, status)
	}
	return statuses
}

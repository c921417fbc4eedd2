package git

import (
	"fmt"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/hlop3z/enumsync/internal/alerr"
)

// CommitResult describes a commit made for a new revision.
type CommitResult struct {
	Files      []string // relative to the repository root
	CommitHash string
}

// CommitRevision commits a newly written revision file together with the
// files next to it that must travel with it, such as the lock file.
// Returns nil when dir is not inside a git repository.
func CommitRevision(dir, name string, paths ...string) (*CommitResult, error) {
	repo, err := Open(dir)
	if err != nil {
		return nil, nil
	}

	message := fmt.Sprintf("Add enum revision: %s", name)
	if err := repo.CommitFiles(message, paths...); err != nil {
		return nil, alerr.Wrap(alerr.EGitOperation, err, "failed to commit revision").
			With("files", paths)
	}

	hash, _ := repo.Head()
	rel := lo.Map(paths, func(p string, _ int) string {
		if r, err := filepath.Rel(repo.RootDir(), p); err == nil {
			return r
		}
		return p
	})
	return &CommitResult{Files: rel, CommitHash: hash}, nil
}

// PreMigrateCheck holds the git state of the migrations directory.
type PreMigrateCheck struct {
	InGitRepo   bool
	Uncommitted []FileStatus
	Warnings    []string
	Errors      []string
}

// CheckBeforeMigrate reports revision files that are not committed.
// Applying an uncommitted revision leaves the database ahead of what
// everyone else can see.
func CheckBeforeMigrate(dir string) (*PreMigrateCheck, error) {
	result := &PreMigrateCheck{}

	repo, err := Open(dir)
	if err != nil {
		return result, nil
	}
	result.InGitRepo = true

	uncommitted, err := repo.UncommittedRevisions(dir)
	if err != nil {
		return nil, err
	}
	result.Uncommitted = uncommitted

	for _, f := range uncommitted {
		name := filepath.Base(f.Path)
		switch f.Status {
		case StatusUntracked, StatusStaged:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", f.Status, name))
		case StatusModified, StatusDeleted:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s (it may already be applied elsewhere)", f.Status, name))
		}
	}
	return result, nil
}

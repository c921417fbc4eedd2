// Package git commits revision files and reports the ones git does not
// track yet. It shells out to the git binary.
package git

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/lockfile"
)

// Status represents the git status of a file.
type Status int

const (
	StatusUnknown Status = iota
	StatusUntracked
	StatusModified
	StatusStaged
	StatusDeleted
)

func (s Status) String() string {
	switch s {
	case StatusUntracked:
		return "untracked"
	case StatusModified:
		return "modified"
	case StatusStaged:
		return "staged"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileStatus holds the status of a specific file.
type FileStatus struct {
	Path   string
	Status Status
}

// Repo runs git commands in a repository.
type Repo struct {
	rootDir string
}

// Open opens the git repository containing path.
func Open(path string) (*Repo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.EGitOperation, err, "failed to resolve path").WithFile(path)
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = absPath
	out, err := cmd.Output()
	if err != nil {
		return nil, alerr.Newf(alerr.ENotGitRepo, "not a git repository: %s", absPath)
	}
	return &Repo{rootDir: strings.TrimSpace(string(out))}, nil
}

// RootDir returns the root directory of the repository.
func (r *Repo) RootDir() string {
	return r.rootDir
}

// Add stages files for commit.
func (r *Repo) Add(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := r.runGit(append([]string{"add", "--"}, paths...)...)
	return err
}

// CommitFiles stages paths and commits only them.
func (r *Repo) CommitFiles(message string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := r.Add(paths...); err != nil {
		return err
	}
	_, err := r.runGit(append([]string{"commit", "-m", message, "--"}, paths...)...)
	return err
}

// Head returns the short hash of HEAD.
func (r *Repo) Head() (string, error) {
	out, err := r.runGit("rev-parse", "--short", "HEAD")
	return strings.TrimSpace(out), err
}

// UncommittedRevisions returns the revision files and lock file in dir
// that differ from HEAD.
func (r *Repo) UncommittedRevisions(dir string) ([]FileStatus, error) {
	relDir, err := r.relativePath(dir)
	if err != nil {
		return nil, nil
	}

	// -uall lists files inside untracked directories
	out, err := r.runGit("status", "--porcelain", "-uall", "--", relDir)
	if err != nil {
		return nil, err
	}

	var files []FileStatus
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code, path := line[:2], strings.TrimSpace(line[3:])
		if _, to, ok := strings.Cut(path, " -> "); ok {
			path = to
		}
		if !isRevisionFile(path) {
			continue
		}
		files = append(files, FileStatus{
			Path:   filepath.Join(r.rootDir, filepath.FromSlash(path)),
			Status: parseStatus(code),
		})
	}
	return files, nil
}

func parseStatus(code string) Status {
	switch {
	case code[0] == '?' || code[1] == '?':
		return StatusUntracked
	case code[0] == 'D' || code[1] == 'D':
		return StatusDeleted
	case code[1] == 'M':
		return StatusModified
	case code[0] == 'A' || code[0] == 'M':
		return StatusStaged
	default:
		return StatusModified
	}
}

func isRevisionFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml" || filepath.Base(path) == lockfile.FileName
}

// relativePath returns path relative to the repository root.
func (r *Repo) relativePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.rootDir, absPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// runGit runs a git command in the repository root and returns stdout.
func (r *Repo) runGit(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.rootDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", alerr.New(alerr.EGitOperation, strings.TrimSpace(stderr.String())).
			With("command", "git "+strings.Join(args, " "))
	}
	return stdout.String(), nil
}

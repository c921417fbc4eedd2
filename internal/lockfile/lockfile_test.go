package lockfile

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/testutil"
)

func setupMigrations(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "migrations")
	testutil.WriteFile(t, filepath.Join(dir, "20260101120000_add_mood.yaml"), "revision: \"20260101120000\"\n")
	testutil.WriteFile(t, filepath.Join(dir, "20260102120000_add_banned.yaml"), "revision: \"20260102120000\"\n")
	testutil.WriteFile(t, filepath.Join(dir, "README.md"), "ignored\n")
	return dir
}

func TestWriteAndRead(t *testing.T) {
	dir := setupMigrations(t)

	if err := Write(dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	lf, err := Read(Path(dir))
	testutil.AssertNoError(t, err)
	if lf == nil {
		t.Fatal("Read() = nil, want lock file")
	}
	if lf.Aggregate == "" {
		t.Error("Aggregate is empty")
	}
	if len(lf.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(lf.Entries))
	}
	if lf.Entries[0].Filename != "20260101120000_add_mood.yaml" {
		t.Errorf("Entries[0].Filename = %q, want the earliest revision", lf.Entries[0].Filename)
	}
}

func TestReadNotFound(t *testing.T) {
	lf, err := Read(filepath.Join(t.TempDir(), FileName))
	testutil.AssertNoError(t, err)
	if lf != nil {
		t.Errorf("Read() = %+v, want nil", lf)
	}
}

func TestReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	testutil.WriteFile(t, path, "abc\nnospace\n")

	_, err := Read(path)
	testutil.AssertError(t, err, alerr.ErrMigrationInvalid)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(t *testing.T, dir string)
		wantValid    bool
		wantNew      []string
		wantRemoved  []string
		wantModified []string
	}{
		{
			name:      "unchanged",
			mutate:    func(t *testing.T, dir string) {},
			wantValid: true,
		},
		{
			name: "modified",
			mutate: func(t *testing.T, dir string) {
				testutil.WriteFile(t, filepath.Join(dir, "20260101120000_add_mood.yaml"), "edited\n")
			},
			wantModified: []string{"20260101120000_add_mood.yaml"},
		},
		{
			name: "new",
			mutate: func(t *testing.T, dir string) {
				testutil.WriteFile(t, filepath.Join(dir, "20260103120000_drop_legacy.yaml"), "x\n")
			},
			wantNew: []string{"20260103120000_drop_legacy.yaml"},
		},
		{
			name: "removed",
			mutate: func(t *testing.T, dir string) {
				if err := os.Remove(filepath.Join(dir, "20260102120000_add_banned.yaml")); err != nil {
					t.Fatal(err)
				}
			},
			wantRemoved: []string{"20260102120000_add_banned.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupMigrations(t)
			if err := Write(dir); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			tt.mutate(t, dir)

			result, err := Check(dir)
			testutil.AssertNoError(t, err)
			if result.Valid() != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", result.Valid(), tt.wantValid)
			}
			if !slices.Equal(result.New, tt.wantNew) {
				t.Errorf("New = %v, want %v", result.New, tt.wantNew)
			}
			if !slices.Equal(result.Removed, tt.wantRemoved) {
				t.Errorf("Removed = %v, want %v", result.Removed, tt.wantRemoved)
			}
			if !slices.Equal(result.Modified, tt.wantModified) {
				t.Errorf("Modified = %v, want %v", result.Modified, tt.wantModified)
			}
		})
	}
}

func TestCheckWithoutLockFile(t *testing.T) {
	result, err := Check(setupMigrations(t))
	testutil.AssertNoError(t, err)
	if result.Exists || result.Valid() {
		t.Errorf("Check() = %+v, want missing and invalid", result)
	}
}

func TestVerify(t *testing.T) {
	dir := setupMigrations(t)

	if err := Verify(dir); err != nil {
		t.Errorf("Verify() without lock file error = %v, want nil", err)
	}

	if err := Write(dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := Verify(dir); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}

	testutil.WriteFile(t, filepath.Join(dir, "20260102120000_add_banned.yaml"), "edited\n")
	testutil.AssertError(t, Verify(dir), alerr.ErrMigrationChecksum)
}

func TestWriteEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	if err := Write(dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	lf, err := Read(Path(dir))
	if err != nil || lf == nil {
		t.Fatalf("Read() = %v, %v; want lock file", lf, err)
	}
	if len(lf.Entries) != 0 {
		t.Errorf("len(Entries) = %d, want 0", len(lf.Entries))
	}
}

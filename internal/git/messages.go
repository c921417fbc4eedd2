package git

import (
	"github.com/hlop3z/enumsync/internal/cli"
)

// FormatPreMigrateWarnings lists uncommitted revision files, or returns ""
// when there are none.
func FormatPreMigrateWarnings(check *PreMigrateCheck) string {
	if len(check.Warnings) == 0 && len(check.Errors) == 0 {
		return ""
	}

	list := cli.NewList()
	for _, e := range check.Errors {
		list.AddError(e)
	}
	for _, w := range check.Warnings {
		list.AddWarning(w)
	}
	return list.String() + "\n"
}

// FormatCommitResult lists the files committed for a revision.
func FormatCommitResult(res *CommitResult) string {
	list := cli.NewList()
	for _, f := range res.Files {
		list.AddInfo(cli.FilePath(f))
	}
	return cli.FormatSuccess("committed ["+res.CommitHash+"]") + list.String()
}

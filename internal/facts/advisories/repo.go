package advisories

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
)

// defaultRepoURL is the canonical RustSec advisory database, mirrored
// verbatim from the upstream rustsec crate's own default.
const defaultRepoURL = "https://github.com/RustSec/advisory-db"

// ensureRepo clones repoPath fresh if it doesn't exist, or fast-forwards it
// otherwise. No git client library exists anywhere in the example corpus,
// so this shells out to the system git binary the same way a developer
// running `cargo-deny`-style tooling would.
func ensureRepo(ctx context.Context, repoPath string, rep progress.Reporter) error {
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		rep.SetIndeterminate(func() string { return "updating the advisory database" })
		return runGit(ctx, "", "-C", repoPath, "fetch", "--depth", "1", "origin", "HEAD")
	}

	rep.SetIndeterminate(func() string { return "downloading the advisory database from " + defaultRepoURL })
	if err := os.MkdirAll(filepath.Dir(repoPath), 0o755); err != nil {
		return fmt.Errorf("%w: creating %q: %v", facts.ErrIO, filepath.Dir(repoPath), err)
	}
	if err := runGit(ctx, "", "clone", "--depth", "1", defaultRepoURL, repoPath); err != nil {
		return err
	}
	return nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: git %v: %v: %s", facts.ErrIO, args, err, out)
	}
	return nil
}

package codebase

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// ensureMirror clones repoURL into mirrorPath as a shallow mirror if it
// doesn't exist yet, or fetches the latest default-branch history
// otherwise. No git client library exists anywhere in the example corpus,
// so, as in the advisories provider, this shells out to the system git
// binary.
func ensureMirror(ctx context.Context, repoURL, mirrorPath string) error {
	if _, err := os.Stat(filepath.Join(mirrorPath, ".git")); err == nil {
		return runGit(ctx, mirrorPath, "fetch", "--depth", "200", "origin", "HEAD")
	}

	if err := os.MkdirAll(filepath.Dir(mirrorPath), 0o755); err != nil {
		return fmt.Errorf("%w: creating %q: %v", facts.ErrIO, filepath.Dir(mirrorPath), err)
	}
	return runGit(ctx, "", "clone", "--depth", "200", "--no-single-branch", repoURL, mirrorPath)
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

// gitLogStats runs `git log` once and derives commit_count, the three
// trailing-window counts, the last commit time, and the distinct-author
// count from its output — one pass over the log rather than four separate
// invocations.
func gitLogStats(ctx context.Context, mirrorPath string, now time.Time) (facts.GitLogStats, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", mirrorPath, "log", "--date=unix", "--pretty=format:%ad|%ae")
	out, err := cmd.Output()
	if err != nil {
		return facts.GitLogStats{}, fmt.Errorf("%w: git log in %q: %v", facts.ErrIO, mirrorPath, err)
	}

	var stats facts.GitLogStats
	authors := make(map[string]bool)
	windows := []struct {
		days  int
		count *uint64
	}{
		{90, &stats.CommitsLast90Days},
		{180, &stats.CommitsLast180Days},
		{365, &stats.CommitsLast365Days},
	}

	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		sec, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		commitTime := time.Unix(sec, 0).UTC()

		stats.CommitCount++
		authors[parts[1]] = true
		if commitTime.After(stats.LastCommitAt) {
			stats.LastCommitAt = commitTime
		}
		age := now.Sub(commitTime)
		for _, w := range windows {
			if age <= time.Duration(w.days)*24*time.Hour {
				*w.count++
			}
		}
	}

	stats.ContributorCount = uint64(len(authors))
	return stats, nil
}

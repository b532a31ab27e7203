// Package codebase clones (or reuses a cached clone of) a crate's source
// repository and derives structural facts from it: per-language line
// counts, unsafe-token usage, example counts, CI tooling, and commit
// history.
package codebase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/cache"
	"github.com/vitaliisemenov/alert-history/internal/facts/tracker"
)

var logger = slog.Default().With("component", "codebase")

// Provider answers source-repo structural queries, one cloned mirror and
// one cached result per distinct repository.
type Provider struct {
	cacheDir string
	ttl      time.Duration
}

// New creates a codebase Provider rooted at cacheDir.
func New(cacheDir string, ttl time.Duration) *Provider {
	return &Provider{cacheDir: cacheDir, ttl: ttl}
}

// GetCodebaseData resolves structural data for every distinct repository
// among specs, fanning the result back out to every spec that shares one.
func (p *Provider) GetCodebaseData(ctx context.Context, specs []facts.CrateSpec, t *tracker.Tracker) map[string]facts.ProviderResult[facts.CodebaseData] {
	groups := facts.GroupByRepo(specs)
	t.AddRequests(tracker.Codebase, uint64(len(groups)))

	results := make(map[string]facts.ProviderResult[facts.CodebaseData], len(specs))
	for _, g := range groups {
		r := p.fetchForRepo(ctx, g.Repo)
		t.CompleteRequest(tracker.Codebase)

		if r.Kind == facts.Error {
			logger.Error("could not get codebase data", "repo", g.Repo.String(), "error", r.Cause)
		}
		for _, spec := range g.Specs {
			results[spec.Key()] = r
		}
	}
	return results
}

func cachePath(cacheDir string, repo facts.RepoSpec) string {
	host := facts.SanitizePathComponent(repo.Host())
	owner := facts.SanitizePathComponent(repo.Owner())
	name := facts.SanitizePathComponent(repo.Repo())
	return filepath.Join(cacheDir, host, owner, name+".json")
}

func mirrorPath(cacheDir string, repo facts.RepoSpec) string {
	host := facts.SanitizePathComponent(repo.Host())
	owner := facts.SanitizePathComponent(repo.Owner())
	name := facts.SanitizePathComponent(repo.Repo())
	return filepath.Join(cacheDir, host, owner, name+".git")
}

func timestampOf(d facts.CodebaseData) time.Time { return d.Timestamp }

func (p *Provider) fetchForRepo(ctx context.Context, repo facts.RepoSpec) facts.ProviderResult[facts.CodebaseData] {
	path := cachePath(p.cacheDir, repo)
	now := time.Now().UTC()

	if cached, ok := cache.LoadWithTTL(path, p.ttl, timestampOf, now, "codebase "+repo.String()); ok {
		return facts.ResultFound(cached)
	}

	data, err := p.fetch(ctx, repo, now)
	if err != nil {
		return facts.ResultError[facts.CodebaseData](err)
	}

	if err := cache.Save(data, path); err != nil {
		logger.Debug("could not save codebase cache", "repo", repo.String(), "error", err)
	}
	return facts.ResultFound(data)
}

func (p *Provider) fetch(ctx context.Context, repo facts.RepoSpec, now time.Time) (facts.CodebaseData, error) {
	mirror := mirrorPath(p.cacheDir, repo)
	repoURL := repo.URL().String()

	if err := ensureMirror(ctx, repoURL, mirror); err != nil {
		return facts.CodebaseData{}, fmt.Errorf("cloning or updating mirror of %s: %w", repo, err)
	}

	languages, unsafeCount, exampleCount, _, _ := analyzeSourceFiles(mirror)

	workflows, err := sniffGitHubWorkflows(mirror)
	if err != nil {
		return facts.CodebaseData{}, fmt.Errorf("analyzing workflows for %s: %w", repo, err)
	}

	gitLog, err := gitLogStats(ctx, mirror, now)
	if err != nil {
		return facts.CodebaseData{}, fmt.Errorf("computing git log stats for %s: %w", repo, err)
	}

	return facts.CodebaseData{
		Timestamp:    now,
		Languages:    languages,
		UnsafeTokens: unsafeCount,
		ExampleCount: exampleCount,
		Workflows:    workflows,
		GitLog:       gitLog,
	}, nil
}

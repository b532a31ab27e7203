// Package hosting answers code-host queries: repository popularity
// (stars, forks, subscribers), recent commit activity, and issue/PR health
// for a crate's source repository.
package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/cache"
	"github.com/vitaliisemenov/alert-history/internal/facts/tracker"
)

var logger = slog.Default().With("component", "hosting")

const commitWindow = 90 * 24 * time.Hour

// Provider answers hosting queries for repositories, one cached lookup per
// repo regardless of how many crates share it.
type Provider struct {
	client   *client
	cacheDir string
	ttl      time.Duration
}

// New creates a hosting Provider. An empty baseURL defaults to the GitHub
// REST API; the credential token is read from APRZ_GITHUB_TOKEN.
func New(httpClient *http.Client, cacheDir string, ttl time.Duration, baseURL string) *Provider {
	return &Provider{client: newClient(httpClient, baseURL), cacheDir: cacheDir, ttl: ttl}
}

// GetHostingData resolves hosting data for every distinct repository among
// specs, fanning the result back out to every spec that shares a repo.
func (p *Provider) GetHostingData(ctx context.Context, specs []facts.CrateSpec, t *tracker.Tracker) map[string]facts.ProviderResult[facts.HostingData] {
	groups := facts.GroupByRepo(specs)
	t.AddRequests(tracker.Repos, uint64(len(groups)))

	results := make(map[string]facts.ProviderResult[facts.HostingData], len(specs))
	for _, g := range groups {
		r := p.fetchForRepo(ctx, g.Repo)
		t.CompleteRequest(tracker.Repos)

		if r.Kind == facts.Error {
			logger.Error("could not get hosting data", "repo", g.Repo.String(), "error", r.Cause)
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

func timestampOf(d facts.HostingData) time.Time { return d.Timestamp }

func (p *Provider) fetchForRepo(ctx context.Context, repo facts.RepoSpec) facts.ProviderResult[facts.HostingData] {
	path := cachePath(p.cacheDir, repo)
	now := time.Now().UTC()

	if cached, ok := cache.LoadWithTTL(path, p.ttl, timestampOf, now, "hosting "+repo.String()); ok {
		return facts.ResultFound(cached)
	}

	data, err := p.fetch(ctx, repo, now)
	if err != nil {
		return facts.ResultError[facts.HostingData](err)
	}

	if err := cache.Save(data, path); err != nil {
		logger.Debug("could not save hosting cache", "repo", repo.String(), "error", err)
	}
	return facts.ResultFound(data)
}

func (p *Provider) fetch(ctx context.Context, repo facts.RepoSpec, now time.Time) (facts.HostingData, error) {
	summary, err := p.client.getRepo(ctx, repo.Owner(), repo.Repo())
	if err != nil {
		return facts.HostingData{}, fmt.Errorf("fetching repository summary for %s: %w", repo, err)
	}

	commits, err := p.client.commitsSince(ctx, repo.Owner(), repo.Repo(), now.Add(-commitWindow))
	if err != nil {
		return facts.HostingData{}, fmt.Errorf("fetching commit activity for %s: %w", repo, err)
	}

	issues, pulls, err := p.client.issuesAndPulls(ctx, repo.Owner(), repo.Repo())
	if err != nil {
		return facts.HostingData{}, fmt.Errorf("fetching issues/pulls for %s: %w", repo, err)
	}

	return facts.HostingData{
		Timestamp:         now,
		Stars:             summary.StargazersCount,
		Forks:              summary.ForksCount,
		Subscribers:        summary.SubscribersCount,
		CommitsLast90Days: commits,
		Issues:             summarizeItems(issues, now),
		Pulls:              summarizeItems(pulls, now),
	}, nil
}

func summarizeItems(items []issueItem, now time.Time) facts.IssueStats {
	var openAges, closedAges []time.Duration
	var openCount, closedCount uint64

	for _, item := range items {
		if item.ClosedAt != nil {
			closedCount++
			closedAges = append(closedAges, item.ClosedAt.Sub(item.CreatedAt))
		} else {
			openCount++
			openAges = append(openAges, now.Sub(item.CreatedAt))
		}
	}

	return facts.IssueStats{
		OpenCount:   openCount,
		ClosedCount: closedCount,
		OpenAge:     computeAgeStats(openAges),
		ClosedAge:   computeAgeStats(closedAges),
	}
}

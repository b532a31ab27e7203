// Package coverage fetches per-repository test coverage percentages from a
// third-party coverage host by scraping its SVG badge.
package coverage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/cache"
	"github.com/vitaliisemenov/alert-history/internal/facts/resilient"
	"github.com/vitaliisemenov/alert-history/internal/facts/throttle"
	"github.com/vitaliisemenov/alert-history/internal/facts/tracker"
)

// DefaultBaseURL is codecov.io's badge endpoint, used unless overridden.
const DefaultBaseURL = "https://codecov.io"

const maxConcurrentRequests = 5

var (
	percentPattern      = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	unknownBadgePattern = regexp.MustCompile(`>unknown<`)
)

var logger = slog.Default().With("component", "coverage")

// Provider answers coverage queries for repositories, one cached lookup per
// repo regardless of how many crates share it.
type Provider struct {
	client    *http.Client
	cacheDir  string
	ttl       time.Duration
	baseURL   string
	throttler *throttle.Throttler
}

// New creates a coverage Provider. An empty baseURL defaults to codecov.io.
func New(client *http.Client, cacheDir string, ttl time.Duration, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		client:    client,
		cacheDir:  cacheDir,
		ttl:       ttl,
		baseURL:   baseURL,
		throttler: throttle.New(maxConcurrentRequests, "coverage"),
	}
}

// cachedResult is the on-disk shape: a negative (Unavailable) entry is
// distinguished from a positive (Found) one by Available, so a repo known
// to have no coverage data is not re-fetched every run until TTL.
type cachedResult struct {
	Timestamp time.Time          `json:"timestamp"`
	Available bool               `json:"available"`
	Reason    string             `json:"reason,omitempty"`
	Data      facts.CoverageData `json:"data,omitempty"`
}

// GetCoverageData resolves coverage for every distinct repository among
// specs, fanning the result back out to every spec that shares a repo.
func (p *Provider) GetCoverageData(ctx context.Context, specs []facts.CrateSpec, t *tracker.Tracker) map[string]facts.ProviderResult[facts.CoverageData] {
	groups := facts.GroupByRepo(specs)
	t.AddRequests(tracker.Coverage, uint64(len(groups)))

	results := make(map[string]facts.ProviderResult[facts.CoverageData], len(specs))

	type outcome struct {
		group  facts.RepoGroup
		result facts.ProviderResult[facts.CoverageData]
	}
	resultCh := make(chan outcome, len(groups))

	for _, g := range groups {
		go func(g facts.RepoGroup) {
			permit, err := p.throttler.Acquire(ctx)
			if err != nil {
				resultCh <- outcome{g, facts.ResultError[facts.CoverageData](err)}
				return
			}
			defer permit.Release()

			r := p.fetchForRepo(ctx, g.Repo)
			t.CompleteRequest(tracker.Coverage)
			resultCh <- outcome{g, r}
		}(g)
	}

	for range groups {
		entry := <-resultCh
		if entry.result.Kind == facts.Error {
			logger.Error("could not get coverage data", "repo", entry.group.Repo.String(), "error", entry.result.Cause)
		} else if entry.result.Kind == facts.Unavailable {
			logger.Warn("coverage unavailable", "repo", entry.group.Repo.String(), "reason", entry.result.Reason)
		}
		for _, spec := range entry.group.Specs {
			results[spec.Key()] = entry.result
		}
	}
	return results
}

func cacheFilename(repo facts.RepoSpec) string {
	host := facts.SanitizePathComponent(repo.Host())
	owner := facts.SanitizePathComponent(repo.Owner())
	name := facts.SanitizePathComponent(repo.Repo())
	return filepath.Join(host, owner, name+".json")
}

func (p *Provider) fetchForRepo(ctx context.Context, repo facts.RepoSpec) facts.ProviderResult[facts.CoverageData] {
	path := filepath.Join(p.cacheDir, cacheFilename(repo))

	if cached, ok := cache.LoadWithTTL(path, p.ttl, func(c cachedResult) time.Time { return c.Timestamp }, time.Now(), "coverage "+repo.String()); ok {
		if cached.Available {
			return facts.ResultFound(cached.Data)
		}
		return facts.ResultUnavailable[facts.CoverageData](cached.Reason)
	}

	percentage, err := p.coveragePercentage(ctx, repo)
	if err != nil {
		return facts.ResultError[facts.CoverageData](err)
	}
	if percentage == nil {
		reason := fmt.Sprintf("could not find coverage data for repository %q on %s", repo, p.baseURL)
		_ = cache.Save(cachedResult{Timestamp: time.Now(), Available: false, Reason: reason}, path)
		return facts.ResultUnavailable[facts.CoverageData](reason)
	}

	data := facts.CoverageData{Percentage: *percentage}
	if err := cache.Save(cachedResult{Timestamp: time.Now(), Available: true, Data: data}, path); err != nil {
		logger.Debug("could not save coverage cache", "repo", repo.String(), "error", err)
	}
	return facts.ResultFound(data)
}

// coveragePercentage tries main then master, returning nil if neither
// branch has coverage data.
func (p *Provider) coveragePercentage(ctx context.Context, repo facts.RepoSpec) (*float64, error) {
	for _, branch := range []string{"main", "master"} {
		pct, err := p.tryBranch(ctx, repo, branch)
		if err != nil {
			return nil, err
		}
		if pct != nil {
			return pct, nil
		}
	}
	return nil, nil
}

func (p *Provider) tryBranch(ctx context.Context, repo facts.RepoSpec, branch string) (*float64, error) {
	url := fmt.Sprintf("%s/gh/%s/%s/branch/%s/graph/badge.svg", p.baseURL, repo.Owner(), repo.Repo(), branch)

	resp, err := resilient.Get(ctx, p.client, url)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting %q: %v", facts.ErrProvider, url, err)
	}
	defer resilient.DrainAndClose(resp)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected HTTP status %d from %q", facts.ErrProvider, resp.StatusCode, url)
	}

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading coverage badge body: %v", facts.ErrIO, err)
	}
	body := string(rawBody)

	if unknownBadgePattern.MatchString(body) {
		return nil, nil
	}

	match := percentPattern.FindStringSubmatch(body)
	if match == nil {
		return nil, nil
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil, nil
	}
	return &value, nil
}

// Package collector drives the two-phase fact-gathering pipeline: resolve
// every requested crate reference against the registry (Identify), then
// fan each resolved spec out to the five secondary providers concurrently
// (Query).
package collector

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/advisories"
	"github.com/vitaliisemenov/alert-history/internal/facts/cache"
	"github.com/vitaliisemenov/alert-history/internal/facts/codebase"
	"github.com/vitaliisemenov/alert-history/internal/facts/coverage"
	"github.com/vitaliisemenov/alert-history/internal/facts/docs"
	"github.com/vitaliisemenov/alert-history/internal/facts/hosting"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
	"github.com/vitaliisemenov/alert-history/internal/facts/registry"
	"github.com/vitaliisemenov/alert-history/internal/facts/tracker"
	"github.com/vitaliisemenov/alert-history/internal/observability"

	"golang.org/x/sync/errgroup"
)

// Config bundles everything the Collector needs to stand up its six
// providers. BaseURL overrides are for tests; leaving them empty uses each
// provider's real upstream.
type Config struct {
	CacheDir string
	DumpURL  string

	CratesTTL      time.Duration
	HostingTTL     time.Duration
	CodebaseTTL    time.Duration
	CoverageTTL    time.Duration
	AdvisoriesTTL  time.Duration

	HostingBaseURL  string
	CoverageBaseURL string
	DocsBaseURL     string
}

// Collector owns every fact provider plus the exclusive lock on the shared
// cache directory, released when Close is called.
type Collector struct {
	registry   *registry.Provider
	hosting    *hosting.Provider
	advisories *advisories.Provider
	codebase   *codebase.Provider
	coverage   *coverage.Provider
	docs       *docs.Provider
	lock       *cache.LockGuard
	rep        progress.Reporter
}

// New stands up every provider under cfg.CacheDir, acquiring the cache lock
// first so no other process mutates the cache concurrently.
func New(ctx context.Context, client *http.Client, cfg Config, rep progress.Reporter, now time.Time) (*Collector, error) {
	rep.SetPhase("Preparing")

	lock, err := cache.AcquireLock(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	cratesDir, err := subDir(cfg.CacheDir, "crates")
	if err != nil {
		return nil, err
	}
	hostingDir, err := subDir(cfg.CacheDir, "hosting")
	if err != nil {
		return nil, err
	}
	codebaseDir, err := subDir(cfg.CacheDir, "codebase")
	if err != nil {
		return nil, err
	}
	coverageDir, err := subDir(cfg.CacheDir, "coverage")
	if err != nil {
		return nil, err
	}
	advisoriesDir, err := subDir(cfg.CacheDir, "advisories")
	if err != nil {
		return nil, err
	}
	docsDir, err := subDir(cfg.CacheDir, "docs")
	if err != nil {
		return nil, err
	}

	registryProvider, err := registry.NewProvider(ctx, client, cfg.DumpURL, cratesDir, cfg.CratesTTL, rep, now)
	if err != nil {
		lock.Release()
		return nil, err
	}

	advisoriesProvider, err := advisories.New(ctx, advisoriesDir, cfg.AdvisoriesTTL, rep, now)
	if err != nil {
		registryProvider.Close()
		lock.Release()
		return nil, err
	}

	return &Collector{
		registry:   registryProvider,
		hosting:    hosting.New(client, hostingDir, cfg.HostingTTL, cfg.HostingBaseURL),
		advisories: advisoriesProvider,
		codebase:   codebase.New(codebaseDir, cfg.CodebaseTTL),
		coverage:   coverage.New(client, coverageDir, cfg.CoverageTTL, cfg.CoverageBaseURL),
		docs:       docs.New(client, docsDir, cfg.DocsBaseURL),
		lock:       lock,
		rep:        rep,
	}, nil
}

// Close releases the shared cache lock and unmaps the registry's tables.
func (c *Collector) Close() error {
	closeErr := c.registry.Close()
	c.lock.Release()
	return closeErr
}

func subDir(base, name string) (string, error) {
	path := filepath.Join(base, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %q cache directory: %v", facts.ErrIO, name, err)
	}
	return path, nil
}

// Collect resolves every ref against the registry, then queries the five
// secondary providers concurrently for every spec the registry found.
// Specs that collide after resolution (two refs resolving to the same
// canonical CrateSpec) are deduplicated, first resolution wins.
func (c *Collector) Collect(ctx context.Context, refs []facts.CrateRef, now time.Time) ([]facts.CrateFacts, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	c.rep.SetPhase("Identifying")
	resolved := c.registry.GetCratesData(refs, c.rep, now)

	order := make([]string, 0, len(resolved))
	byKey := make(map[string]facts.CrateFacts, len(resolved))
	for _, r := range resolved {
		key := r.Ref.String()
		if r.Data.Kind == facts.Found {
			key = r.Spec.Key()
		}
		if _, seen := byKey[key]; seen {
			continue
		}
		order = append(order, key)
		byKey[key] = facts.CrateFacts{
			Spec:         r.Spec,
			CratesData:   r.Data,
			HostingData:  facts.ResultCrateNotFound[facts.HostingData](nil),
			AdvisoryData: facts.ResultCrateNotFound[facts.AdvisoryData](nil),
			CodebaseData: facts.ResultCrateNotFound[facts.CodebaseData](nil),
			CoverageData: facts.ResultCrateNotFound[facts.CoverageData](nil),
			DocsData:     facts.ResultCrateNotFound[facts.DocsData](nil),
		}
	}

	var queryable []facts.CrateSpec
	for _, key := range order {
		if byKey[key].CratesData.Kind == facts.Found {
			queryable = append(queryable, byKey[key].Spec)
		}
	}

	if len(queryable) > 0 {
		observability.CollectorSpecsQueried.Add(float64(len(queryable)))
		c.rep.SetPhase("Querying")
		if err := c.queryProviders(ctx, queryable, byKey); err != nil {
			return nil, err
		}
	}
	c.rep.Done()

	result := make([]facts.CrateFacts, len(order))
	for i, key := range order {
		result[i] = byKey[key]
	}
	return result, nil
}

func (c *Collector) queryProviders(ctx context.Context, specs []facts.CrateSpec, byKey map[string]facts.CrateFacts) error {
	t := tracker.New(c.rep)

	var (
		advisoryResults map[string]facts.ProviderResult[facts.AdvisoryData]
		docsResults     map[string]facts.ProviderResult[facts.DocsData]
		hostingResults  map[string]facts.ProviderResult[facts.HostingData]
		codebaseResults map[string]facts.ProviderResult[facts.CodebaseData]
		coverageResults map[string]facts.ProviderResult[facts.CoverageData]
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		advisoryResults = c.advisories.GetAdvisoryData(specs)
		observability.ObserveProviderBatch("advisories", start, outcomeCounts(advisoryResults))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		docsResults = c.docs.GetDocsData(gCtx, specs, t)
		observability.ObserveProviderBatch("docs", start, outcomeCounts(docsResults))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		hostingResults = c.hosting.GetHostingData(gCtx, specs, t)
		observability.ObserveProviderBatch("hosting", start, outcomeCounts(hostingResults))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		codebaseResults = c.codebase.GetCodebaseData(gCtx, specs, t)
		observability.ObserveProviderBatch("codebase", start, outcomeCounts(codebaseResults))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		coverageResults = c.coverage.GetCoverageData(gCtx, specs, t)
		observability.ObserveProviderBatch("coverage", start, outcomeCounts(coverageResults))
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for key, cf := range byKey {
		if cf.CratesData.Kind != facts.Found {
			continue
		}
		specKey := cf.Spec.Key()
		if r, ok := advisoryResults[specKey]; ok {
			cf.AdvisoryData = r
		}
		if r, ok := docsResults[specKey]; ok {
			cf.DocsData = r
		}
		if r, ok := hostingResults[specKey]; ok {
			cf.HostingData = r
		}
		if r, ok := codebaseResults[specKey]; ok {
			cf.CodebaseData = r
		}
		if r, ok := coverageResults[specKey]; ok {
			cf.CoverageData = r
		}
		byKey[key] = cf
	}
	return nil
}

// outcomeCounts tallies a provider's batch results by ResultKind, labeled the
// way observability.ProviderRequests expects.
func outcomeCounts[T any](results map[string]facts.ProviderResult[T]) map[string]int {
	counts := make(map[string]int, 4)
	for _, r := range results {
		switch r.Kind {
		case facts.Found:
			counts["found"]++
		case facts.Unavailable:
			counts["unavailable"]++
		case facts.CrateNotFound, facts.VersionNotFound:
			counts["not_found"]++
		default:
			counts["error"]++
		}
	}
	return counts
}

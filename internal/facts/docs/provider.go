// Package docs fetches and scores rustdoc-generated documentation for a
// specific crate version from a docs-hosting endpoint.
package docs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/cache"
	"github.com/vitaliisemenov/alert-history/internal/facts/resilient"
	"github.com/vitaliisemenov/alert-history/internal/facts/tracker"
)

// DefaultBaseURL is docs.rs, used unless overridden.
const DefaultBaseURL = "https://docs.rs"

var logger = slog.Default().With("component", "docs")

// Provider answers per-crate-version documentation queries. Results are
// cached indefinitely (a published version's docs never change), unlike
// every other provider's TTL-bounded cache.
type Provider struct {
	client   *http.Client
	cacheDir string
	baseURL  string
}

// New creates a docs Provider. An empty baseURL defaults to docs.rs.
func New(client *http.Client, cacheDir, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{client: client, cacheDir: cacheDir, baseURL: baseURL}
}

// GetDocsData resolves documentation metrics for every spec, one HTTP
// round-trip (or cache hit) per crate version.
func (p *Provider) GetDocsData(ctx context.Context, specs []facts.CrateSpec, t *tracker.Tracker) map[string]facts.ProviderResult[facts.DocsData] {
	t.AddRequests(tracker.Docs, uint64(len(specs)))

	results := make(map[string]facts.ProviderResult[facts.DocsData], len(specs))
	for _, spec := range specs {
		r := p.fetchForSpec(ctx, spec)
		t.CompleteRequest(tracker.Docs)

		switch r.Kind {
		case facts.Error:
			logger.Error("could not fetch documentation data", "crate", spec.String(), "error", r.Cause)
		case facts.CrateNotFound:
			logger.Warn("could not find crate on docs host", "crate", spec.String())
		case facts.Found:
			if r.Data.Metrics.Kind == facts.DocMetricsUnknownFormatVersion {
				logger.Warn("unsupported rustdoc JSON format version", "crate", spec.String(), "format_version", r.Data.Metrics.FormatVersion)
			}
		}
		results[spec.Key()] = r
	}
	return results
}

func cachePath(cacheDir string, spec facts.CrateSpec) string {
	name := facts.SanitizePathComponent(spec.Name())
	version := facts.SanitizePathComponent(spec.Version().String())
	return filepath.Join(cacheDir, fmt.Sprintf("%s@%s.json", name, version))
}

func (p *Provider) fetchForSpec(ctx context.Context, spec facts.CrateSpec) facts.ProviderResult[facts.DocsData] {
	path := cachePath(p.cacheDir, spec)
	if cached, err := cache.Load[facts.DocsData](path, "docs for "+spec.String()); err == nil {
		return facts.ResultFound(cached)
	}

	tempFile, notFound, err := p.downloadZst(ctx, spec)
	if notFound {
		return facts.ResultCrateNotFound[facts.DocsData](nil)
	}
	if err != nil {
		return facts.ResultError[facts.DocsData](err)
	}
	defer os.Remove(tempFile)

	data, err := p.calculateDocsMetrics(tempFile, spec)
	if err != nil {
		return facts.ResultError[facts.DocsData](fmt.Errorf("calculating documentation metrics for %s: %w", spec, err))
	}

	if err := cache.Save(data, path); err != nil {
		return facts.ResultError[facts.DocsData](err)
	}
	return facts.ResultFound(data)
}

// downloadZst streams docs.rs's per-version JSON artifact to a sanitized
// temp path. The caller owns cleanup of the returned path on success.
func (p *Provider) downloadZst(ctx context.Context, spec facts.CrateSpec) (path string, notFound bool, err error) {
	url := fmt.Sprintf("%s/crate/%s/%s/json", p.baseURL, spec.Name(), spec.Version())

	resp, err := resilient.Get(ctx, p.client, url)
	if err != nil {
		return "", false, fmt.Errorf("%w: requesting %q: %v", facts.ErrProvider, url, err)
	}
	defer resilient.DrainAndClose(resp)

	if resp.StatusCode == http.StatusNotFound {
		return "", true, nil
	}
	if resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("%w: unexpected HTTP status %d from %q", facts.ErrProvider, resp.StatusCode, url)
	}

	name := facts.SanitizePathComponent(spec.Name())
	version := facts.SanitizePathComponent(spec.Version().String())
	tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("%s@%s.zst", name, version))

	f, err := os.Create(tempFile)
	if err != nil {
		return "", false, fmt.Errorf("%w: creating temp file %q: %v", facts.ErrIO, tempFile, err)
	}
	defer f.Close()

	if _, err := f.ReadFrom(resp.Body); err != nil {
		os.Remove(tempFile)
		return "", false, fmt.Errorf("%w: writing temp file %q: %v", facts.ErrIO, tempFile, err)
	}
	return tempFile, false, nil
}

func (p *Provider) calculateDocsMetrics(zstPath string, spec facts.CrateSpec) (facts.DocsData, error) {
	f, err := os.Open(zstPath)
	if err != nil {
		return facts.DocsData{}, fmt.Errorf("%w: opening %q: %v", facts.ErrIO, zstPath, err)
	}
	defer f.Close()

	decoder, err := zstd.NewReader(f)
	if err != nil {
		return facts.DocsData{}, fmt.Errorf("%w: creating zstd decoder: %v", facts.ErrParse, err)
	}
	defer decoder.Close()

	state, err := calculateMetrics(decoder, spec)
	if err != nil {
		return facts.DocsData{}, err
	}
	return facts.DocsData{Metrics: state}, nil
}

// Package registry answers crate lookups against the binary-table store: it
// resolves a CrateRef to a canonical CrateSpec and assembles the
// version-scoped and crate-scoped data crates.io's database dump carries for
// it.
package registry

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"sync/atomic"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
	"github.com/vitaliisemenov/alert-history/internal/facts/tables"
)

// Provider resolves CrateRefs against a memory-mapped registry dump.
type Provider struct {
	mgr   *tables.Manager
	names *tables.NameIndex
	idx   *indices
}

// NewProvider opens (re-ingesting if stale or missing) the registry's binary
// tables under cacheDir and builds every secondary index the provider needs.
// dumpURL overrides the default crates.io dump location, primarily for tests.
func NewProvider(ctx context.Context, client *http.Client, dumpURL, cacheDir string, ttl time.Duration, rep progress.Reporter, now time.Time) (*Provider, error) {
	rep.SetPhase("Preparing")
	rep.SetIndeterminate(func() string { return "loading registry dump" })

	mgr, err := tables.OpenManager(ctx, client, dumpURL, cacheDir, ttl, now)
	if err != nil {
		rep.Done()
		return nil, err
	}

	names := tables.BuildNameIndex(mgr.Crates)
	idx := buildIndices(mgr)
	rep.Done()

	return &Provider{mgr: mgr, names: names, idx: idx}, nil
}

// Close unmaps every table backing this provider.
func (p *Provider) Close() error { return p.mgr.Close() }

// Result pairs one input ref with its resolution outcome. Spec is the zero
// value unless Data.Kind is facts.Found.
type Result struct {
	Ref  facts.CrateRef
	Spec facts.CrateSpec
	Data facts.ProviderResult[facts.CratesData]
}

// GetCratesData resolves every ref against the registry, reporting
// determinate progress as it goes.
func (p *Provider) GetCratesData(refs []facts.CrateRef, rep progress.Reporter, now time.Time) []Result {
	rep.SetPhase("Identifying")
	var done atomic.Uint64
	rep.SetDeterminate(func() (uint64, uint64, string) {
		return uint64(len(refs)), done.Load(), "resolving crate specs"
	})
	defer rep.Done()

	results := make([]Result, len(refs))
	for i, ref := range refs {
		spec, data := p.resolve(ref, now)
		results[i] = Result{Ref: ref, Spec: spec, Data: data}
		done.Add(1)
	}
	return results
}

func (p *Provider) resolve(ref facts.CrateRef, now time.Time) (facts.CrateSpec, facts.ProviderResult[facts.CratesData]) {
	pos, ok := p.names.Lookup(ref.Name())
	if !ok {
		suggestions := p.names.Suggest(ref.Name())
		return facts.CrateSpec{}, facts.ResultCrateNotFound[facts.CratesData](suggestions)
	}
	crateRow := p.mgr.Crates.Get(pos)

	versionRows := make([]tables.VersionRow, 0, len(p.idx.versionsByCrate[crateRow.ID]))
	for _, vpos := range p.idx.versionsByCrate[crateRow.ID] {
		versionRows = append(versionRows, p.mgr.Versions.Get(vpos))
	}
	versionRow, ok := selectVersion(versionRows, ref.Version())
	if !ok {
		return facts.CrateSpec{}, facts.ResultVersionNotFound[facts.CratesData]()
	}

	repo := parseRepository(crateRow.Repository)
	spec := facts.NewCrateSpec(crateRow.Name, versionRow.Num, repo)

	data := facts.CratesData{
		VersionData: p.versionData(versionRow),
		OverallData: p.overallData(crateRow, versionRows, now),
	}
	return spec, facts.ResultFound(data)
}

func parseRepository(raw string) *facts.RepoSpec {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	repo, err := facts.ParseRepoSpec(u)
	if err != nil {
		return nil
	}
	return &repo
}

func (p *Provider) versionData(row tables.VersionRow) facts.CrateVersionData {
	return facts.CrateVersionData{
		Description:      row.Description,
		Homepage:         row.Homepage,
		Documentation:    row.Documentation,
		License:          row.License,
		RustVersion:      row.RustVersion,
		Edition:          row.Edition_(),
		Features:         parseFeatures(row.Features),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		Yanked:           row.Yanked,
		Downloads:        row.Downloads,
		MonthlyDownloads: p.monthlyDownloadsForVersion(row.ID),
	}
}

func (p *Provider) overallData(crateRow tables.CrateRow, versions []tables.VersionRow, now time.Time) facts.CrateOverallData {
	return facts.CrateOverallData{
		CreatedAt:          crateRow.CreatedAt,
		UpdatedAt:          crateRow.UpdatedAt,
		Repository:         crateRow.Repository,
		Categories:         p.categoryNames(crateRow.ID),
		Keywords:           p.keywordNames(crateRow.ID),
		Owners:             p.resolveOwners(p.idx.ownersByCrate[crateRow.ID]),
		MonthlyDownloads:   p.monthlyDownloadsForCrate(versions),
		Downloads:          p.totalDownloads(crateRow.ID),
		Dependents:         uint64(len(p.idx.dependentsByTargetCrate[crateRow.ID])),
		VersionsLast90Days: versionsWithin(versions, now, 90*24*time.Hour),
	}
}

func (p *Provider) totalDownloads(crateID tables.CrateID) uint64 {
	pos, ok := p.idx.crateDownloadByCrate[crateID]
	if !ok {
		return 0
	}
	return p.mgr.CrateDownloads.Get(pos).Downloads
}

func (p *Provider) monthlyDownloadsForVersion(versionID tables.VersionID) []facts.MonthlyDownload {
	positions := p.idx.versionDownloadsByVer[versionID]
	dates := make([]time.Time, len(positions))
	counts := make([]uint64, len(positions))
	for i, pos := range positions {
		row := p.mgr.VersionDownloads.Get(pos)
		dates[i], counts[i] = row.Date, row.Downloads
	}
	return aggregateMonthly(dates, counts)
}

func (p *Provider) monthlyDownloadsForCrate(versions []tables.VersionRow) []facts.MonthlyDownload {
	var dates []time.Time
	var counts []uint64
	for _, v := range versions {
		for _, pos := range p.idx.versionDownloadsByVer[v.ID] {
			row := p.mgr.VersionDownloads.Get(pos)
			dates = append(dates, row.Date)
			counts = append(counts, row.Downloads)
		}
	}
	return aggregateMonthly(dates, counts)
}

func (p *Provider) categoryNames(crateID tables.CrateID) []string {
	positions := p.idx.categoriesByCrate[crateID]
	names := make([]string, 0, len(positions))
	for _, pos := range positions {
		join := p.mgr.CratesCategories.Get(pos)
		if catPos, ok := p.idx.categoriesByID[join.CategoryID]; ok {
			names = append(names, p.mgr.Categories.Get(catPos).Category)
		}
	}
	sort.Strings(names)
	return names
}

func (p *Provider) keywordNames(crateID tables.CrateID) []string {
	positions := p.idx.keywordsByCrate[crateID]
	names := make([]string, 0, len(positions))
	for _, pos := range positions {
		join := p.mgr.CratesKeywords.Get(pos)
		if kwPos, ok := p.idx.keywordsByID[join.KeywordID]; ok {
			names = append(names, p.mgr.Keywords.Get(kwPos).Keyword)
		}
	}
	sort.Strings(names)
	return names
}

func versionsWithin(versions []tables.VersionRow, now time.Time, window time.Duration) uint64 {
	var count uint64
	cutoff := now.Add(-window)
	for _, v := range versions {
		if v.CreatedAt.After(cutoff) {
			count++
		}
	}
	return count
}

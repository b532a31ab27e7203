package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
)

const (
	crateCSV = `id,name,created_at,updated_at,repository
1,serde,2019-01-01 00:00:00+00,2024-01-01 00:00:00+00,https://github.com/serde-rs/serde
2,tokio,2018-01-01 00:00:00+00,2024-02-01 00:00:00+00,https://github.com/tokio-rs/tokio
`
	versionCSV = `id,crate_id,num,downloads,edition,created_at,updated_at,description,features,license,rust_version,yanked,documentation,homepage
1,1,1.0.0,1000,2018,2019-01-01 00:00:00+00,2019-01-01 00:00:00+00,Serialization framework,{},MIT,1.60.0,f,https://docs.rs/serde,https://serde.rs
2,1,1.0.1,500,2018,2020-01-01 00:00:00+00,2020-01-01 00:00:00+00,Serialization framework v2,{},MIT,1.60.0,t,https://docs.rs/serde,https://serde.rs
3,2,1.30.0,2000,2021,2023-06-01 00:00:00+00,2023-06-01 00:00:00+00,Async runtime,{},MIT,1.70.0,f,https://docs.rs/tokio,https://tokio.rs
`
	usersCSV            = "id,gh_login,name\n1,dtolnay,David Tolnay\n"
	teamsCSV             = "id,login,name\n1,github:rust-lang:core,Rust Core Team\n"
	categoriesCSV        = "id,category,slug\n1,Parsing,parsing\n"
	keywordsCSV          = "id,keyword\n1,serialization\n"
	cratesCategoriesCSV  = "crate_id,category_id\n1,1\n"
	cratesKeywordsCSV    = "crate_id,keyword_id\n1,1\n"
	crateOwnersCSV       = "crate_id,owner_kind,owner_id\n1,0,1\n"
	dependenciesCSV      = "version_id,crate_id,features\n3,1,{}\n"
	crateDownloadsCSV    = "crate_id,downloads\n1,5000\n2,9000\n"
	versionDownloadsCSV  = `version_id,downloads,date
1,100,2023-01-15
1,50,2023-01-20
2,30,2023-02-10
3,1000,2023-06-15
`
)

func fixtureDumpServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/gzip")
		gz := gzip.NewWriter(w)
		tw := tar.NewWriter(gz)

		members := map[string]string{
			"crates.csv":             crateCSV,
			"versions.csv":           versionCSV,
			"users.csv":              usersCSV,
			"teams.csv":              teamsCSV,
			"categories.csv":         categoriesCSV,
			"keywords.csv":           keywordsCSV,
			"crates_categories.csv":  cratesCategoriesCSV,
			"crates_keywords.csv":    cratesKeywordsCSV,
			"crate_owners.csv":       crateOwnersCSV,
			"dependencies.csv":       dependenciesCSV,
			"crate_downloads.csv":    crateDownloadsCSV,
			"version_downloads.csv":  versionDownloadsCSV,
		}
		for name, body := range members {
			hdr := &tar.Header{Name: "data/" + name, Size: int64(len(body)), Mode: 0o644}
			if err := tw.WriteHeader(hdr); err != nil {
				t.Fatalf("tar header: %v", err)
			}
			if _, err := tw.Write([]byte(body)); err != nil {
				t.Fatalf("tar write: %v", err)
			}
		}
		if err := tw.Close(); err != nil {
			t.Fatalf("tar close: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
	}))
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	server := fixtureDumpServer(t)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	p, err := NewProvider(context.Background(), http.DefaultClient, server.URL, dir, 24*time.Hour, progress.NoOp{}, time.Now())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestResolveUnpinnedSkipsYankedAndPicksStable(t *testing.T) {
	p := newTestProvider(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	results := p.GetCratesData([]facts.CrateRef{facts.NewCrateRef("serde", nil)}, progress.NoOp{}, now)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Data.Kind != facts.Found {
		t.Fatalf("expected Found, got %v", r.Data.Kind)
	}
	if r.Spec.Version().String() != "1.0.0" {
		t.Errorf("expected version 1.0.0 (latest non-yanked stable), got %s", r.Spec.Version())
	}
	if r.Data.Data.OverallData.Downloads != 5000 {
		t.Errorf("expected total downloads 5000, got %d", r.Data.Data.OverallData.Downloads)
	}
	if len(r.Data.Data.OverallData.Owners) != 1 || r.Data.Data.OverallData.Owners[0].Login != "dtolnay" {
		t.Errorf("expected owner dtolnay, got %v", r.Data.Data.OverallData.Owners)
	}
	if len(r.Data.Data.OverallData.Categories) != 1 || r.Data.Data.OverallData.Categories[0] != "Parsing" {
		t.Errorf("expected category Parsing, got %v", r.Data.Data.OverallData.Categories)
	}
	if r.Data.Data.OverallData.Dependents != 1 {
		t.Errorf("expected 1 dependent (tokio), got %d", r.Data.Data.OverallData.Dependents)
	}

	monthly := r.Data.Data.OverallData.MonthlyDownloads
	if len(monthly) != 2 || monthly[0].Downloads != 150 || monthly[1].Downloads != 30 {
		t.Errorf("unexpected monthly downloads: %+v", monthly)
	}
}

func TestResolvePinnedVersionCanBeYanked(t *testing.T) {
	p := newTestProvider(t)
	v := semver.MustParse("1.0.1")
	results := p.GetCratesData([]facts.CrateRef{facts.NewCrateRef("serde", v)}, progress.NoOp{}, time.Now())

	r := results[0]
	if r.Data.Kind != facts.Found {
		t.Fatalf("expected Found, got %v", r.Data.Kind)
	}
	if !r.Data.Data.VersionData.Yanked {
		t.Error("expected pinned yanked version to resolve despite being yanked")
	}
}

func TestResolveUnknownVersionYieldsVersionNotFound(t *testing.T) {
	p := newTestProvider(t)
	v := semver.MustParse("9.9.9")
	results := p.GetCratesData([]facts.CrateRef{facts.NewCrateRef("serde", v)}, progress.NoOp{}, time.Now())

	if results[0].Data.Kind != facts.VersionNotFound {
		t.Errorf("expected VersionNotFound, got %v", results[0].Data.Kind)
	}
}

func TestResolveUnknownCrateYieldsSuggestions(t *testing.T) {
	p := newTestProvider(t)
	results := p.GetCratesData([]facts.CrateRef{facts.NewCrateRef("tokioo", nil)}, progress.NoOp{}, time.Now())

	if results[0].Data.Kind != facts.CrateNotFound {
		t.Fatalf("expected CrateNotFound, got %v", results[0].Data.Kind)
	}
	if len(results[0].Data.Suggestions) == 0 || results[0].Data.Suggestions[0] != "tokio" {
		t.Errorf("expected suggestion tokio, got %v", results[0].Data.Suggestions)
	}
}

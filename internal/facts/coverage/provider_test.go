package coverage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
	"github.com/vitaliisemenov/alert-history/internal/facts/tracker"
)

func testSpec(t *testing.T, repoURL string) facts.CrateSpec {
	t.Helper()
	u, err := url.Parse(repoURL)
	if err != nil {
		t.Fatal(err)
	}
	repo, err := facts.ParseRepoSpec(u)
	if err != nil {
		t.Fatal(err)
	}
	return facts.NewCrateSpec("example", semver.MustParse("1.0.0"), &repo)
}

func TestFetchesMainBranchCoverage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<svg><text>93.4%</text></svg>`))
	}))
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), time.Hour, server.URL)
	spec := testSpec(t, "https://github.com/example/repo")

	results := p.GetCoverageData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	r := results[spec.Key()]
	if r.Kind != facts.Found || r.Data.Percentage != 93.4 {
		t.Fatalf("got %+v", r)
	}
}

func TestUnknownBadgeIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<svg><text>unknown</text></svg>`))
	}))
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), time.Hour, server.URL)
	spec := testSpec(t, "https://github.com/example/repo")

	results := p.GetCoverageData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	if results[spec.Key()].Kind != facts.Unavailable {
		t.Fatalf("got %+v", results[spec.Key()])
	}
}

func TestFourOhFourIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), time.Hour, server.URL)
	spec := testSpec(t, "https://github.com/example/repo")

	results := p.GetCoverageData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	if results[spec.Key()].Kind != facts.Unavailable {
		t.Fatalf("got %+v", results[spec.Key()])
	}
}

func TestSharedRepoResolvesOnce(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<svg><text>50%</text></svg>`))
	}))
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), time.Hour, server.URL)
	a := testSpec(t, "https://github.com/example/repo")
	b := facts.NewCrateSpec("other", semver.MustParse("2.0.0"), a.Repo())

	results := p.GetCoverageData(context.Background(), []facts.CrateSpec{a, b}, tracker.New(progress.NoOp{}))
	if results[a.Key()].Data.Percentage != 50 || results[b.Key()].Data.Percentage != 50 {
		t.Fatalf("expected both specs to share the fetched coverage")
	}
	// main branch is tried first and succeeds, so only one request per repo.
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

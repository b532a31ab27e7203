package hosting

import (
	"context"
	"encoding/json"
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

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func fixtureServer(t *testing.T, requireAuth string) *httptest.Server {
	t.Helper()
	now := time.Now().UTC()
	oldOpen := now.Add(-48 * time.Hour)
	closedAt := now.Add(-24 * time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/example/repo", func(w http.ResponseWriter, r *http.Request) {
		if requireAuth != "" && r.Header.Get("Authorization") != "Bearer "+requireAuth {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{"stargazers_count": 42, "forks_count": 7, "subscribers_count": 3})
	})
	mux.HandleFunc("/repos/example/repo/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, []any{})
			return
		}
		writeJSON(w, []map[string]string{{"sha": "a"}, {"sha": "b"}})
	})
	mux.HandleFunc("/repos/example/repo/issues", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, []any{})
			return
		}
		state := r.URL.Query().Get("state")
		if state == "open" {
			writeJSON(w, []map[string]any{
				{"created_at": oldOpen.Format(time.RFC3339)},
			})
			return
		}
		writeJSON(w, []map[string]any{
			{"created_at": oldOpen.Format(time.RFC3339), "closed_at": closedAt.Format(time.RFC3339)},
			{"created_at": oldOpen.Format(time.RFC3339), "closed_at": closedAt.Format(time.RFC3339),
				"pull_request": map[string]string{"url": "https://example.invalid/pull/1"}},
		})
	})
	return httptest.NewServer(mux)
}

func TestFetchesHostingSummary(t *testing.T) {
	server := fixtureServer(t, "")
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), time.Hour, server.URL)
	spec := testSpec(t, "https://github.com/example/repo")

	results := p.GetHostingData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	r := results[spec.Key()]
	if r.Kind != facts.Found {
		t.Fatalf("got %+v", r)
	}
	if r.Data.Stars != 42 || r.Data.Forks != 7 || r.Data.Subscribers != 3 {
		t.Errorf("unexpected repo summary: %+v", r.Data)
	}
	if r.Data.CommitsLast90Days != 2 {
		t.Errorf("CommitsLast90Days = %d, want 2", r.Data.CommitsLast90Days)
	}
	if r.Data.Issues.OpenCount != 1 || r.Data.Issues.ClosedCount != 1 {
		t.Errorf("Issues = %+v", r.Data.Issues)
	}
	if r.Data.Pulls.OpenCount != 0 || r.Data.Pulls.ClosedCount != 1 {
		t.Errorf("Pulls = %+v", r.Data.Pulls)
	}
}

func TestTokenIsInjectedFromEnvironment(t *testing.T) {
	t.Setenv(tokenEnvVar, "secret-token")
	server := fixtureServer(t, "secret-token")
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), time.Hour, server.URL)
	spec := testSpec(t, "https://github.com/example/repo")

	results := p.GetHostingData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	if results[spec.Key()].Kind != facts.Found {
		t.Fatalf("expected authenticated request to succeed, got %+v", results[spec.Key()])
	}
}

func TestSharedRepoResolvesForEverySpec(t *testing.T) {
	server := fixtureServer(t, "")
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), time.Hour, server.URL)
	repoSpec1 := testSpec(t, "https://github.com/example/repo")
	u, err := url.Parse("https://github.com/example/repo")
	if err != nil {
		t.Fatal(err)
	}
	repo, err := facts.ParseRepoSpec(u)
	if err != nil {
		t.Fatal(err)
	}
	repoSpec2 := facts.NewCrateSpec("other", semver.MustParse("2.0.0"), &repo)

	results := p.GetHostingData(context.Background(), []facts.CrateSpec{repoSpec1, repoSpec2}, tracker.New(progress.NoOp{}))
	if results[repoSpec1.Key()].Kind != facts.Found || results[repoSpec2.Key()].Kind != facts.Found {
		t.Fatalf("got %+v / %+v", results[repoSpec1.Key()], results[repoSpec2.Key()])
	}
}

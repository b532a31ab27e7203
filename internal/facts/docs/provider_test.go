package docs

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
	"github.com/vitaliisemenov/alert-history/internal/facts/tracker"
)

func zstCompress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const sampleRustdocJSON = `{
  "format_version": 45,
  "root": "0:0",
  "index": {
    "0:0": {"visibility": "public", "docs": "Crate-level documentation."},
    "0:1": {"visibility": "public", "docs": "Documented public item."},
    "0:2": {"visibility": "public", "docs": null},
    "0:3": {"visibility": "default", "docs": null}
  }
}`

func TestFetchesAndParsesDocsJSON(t *testing.T) {
	compressed := zstCompress(t, []byte(sampleRustdocJSON))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(compressed)
	}))
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), server.URL)
	spec := facts.NewCrateSpec("serde", semver.MustParse("1.0.0"), nil)

	results := p.GetDocsData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	r := results[spec.Key()]
	if r.Kind != facts.Found {
		t.Fatalf("expected Found, got %+v", r)
	}
	m := r.Data.Metrics
	if m.Kind != facts.DocMetricsFound {
		t.Fatalf("expected parsed metrics, got %+v", m)
	}
	if m.Metrics.PublicAPIElements != 3 {
		t.Errorf("PublicAPIElements = %d, want 3", m.Metrics.PublicAPIElements)
	}
	if m.Metrics.UndocumentedElements != 1 {
		t.Errorf("UndocumentedElements = %d, want 1", m.Metrics.UndocumentedElements)
	}
	if !m.Metrics.HasCrateLevelDocs {
		t.Error("expected crate-level docs to be detected")
	}
}

func TestUnknownFormatVersionIsNotAnError(t *testing.T) {
	raw := []byte(`{"format_version": 1, "root": "0:0", "index": {}}`)
	compressed := zstCompress(t, raw)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(compressed)
	}))
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), server.URL)
	spec := facts.NewCrateSpec("serde", semver.MustParse("1.0.0"), nil)

	results := p.GetDocsData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	r := results[spec.Key()]
	if r.Kind != facts.Found {
		t.Fatalf("expected Found even for unknown format version, got %+v", r)
	}
	if r.Data.Metrics.Kind != facts.DocMetricsUnknownFormatVersion || r.Data.Metrics.FormatVersion != 1 {
		t.Errorf("expected unknown format version 1, got %+v", r.Data.Metrics)
	}
}

func TestNotFoundYieldsCrateNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := New(http.DefaultClient, t.TempDir(), server.URL)
	spec := facts.NewCrateSpec("doesnotexist", semver.MustParse("1.0.0"), nil)

	results := p.GetDocsData(context.Background(), []facts.CrateSpec{spec}, tracker.New(progress.NoOp{}))
	if results[spec.Key()].Kind != facts.CrateNotFound {
		t.Fatalf("got %+v", results[spec.Key()])
	}
}

package metrics

import (
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/vitaliisemenov/alert-history/internal/facts"
)

func testSpec(t *testing.T) facts.CrateSpec {
	t.Helper()
	v, err := semver.NewVersion("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	return facts.NewCrateSpec("example", v, nil)
}

func TestFlattenProducesOneEntryPerDefinitionInOrder(t *testing.T) {
	defs := DefaultDefs()
	cf := facts.CrateFacts{
		Spec:         testSpec(t),
		CratesData:   facts.ResultCrateNotFound[facts.CratesData](nil),
		HostingData:  facts.ResultCrateNotFound[facts.HostingData](nil),
		AdvisoryData: facts.ResultCrateNotFound[facts.AdvisoryData](nil),
		CodebaseData: facts.ResultCrateNotFound[facts.CodebaseData](nil),
		CoverageData: facts.ResultCrateNotFound[facts.CoverageData](nil),
		DocsData:     facts.ResultCrateNotFound[facts.DocsData](nil),
	}

	out := Flatten(cf, defs)
	if len(out) != len(defs) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(defs))
	}
	for i, m := range out {
		if m.Present {
			t.Errorf("metric %d (%s) present with no provider data", i, m.Def.Name)
		}
	}
}

func TestFlattenExtractsFoundRegistryData(t *testing.T) {
	defs := DefaultDefs()
	cf := facts.CrateFacts{
		Spec: testSpec(t),
		CratesData: facts.ResultFound(facts.CratesData{
			VersionData: facts.CrateVersionData{License: "MIT", Downloads: 42},
			OverallData: facts.CrateOverallData{Dependents: 7},
		}),
		HostingData:  facts.ResultCrateNotFound[facts.HostingData](nil),
		AdvisoryData: facts.ResultCrateNotFound[facts.AdvisoryData](nil),
		CodebaseData: facts.ResultCrateNotFound[facts.CodebaseData](nil),
		CoverageData: facts.ResultCrateNotFound[facts.CoverageData](nil),
		DocsData:     facts.ResultCrateNotFound[facts.DocsData](nil),
	}

	byName := ByName(Flatten(cf, defs))

	license, ok := byName["metadata.license"]
	if !ok || !license.Present || license.Value.String != "MIT" {
		t.Fatalf("metadata.license = %+v", license)
	}
	dependents, ok := byName["usage.dependents"]
	if !ok || !dependents.Present || dependents.Value.UInt != 7 {
		t.Fatalf("usage.dependents = %+v", dependents)
	}
}

func TestFlattenSkipsUnrecognizedDocFormatVersion(t *testing.T) {
	defs := DefaultDefs()
	cf := facts.CrateFacts{
		Spec:         testSpec(t),
		CratesData:   facts.ResultCrateNotFound[facts.CratesData](nil),
		HostingData:  facts.ResultCrateNotFound[facts.HostingData](nil),
		AdvisoryData: facts.ResultCrateNotFound[facts.AdvisoryData](nil),
		CodebaseData: facts.ResultCrateNotFound[facts.CodebaseData](nil),
		CoverageData: facts.ResultCrateNotFound[facts.CoverageData](nil),
		DocsData: facts.ResultFound(facts.DocsData{
			Metrics: facts.DocMetricState{Kind: facts.DocMetricsUnknownFormatVersion, FormatVersion: 99},
		}),
	}

	byName := ByName(Flatten(cf, defs))
	if m := byName["documentation.coverage_percentage"]; m.Present {
		t.Fatalf("expected documentation.coverage_percentage absent for unknown format version, got %+v", m)
	}
}

func TestFlattenAggregatesLanguageLineCounts(t *testing.T) {
	defs := DefaultDefs()
	cf := facts.CrateFacts{
		Spec:         testSpec(t),
		CratesData:   facts.ResultCrateNotFound[facts.CratesData](nil),
		HostingData:  facts.ResultCrateNotFound[facts.HostingData](nil),
		AdvisoryData: facts.ResultCrateNotFound[facts.AdvisoryData](nil),
		CoverageData: facts.ResultCrateNotFound[facts.CoverageData](nil),
		DocsData:     facts.ResultCrateNotFound[facts.DocsData](nil),
		CodebaseData: facts.ResultFound(facts.CodebaseData{
			Timestamp: time.Now(),
			Languages: []facts.LanguageLineCounts{
				{Language: "Rust", Production: 100, Test: 20},
				{Language: "TOML", Production: 5, Test: 0},
			},
		}),
	}

	byName := ByName(Flatten(cf, defs))
	if m := byName["codebase.production_lines"]; !m.Present || m.Value.UInt != 105 {
		t.Fatalf("codebase.production_lines = %+v", m)
	}
	if m := byName["codebase.test_lines"]; !m.Present || m.Value.UInt != 20 {
		t.Fatalf("codebase.test_lines = %+v", m)
	}
}

package tables

import (
	"strings"
	"testing"
	"time"
)

const cratesCSV = `id,name,created_at,updated_at,repository
1,serde,2020-01-01 00:00:00+00,2024-06-01 00:00:00+00,https://github.com/serde-rs/serde
2,tokio,2019-05-01 00:00:00+00,2024-07-01 00:00:00+00,https://github.com/tokio-rs/tokio
3,weird-crate,2021-03-01 00:00:00+00,2022-01-01 00:00:00+00,not a url at all
`

func TestCreateAndOpenCratesTable(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	if err := Create(dir, CratesTableName, strings.NewReader(cratesCSV), now, writeCrateRow); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tbl, err := OpenCratesTable(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("OpenCratesTable: %v", err)
	}
	defer tbl.Close()

	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}

	var names []string
	for row := range tbl.All() {
		names = append(names, row.Name)
	}
	want := []string{"serde", "tokio", "weird-crate"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestOpenRejectsStaleTable(t *testing.T) {
	dir := t.TempDir()
	past := time.Now().Add(-48 * time.Hour)

	if err := Create(dir, CratesTableName, strings.NewReader(cratesCSV), past, writeCrateRow); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := OpenCratesTable(dir, 1*time.Hour, time.Now()); err == nil {
		t.Fatal("expected error opening stale table")
	}
}

func TestGetByIndexMatchesIteration(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	if err := Create(dir, CratesTableName, strings.NewReader(cratesCSV), now, writeCrateRow); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tbl, err := OpenCratesTable(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("OpenCratesTable: %v", err)
	}
	defer tbl.Close()

	for row, idx := range tbl.All() {
		got := tbl.Get(idx)
		if got.Name != row.Name {
			t.Errorf("Get(%d).Name = %q, want %q", idx, got.Name, row.Name)
		}
	}
}

func TestNameIndexExactAndSuggestions(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	if err := Create(dir, CratesTableName, strings.NewReader(cratesCSV), now, writeCrateRow); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tbl, err := OpenCratesTable(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("OpenCratesTable: %v", err)
	}
	defer tbl.Close()

	idx := BuildNameIndex(tbl)
	if _, ok := idx.Lookup("tokio"); !ok {
		t.Error("expected exact lookup to find tokio")
	}
	if _, ok := idx.Lookup("Tokio"); ok {
		t.Error("lookup should be case-sensitive")
	}

	suggestions := idx.Suggest("tokoi")
	if len(suggestions) == 0 || suggestions[0] != "tokio" {
		t.Errorf("Suggest(tokoi) = %v, want [tokio, ...]", suggestions)
	}
}

func TestInvalidRepositoryURLFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	if err := Create(dir, CratesTableName, strings.NewReader(cratesCSV), now, writeCrateRow); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tbl, err := OpenCratesTable(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("OpenCratesTable: %v", err)
	}
	defer tbl.Close()

	found := false
	for row := range tbl.All() {
		if row.Name == "weird-crate" {
			found = true
			if row.Repository != "" {
				t.Errorf("expected empty repository fallback, got %q", row.Repository)
			}
		}
	}
	if !found {
		t.Fatal("weird-crate not found")
	}
}

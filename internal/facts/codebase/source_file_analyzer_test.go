package codebase

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSourceFile(t *testing.T, dir, relPath, content string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyzeSourceFilesCountsProductionAndCommentLines(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "src/lib.rs", "// a comment\npub fn f() {}\n\nunsafe fn g() {}\n")

	languages, unsafeCount, exampleCount, analyzed, errored := analyzeSourceFiles(dir)
	if len(languages) != 1 || languages[0].Language != "Rust" {
		t.Fatalf("languages = %+v", languages)
	}
	if languages[0].Comment != 1 {
		t.Errorf("Comment = %d, want 1", languages[0].Comment)
	}
	if languages[0].Production != 2 {
		t.Errorf("Production = %d, want 2", languages[0].Production)
	}
	if unsafeCount != 1 {
		t.Errorf("unsafeCount = %d, want 1", unsafeCount)
	}
	if exampleCount != 0 || analyzed != 1 || errored != 0 {
		t.Errorf("exampleCount=%d analyzed=%d errored=%d", exampleCount, analyzed, errored)
	}
}

func TestAnalyzeSourceFilesClassifiesTestsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "tests/integration.rs", "fn it_works() {}\n")

	languages, _, _, _, _ := analyzeSourceFiles(dir)
	if len(languages) != 1 || languages[0].Test != 1 || languages[0].Production != 0 {
		t.Fatalf("languages = %+v", languages)
	}
}

func TestAnalyzeSourceFilesCountsExamples(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "examples/basic.rs", "fn main() {}\n")

	_, _, exampleCount, _, _ := analyzeSourceFiles(dir)
	if exampleCount != 1 {
		t.Errorf("exampleCount = %d, want 1", exampleCount)
	}
}

func TestAnalyzeSourceFilesSkipsVendorDirectories(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "vendor/dep/lib.rs", "unsafe fn hidden() {}\n")

	languages, unsafeCount, _, _, _ := analyzeSourceFiles(dir)
	if len(languages) != 0 || unsafeCount != 0 {
		t.Fatalf("expected vendor directory to be skipped, got languages=%+v unsafeCount=%d", languages, unsafeCount)
	}
}

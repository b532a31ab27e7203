package codebase

import (
	"os"
	"path/filepath"
	"testing"
)

func writeWorkflow(t *testing.T, dir, name, content string) {
	t.Helper()
	workflowsDir := filepath.Join(dir, ".github", "workflows")
	if err := os.MkdirAll(workflowsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workflowsDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNoWorkflowsDirectory(t *testing.T) {
	usage, err := sniffGitHubWorkflows(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if usage.WorkflowsDetected || usage.ClippyDetected || usage.MiriDetected {
		t.Fatalf("got %+v", usage)
	}
}

func TestEmptyWorkflowsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".github", "workflows"), 0o755); err != nil {
		t.Fatal(err)
	}
	usage, err := sniffGitHubWorkflows(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !usage.WorkflowsDetected || usage.ClippyDetected || usage.MiriDetected {
		t.Fatalf("got %+v", usage)
	}
}

func TestWorkflowsWithClippy(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", "name: CI\nsteps:\n  - run: cargo clippy -- -D warnings\n")
	usage, err := sniffGitHubWorkflows(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !usage.WorkflowsDetected || !usage.ClippyDetected || usage.MiriDetected {
		t.Fatalf("got %+v", usage)
	}
}

func TestWorkflowsWithBoth(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", "steps:\n  - run: cargo clippy\n  - run: cargo +nightly miri test\n")
	usage, err := sniffGitHubWorkflows(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !usage.ClippyDetected || !usage.MiriDetected {
		t.Fatalf("got %+v", usage)
	}
}

func TestCaseInsensitiveDetection(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yml", "steps:\n  - run: cargo CLIPPY\n  - run: cargo MiRi test\n")
	usage, err := sniffGitHubWorkflows(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !usage.ClippyDetected || !usage.MiriDetected {
		t.Fatalf("got %+v", usage)
	}
}

func TestNonYAMLFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "README.md", "This mentions clippy and miri")
	writeWorkflow(t, dir, "ci.yml", "run: cargo test")
	usage, err := sniffGitHubWorkflows(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !usage.WorkflowsDetected || usage.ClippyDetected || usage.MiriDetected {
		t.Fatalf("got %+v", usage)
	}
}

func TestMultipleWorkflowFiles(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "clippy.yml", "run: cargo clippy")
	writeWorkflow(t, dir, "miri.yaml", "run: cargo miri test")
	writeWorkflow(t, dir, "test.yml", "run: cargo test")
	usage, err := sniffGitHubWorkflows(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !usage.WorkflowsDetected || !usage.ClippyDetected || !usage.MiriDetected {
		t.Fatalf("got %+v", usage)
	}
}

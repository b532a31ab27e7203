package codebase

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// maxWorkflowFiles caps the number of workflow files scanned per repo, so a
// pathological repo with thousands of generated workflow files can't make
// this scan unbounded.
const maxWorkflowFiles = 100

// sniffGitHubWorkflows detects whether GitHub Actions CI is configured and,
// if so, whether clippy and/or miri are mentioned anywhere in any workflow
// file (case-insensitive substring match, exits early once both are found).
func sniffGitHubWorkflows(repoPath string) (facts.GitHubWorkflowInfo, error) {
	var usage facts.GitHubWorkflowInfo

	workflowsDir := filepath.Join(repoPath, ".github", "workflows")
	if _, err := os.Stat(workflowsDir); os.IsNotExist(err) {
		return usage, nil
	}

	usage.WorkflowsDetected = true
	fileCount := 0

	err := filepath.WalkDir(workflowsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: walking %q: %v", facts.ErrIO, workflowsDir, err)
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}

		fileCount++
		if fileCount > maxWorkflowFiles {
			return fs.SkipAll
		}

		found, err := scanWorkflowFile(path, usage)
		if err != nil {
			return err
		}
		usage = found
		if usage.ClippyDetected && usage.MiriDetected {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return facts.GitHubWorkflowInfo{}, err
	}
	return usage, nil
}

func scanWorkflowFile(path string, usage facts.GitHubWorkflowInfo) (facts.GitHubWorkflowInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return usage, fmt.Errorf("%w: opening %q: %v", facts.ErrIO, path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		if !usage.MiriDetected && strings.Contains(line, "miri") {
			usage.MiriDetected = true
		}
		if !usage.ClippyDetected && strings.Contains(line, "clippy") {
			usage.ClippyDetected = true
		}
		if usage.MiriDetected && usage.ClippyDetected {
			break
		}
	}
	return usage, nil
}

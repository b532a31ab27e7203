package facts

import "time"

// LanguageLineCounts is a per-language production/test/comment line-count
// breakdown produced by the source-file analyzer.
type LanguageLineCounts struct {
	Language   string
	Production uint64
	Test       uint64
	Comment    uint64
}

// GitHubWorkflowInfo reports whether GitHub Actions CI is present and which
// of the two tracked tools (clippy, miri) are mentioned in workflow files.
type GitHubWorkflowInfo struct {
	WorkflowsDetected bool
	ClippyDetected    bool
	MiriDetected      bool
}

// GitLogStats summarizes commit history for a cloned repository mirror.
type GitLogStats struct {
	CommitCount       uint64
	CommitsLast90Days  uint64
	CommitsLast180Days uint64
	CommitsLast365Days uint64
	LastCommitAt       time.Time
	ContributorCount    uint64
}

// CodebaseData is the source-repo provider's per-repo output.
type CodebaseData struct {
	Timestamp    time.Time
	Languages    []LanguageLineCounts
	UnsafeTokens uint64
	ExampleCount uint64
	Workflows    GitHubWorkflowInfo
	GitLog       GitLogStats
}

package facts

// AdvisoryCounts tallies RustSec advisory matches by severity and by
// informational kind. YankedWarningCount is part of the data model per the
// original tool's schema but is never incremented by any scan path — it is
// always reported as zero (see DESIGN.md open question).
type AdvisoryCounts struct {
	LowCount      uint64
	MediumCount   uint64
	HighCount     uint64
	CriticalCount uint64

	NoticeCount        uint64
	UnmaintainedCount  uint64
	UnsoundCount       uint64
	YankedWarningCount uint64
}

// AdvisoryData is the advisory provider's per-crate output. Total counts
// every advisory matching the crate name regardless of whether the spec's
// concrete version is affected; PerVersion counts only those whose affected
// range contains the spec's version.
type AdvisoryData struct {
	Total      AdvisoryCounts
	PerVersion AdvisoryCounts
}

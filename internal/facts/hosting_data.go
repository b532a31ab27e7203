package facts

import "time"

// AgeStats summarizes the age distribution (in hours) of a set of events,
// such as open or closed issues.
type AgeStats struct {
	Avg uint32
	P50 uint32
	P75 uint32
	P90 uint32
	P95 uint32
}

// IssueStats summarizes open/closed counts and age distributions for either
// issues or pull requests on a repository.
type IssueStats struct {
	OpenCount   uint64
	ClosedCount uint64
	OpenAge     AgeStats
	ClosedAge   AgeStats
}

// TimeWindowStats counts events over fixed trailing windows plus an
// all-time total.
type TimeWindowStats struct {
	Last90Days  uint64
	Last180Days uint64
	Last365Days uint64
	Total       uint64
}

// HostingData is the code-host provider's per-repo output: repository
// popularity and activity signals plus issue/PR health.
type HostingData struct {
	Timestamp        time.Time
	Stars            uint64
	Forks            uint64
	Subscribers      uint64
	CommitsLast90Days uint64
	Issues           IssueStats
	Pulls            IssueStats
}

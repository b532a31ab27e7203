package facts

import "time"

// CrateVersionData is version-specific registry metadata: description,
// license, MSRV, edition, features, and the download counters scoped to one
// published version. Sourced from the versions relation.
type CrateVersionData struct {
	Description     string
	Homepage        string
	Documentation   string
	License         string
	RustVersion     string
	Edition         RustEdition
	Features        map[string][]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Yanked          bool
	Downloads       uint64
	MonthlyDownloads []MonthlyDownload
}

// CrateOverallData is version-independent registry metadata: ownership,
// categorization, and aggregate download/version counters for the crate as a
// whole. Sourced from a multi-table join across crates, categories,
// keywords, owners, users, teams, and the downloads relations.
type CrateOverallData struct {
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Repository         string
	Categories         []string
	Keywords           []string
	Owners             []Owner
	MonthlyDownloads    []MonthlyDownload
	Downloads           uint64
	Dependents          uint64
	VersionsLast90Days  uint64
}

// MonthlyDownload is one (month, count) aggregate point, sorted chronologically
// by the provider before being attached to either data struct above.
type MonthlyDownload struct {
	Month     time.Time // first day of month
	Downloads uint64
}

// CratesData bundles version-scoped and crate-scoped registry data for one
// resolved CrateSpec.
type CratesData struct {
	VersionData CrateVersionData
	OverallData CrateOverallData
}

package metrics

import (
	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// Extractor pulls one metric's value out of a CrateFacts record. It returns
// false when the underlying data is absent (provider result not Found, or
// the specific field the metric reports on was never populated).
type Extractor func(facts.CrateFacts) (Value, bool)

// Def is a statically registered metric definition: a stable dotted name,
// a human-readable description, a reporting category, and the extractor
// that knows how to pull it from a CrateFacts.
type Def struct {
	Name        string
	Description string
	Category    Category
	Extract     Extractor
}

func found[T any](r facts.ProviderResult[T]) (T, bool) { return r.AsFound() }

// DefaultDefs returns the static metric registry in a fixed order. Flatten
// invokes every entry's extractor in this order, so the output of Flatten
// always has the same length and the same metric at the same index across
// calls, whether or not the underlying data was found.
func DefaultDefs() []Def {
	return []Def{
		// metadata
		{"metadata.license", "SPDX license identifier", Metadata, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok || cd.VersionData.License == "" {
				return Value{}, false
			}
			return StringValue(cd.VersionData.License), true
		}},
		{"metadata.rust_edition", "Rust edition targeted by this version", Metadata, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return StringValue(cd.VersionData.Edition.String()), true
		}},
		{"metadata.rust_version", "Minimum supported Rust version declared by this version", Metadata, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok || cd.VersionData.RustVersion == "" {
				return Value{}, false
			}
			return StringValue(cd.VersionData.RustVersion), true
		}},
		{"metadata.yanked", "Whether this version has been yanked", Metadata, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return BoolValue(cd.VersionData.Yanked), true
		}},
		{"metadata.categories_count", "Number of registry categories this crate is filed under", Metadata, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(uint64(len(cd.OverallData.Categories))), true
		}},
		{"metadata.keywords_count", "Number of registry keywords attached to this crate", Metadata, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(uint64(len(cd.OverallData.Keywords))), true
		}},

		// stability
		{"stability.created_at", "Timestamp the crate was first published", Stability, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return DateTimeValue(cd.OverallData.CreatedAt), true
		}},
		{"stability.updated_at", "Timestamp of the crate's most recent publish", Stability, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return DateTimeValue(cd.OverallData.UpdatedAt), true
		}},
		{"stability.versions_last_90_days", "Versions published in the trailing 90 days", Stability, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cd.OverallData.VersionsLast90Days), true
		}},

		// usage
		{"usage.downloads_total", "All-time downloads across every version", Usage, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cd.OverallData.Downloads), true
		}},
		{"usage.downloads_this_version", "All-time downloads of this specific version", Usage, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cd.VersionData.Downloads), true
		}},
		{"usage.dependents", "Distinct crates depending on this one", Usage, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cd.OverallData.Dependents), true
		}},

		// community
		{"community.repo_stars", "GitHub stars on the linked repository", Community, func(f facts.CrateFacts) (Value, bool) {
			hd, ok := found(f.HostingData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(hd.Stars), true
		}},
		{"community.repo_forks", "GitHub forks on the linked repository", Community, func(f facts.CrateFacts) (Value, bool) {
			hd, ok := found(f.HostingData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(hd.Forks), true
		}},
		{"community.repo_subscribers", "GitHub watchers on the linked repository", Community, func(f facts.CrateFacts) (Value, bool) {
			hd, ok := found(f.HostingData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(hd.Subscribers), true
		}},
		{"community.owners_count", "Registry owners (users and teams) for this crate", Community, func(f facts.CrateFacts) (Value, bool) {
			cd, ok := found(f.CratesData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(uint64(len(cd.OverallData.Owners))), true
		}},

		// activity
		{"activity.commits_last_90_days", "Commits to the default branch in the trailing 90 days", Activity, func(f facts.CrateFacts) (Value, bool) {
			hd, ok := found(f.HostingData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(hd.CommitsLast90Days), true
		}},
		{"activity.issues_open_count", "Open issues on the linked repository", Activity, func(f facts.CrateFacts) (Value, bool) {
			hd, ok := found(f.HostingData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(hd.Issues.OpenCount), true
		}},
		{"activity.issues_closed_count", "Closed issues on the linked repository", Activity, func(f facts.CrateFacts) (Value, bool) {
			hd, ok := found(f.HostingData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(hd.Issues.ClosedCount), true
		}},
		{"activity.pulls_open_count", "Open pull requests on the linked repository", Activity, func(f facts.CrateFacts) (Value, bool) {
			hd, ok := found(f.HostingData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(hd.Pulls.OpenCount), true
		}},
		{"activity.last_commit_at", "Timestamp of the most recent commit in the cloned mirror", Activity, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok || cb.GitLog.LastCommitAt.IsZero() {
				return Value{}, false
			}
			return DateTimeValue(cb.GitLog.LastCommitAt), true
		}},
		{"activity.commits_last_365_days", "Commits in the trailing 365 days, from the cloned mirror", Activity, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cb.GitLog.CommitsLast365Days), true
		}},
		{"activity.contributor_count", "Distinct commit authors in the cloned mirror's log", Activity, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cb.GitLog.ContributorCount), true
		}},

		// documentation
		{"documentation.coverage_percentage", "Percentage of public API items with doc comments", Documentation, func(f facts.CrateFacts) (Value, bool) {
			dd, ok := found(f.DocsData)
			if !ok || dd.Metrics.Kind != facts.DocMetricsFound {
				return Value{}, false
			}
			return FloatValue(dd.Metrics.Metrics.DocCoveragePercentage), true
		}},
		{"documentation.public_api_elements", "Total public API items rustdoc identified", Documentation, func(f facts.CrateFacts) (Value, bool) {
			dd, ok := found(f.DocsData)
			if !ok || dd.Metrics.Kind != facts.DocMetricsFound {
				return Value{}, false
			}
			return UIntValue(dd.Metrics.Metrics.PublicAPIElements), true
		}},
		{"documentation.undocumented_elements", "Public API items with no doc comment", Documentation, func(f facts.CrateFacts) (Value, bool) {
			dd, ok := found(f.DocsData)
			if !ok || dd.Metrics.Kind != facts.DocMetricsFound {
				return Value{}, false
			}
			return UIntValue(dd.Metrics.Metrics.UndocumentedElements), true
		}},
		{"documentation.examples_in_docs", "Code examples embedded in doc comments", Documentation, func(f facts.CrateFacts) (Value, bool) {
			dd, ok := found(f.DocsData)
			if !ok || dd.Metrics.Kind != facts.DocMetricsFound {
				return Value{}, false
			}
			return UIntValue(dd.Metrics.Metrics.ExamplesInDocs), true
		}},
		{"documentation.has_crate_level_docs", "Whether the crate root has //! documentation", Documentation, func(f facts.CrateFacts) (Value, bool) {
			dd, ok := found(f.DocsData)
			if !ok || dd.Metrics.Kind != facts.DocMetricsFound {
				return Value{}, false
			}
			return BoolValue(dd.Metrics.Metrics.HasCrateLevelDocs), true
		}},
		{"documentation.broken_links", "Intra-doc links rustdoc could not resolve", Documentation, func(f facts.CrateFacts) (Value, bool) {
			dd, ok := found(f.DocsData)
			if !ok || dd.Metrics.Kind != facts.DocMetricsFound {
				return Value{}, false
			}
			return UIntValue(dd.Metrics.Metrics.BrokenLinks), true
		}},

		// trustworthiness
		{"trustworthiness.test_coverage_percentage", "Test coverage percentage reported by the badge service", Trustworthiness, func(f facts.CrateFacts) (Value, bool) {
			cov, ok := found(f.CoverageData)
			if !ok {
				return Value{}, false
			}
			return FloatValue(cov.Percentage), true
		}},
		{"trustworthiness.ci_detected", "Whether GitHub Actions workflows are present", Trustworthiness, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			return BoolValue(cb.Workflows.WorkflowsDetected), true
		}},
		{"trustworthiness.clippy_detected", "Whether CI runs clippy", Trustworthiness, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			return BoolValue(cb.Workflows.ClippyDetected), true
		}},
		{"trustworthiness.miri_detected", "Whether CI runs miri", Trustworthiness, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			return BoolValue(cb.Workflows.MiriDetected), true
		}},

		// codebase
		{"codebase.unsafe_token_count", "Occurrences of the unsafe keyword across source files", Codebase, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cb.UnsafeTokens), true
		}},
		{"codebase.example_count", "Files under an examples directory", Codebase, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(cb.ExampleCount), true
		}},
		{"codebase.production_lines", "Non-test, non-comment source lines across all languages", Codebase, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			var total uint64
			for _, l := range cb.Languages {
				total += l.Production
			}
			return UIntValue(total), true
		}},
		{"codebase.test_lines", "Test source lines across all languages", Codebase, func(f facts.CrateFacts) (Value, bool) {
			cb, ok := found(f.CodebaseData)
			if !ok {
				return Value{}, false
			}
			var total uint64
			for _, l := range cb.Languages {
				total += l.Test
			}
			return UIntValue(total), true
		}},

		// advisories
		{"advisories.total_high_count", "RustSec advisories affecting any version of this crate, High severity", Advisories, func(f facts.CrateFacts) (Value, bool) {
			ad, ok := found(f.AdvisoryData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(ad.Total.HighCount), true
		}},
		{"advisories.total_critical_count", "RustSec advisories affecting any version of this crate, Critical severity", Advisories, func(f facts.CrateFacts) (Value, bool) {
			ad, ok := found(f.AdvisoryData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(ad.Total.CriticalCount), true
		}},
		{"advisories.per_version_high_count", "RustSec advisories whose affected range includes this exact version, High severity", Advisories, func(f facts.CrateFacts) (Value, bool) {
			ad, ok := found(f.AdvisoryData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(ad.PerVersion.HighCount), true
		}},
		{"advisories.per_version_critical_count", "RustSec advisories whose affected range includes this exact version, Critical severity", Advisories, func(f facts.CrateFacts) (Value, bool) {
			ad, ok := found(f.AdvisoryData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(ad.PerVersion.CriticalCount), true
		}},
		{"advisories.unmaintained_count", "Advisories marking this crate unmaintained", Advisories, func(f facts.CrateFacts) (Value, bool) {
			ad, ok := found(f.AdvisoryData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(ad.Total.UnmaintainedCount), true
		}},
		{"advisories.unsound_count", "Advisories marking this crate unsound", Advisories, func(f facts.CrateFacts) (Value, bool) {
			ad, ok := found(f.AdvisoryData)
			if !ok {
				return Value{}, false
			}
			return UIntValue(ad.Total.UnsoundCount), true
		}},
	}
}

package facts

// DocMetrics is the parsed documentation coverage summary for one crate
// version.
type DocMetrics struct {
	DocCoveragePercentage float64
	PublicAPIElements     uint64
	UndocumentedElements  uint64
	ExamplesInDocs        uint64
	HasCrateLevelDocs     bool
	BrokenLinks           uint64
}

// DocMetricStateKind discriminates whether the documentation JSON parsed
// against a known rustdoc format version.
type DocMetricStateKind int

const (
	DocMetricsFound DocMetricStateKind = iota
	DocMetricsUnknownFormatVersion
)

// DocMetricState carries either a parsed DocMetrics or, if the rustdoc JSON
// format version is one this build doesn't understand, the unrecognized
// version number. Unknown format is not an error: the crate still appears in
// the pipeline and reporting surfaces the gap.
type DocMetricState struct {
	Kind           DocMetricStateKind
	Metrics        DocMetrics
	FormatVersion  uint32
}

// DocsData is the documentation provider's per-spec output.
type DocsData struct {
	Metrics DocMetricState
}

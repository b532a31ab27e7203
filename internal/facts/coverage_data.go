package facts

// CoverageData is the coverage provider's per-repo output: a single test
// coverage percentage extracted from a badge SVG.
type CoverageData struct {
	Percentage float64
}

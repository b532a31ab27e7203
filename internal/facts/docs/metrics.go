package docs

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// supportedFormatVersion is the rustdoc JSON output format this build
// understands. docs.rs bumps this whenever rustdoc's nightly JSON schema
// changes in an incompatible way; a crate built against a newer or older
// version still resolves (only a docs.rs 404, reported as CrateNotFound,
// counts as not found), it just carries DocMetricsUnknownFormatVersion instead of
// parsed metrics.
const supportedFormatVersion = 45

// rustdocItem is the subset of rustdoc's per-item JSON shape this build
// reads: enough to classify an item as public API and check whether it
// carries doc text.
type rustdocItem struct {
	Visibility string  `json:"visibility"`
	Docs       *string `json:"docs"`
}

type rustdocJSON struct {
	FormatVersion uint32                 `json:"format_version"`
	Root          string                 `json:"root"`
	Index         map[string]rustdocItem `json:"index"`
}

var codeFencePattern = regexp.MustCompile("(?m)^```")

// intraDocLinkPattern matches rustdoc's `[text](ref)` and `` [`text`](ref) ``
// link forms, where text is an identifier path; a bare `[text]` with no
// parenthesized target, and bare external URLs, never match this pattern.
var intraDocLinkPattern = regexp.MustCompile("\\[`?([A-Za-z_][A-Za-z0-9_:<>]*)`?\\]\\(([^)]*)\\)")

// calculateMetrics parses a decompressed rustdoc JSON document and computes
// the documentation coverage signals the engine needs. An unrecognized
// format_version is not an error: the caller reports it via
// DocMetricsUnknownFormatVersion so the rest of the pipeline still sees the
// crate.
func calculateMetrics(r io.Reader, spec facts.CrateSpec) (facts.DocMetricState, error) {
	var doc rustdocJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return facts.DocMetricState{}, fmt.Errorf("%w: decoding rustdoc JSON for %s: %v", facts.ErrParse, spec, err)
	}

	if doc.FormatVersion != supportedFormatVersion {
		return facts.DocMetricState{
			Kind:          facts.DocMetricsUnknownFormatVersion,
			FormatVersion: doc.FormatVersion,
		}, nil
	}

	var publicCount, undocumentedCount, examples, brokenLinks uint64
	for id, item := range doc.Index {
		if item.Visibility != "public" {
			continue
		}
		publicCount++

		docsText := ""
		if item.Docs != nil {
			docsText = *item.Docs
		}
		if strings.TrimSpace(docsText) == "" {
			undocumentedCount++
			continue
		}

		examples += uint64(len(codeFencePattern.FindAllString(docsText, -1)) / 2)
		for _, m := range intraDocLinkPattern.FindAllStringSubmatch(docsText, -1) {
			if _, ok := doc.Index[m[1]]; !ok && m[2] == "" {
				brokenLinks++
			}
		}
		_ = id
	}

	hasCrateDocs := false
	if root, ok := doc.Index[doc.Root]; ok && root.Docs != nil && strings.TrimSpace(*root.Docs) != "" {
		hasCrateDocs = true
	}

	var coverage float64
	if publicCount > 0 {
		coverage = float64(publicCount-undocumentedCount) / float64(publicCount) * 100
	}

	return facts.DocMetricState{
		Kind: facts.DocMetricsFound,
		Metrics: facts.DocMetrics{
			DocCoveragePercentage: coverage,
			PublicAPIElements:     publicCount,
			UndocumentedElements:  undocumentedCount,
			ExamplesInDocs:        examples,
			HasCrateLevelDocs:     hasCrateDocs,
			BrokenLinks:           brokenLinks,
		},
	}, nil
}

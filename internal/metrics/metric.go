// Package metrics flattens the rich, per-provider CrateFacts record into a
// flat, normalized set of named metrics suitable for expression evaluation
// and reporting. Metric definitions are statically registered in
// DefaultDefs; Flatten runs every extractor once, in registry order.
package metrics

import "github.com/vitaliisemenov/alert-history/internal/facts"

// Metric pairs a definition with the value (if any) its extractor produced
// for one CrateFacts record.
type Metric struct {
	Def     Def
	Value   Value
	Present bool
}

// Flatten runs every definition's extractor against facts, in registry
// order. The returned slice always has len(defs) entries; a Metric with
// Present == false carries no usable Value.
func Flatten(f facts.CrateFacts, defs []Def) []Metric {
	out := make([]Metric, len(defs))
	for i, def := range defs {
		v, ok := def.Extract(f)
		out[i] = Metric{Def: def, Value: v, Present: ok}
	}
	return out
}

// ByName indexes a flattened metric set by its definition name, for the
// expression engine's variable lookup.
func ByName(metrics []Metric) map[string]Metric {
	out := make(map[string]Metric, len(metrics))
	for _, m := range metrics {
		out[m.Def.Name] = m
	}
	return out
}

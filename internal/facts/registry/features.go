package registry

import "encoding/json"

// parseFeatures decodes the versions.features column, which crates.io
// stores as a JSON object mapping a feature name to the list of other
// features/dependencies it enables. A malformed or empty value yields an
// empty map rather than an error: features are descriptive metadata, not
// load-bearing for resolution.
func parseFeatures(raw string) map[string][]string {
	if raw == "" {
		return map[string][]string{}
	}
	var parsed map[string][]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return map[string][]string{}
	}
	return parsed
}

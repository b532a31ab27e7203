package tables

// field looks up a named CSV column within a decoded record using the
// header's column-name-to-index mapping. Missing columns decode as empty
// strings rather than erroring. because crates.io's dump format has added
// optional columns over time.
func field(record []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

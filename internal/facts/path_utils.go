package facts

import "strings"

// reservedPathChars are filesystem-reserved characters replaced with '_' in
// a sanitized path component.
const reservedPathChars = `/\:*?"<>|`

// SanitizePathComponent makes s safe to use as a single filesystem path
// component: ".." is replaced with "__" (defeats path traversal) and any
// reserved character is replaced with "_".
func SanitizePathComponent(s string) string {
	s = strings.ReplaceAll(s, "..", "__")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(reservedPathChars, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

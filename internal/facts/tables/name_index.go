package tables

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance bounds how far from the typed name a suggested
// crate name may be. Beyond this the match is considered noise.
const maxSuggestionDistance = 3

// maxSuggestions caps how many near-miss names are returned.
const maxSuggestions = 5

// NameIndex resolves a crate name to its row index, built once per run by
// scanning the crates table a single time.
type NameIndex struct {
	byName map[string]Index
	names  []string
}

// BuildNameIndex scans every row of the crates table once, recording each
// name's byte offset for O(1) exact lookups later.
func BuildNameIndex(crates *Table[CrateRow]) *NameIndex {
	idx := &NameIndex{
		byName: make(map[string]Index, crates.Len()),
		names:  make([]string, 0, crates.Len()),
	}
	for row, pos := range crates.All() {
		idx.byName[row.Name] = pos
		idx.names = append(idx.names, row.Name)
	}
	return idx
}

// Lookup returns the row offset for an exact, case-sensitive name match.
func (idx *NameIndex) Lookup(name string) (Index, bool) {
	pos, ok := idx.byName[name]
	return pos, ok
}

// Suggest returns up to maxSuggestions alphabetically-ordered crate names
// within maxSuggestionDistance edits of name, for use when an exact
// lookup misses. When more names qualify, the closest ones are kept, ties
// broken alphabetically.
func (idx *NameIndex) Suggest(name string) []string {
	type candidate struct {
		name     string
		distance int
	}
	var candidates []candidate
	for _, n := range idx.names {
		d := levenshtein.ComputeDistance(name, n)
		if d <= maxSuggestionDistance {
			candidates = append(candidates, candidate{n, d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	result := make([]string, len(candidates))
	for i, c := range candidates {
		result[i] = c.name
	}
	sort.Strings(result)
	return result
}

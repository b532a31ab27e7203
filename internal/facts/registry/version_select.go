package registry

import (
	"github.com/Masterminds/semver/v3"

	"github.com/vitaliisemenov/alert-history/internal/facts/tables"
)

// selectVersion resolves the version component of a crate lookup:
//   - an exact pinned version must match one of the crate's published
//     versions, or the lookup misses entirely;
//   - an unpinned lookup prefers the latest non-yanked, non-prerelease
//     ("stable") version; if the crate has published non-yanked versions but
//     every one of them is a prerelease, the latest non-yanked version
//     (prerelease included) is used instead of reporting nothing found;
//   - only when every version is yanked does the latest yanked version win.
func selectVersion(all []tables.VersionRow, want *semver.Version) (tables.VersionRow, bool) {
	if want != nil {
		for _, row := range all {
			if row.Num.Equal(want) {
				return row, true
			}
		}
		return tables.VersionRow{}, false
	}

	var bestStable, bestNonYanked, bestYanked *tables.VersionRow
	for i := range all {
		row := &all[i]
		if row.Yanked {
			if bestYanked == nil || row.Num.GreaterThan(bestYanked.Num) {
				bestYanked = row
			}
			continue
		}
		if bestNonYanked == nil || row.Num.GreaterThan(bestNonYanked.Num) {
			bestNonYanked = row
		}
		if row.Num.Prerelease() == "" && (bestStable == nil || row.Num.GreaterThan(bestStable.Num)) {
			bestStable = row
		}
	}

	switch {
	case bestStable != nil:
		return *bestStable, true
	case bestNonYanked != nil:
		return *bestNonYanked, true
	case bestYanked != nil:
		return *bestYanked, true
	default:
		return tables.VersionRow{}, false
	}
}

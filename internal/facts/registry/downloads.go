package registry

import (
	"sort"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// yearMonth keys a monthly download bucket. Using a struct instead of a
// truncated time.Time avoids any timezone-normalization surprises when
// bucketing daily rows into months.
type yearMonth struct {
	year  int
	month time.Month
}

// aggregateMonthly sums daily download counts into chronologically sorted
// (first-of-month, total) points.
func aggregateMonthly(dates []time.Time, counts []uint64) []facts.MonthlyDownload {
	totals := make(map[yearMonth]uint64, len(dates))
	for i, d := range dates {
		key := yearMonth{d.Year(), d.Month()}
		totals[key] += counts[i]
	}

	keys := make([]yearMonth, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	result := make([]facts.MonthlyDownload, len(keys))
	for i, k := range keys {
		result[i] = facts.MonthlyDownload{
			Month:     time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC),
			Downloads: totals[k],
		}
	}
	return result
}

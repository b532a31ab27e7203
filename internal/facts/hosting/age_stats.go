package hosting

import (
	"sort"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// computeAgeStats summarizes ages (each the time between an item's creation
// and either its close time or now) as hours. An empty slice yields the
// zero value, matching the Rust original's #[derive(Default)] AgeStats.
func computeAgeStats(ages []time.Duration) facts.AgeStats {
	if len(ages) == 0 {
		return facts.AgeStats{}
	}

	hours := make([]uint32, len(ages))
	var sum uint64
	for i, d := range ages {
		h := uint32(d.Hours())
		hours[i] = h
		sum += uint64(h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })

	return facts.AgeStats{
		Avg: uint32(sum / uint64(len(hours))),
		P50: percentile(hours, 0.50),
		P75: percentile(hours, 0.75),
		P90: percentile(hours, 0.90),
		P95: percentile(hours, 0.95),
	}
}

// percentile indexes into a slice already sorted ascending, using the
// nearest-rank method.
func percentile(sorted []uint32, p float64) uint32 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

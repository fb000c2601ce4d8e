package scheduling

import (
	"math/big"
	"sort"
	"time"
)

// PickRepresentative reduces ascending starts to at most maxCount values
// spread over the range. [earliest, latest] is split into maxCount equal
// bands and the earliest start of each non-empty band is kept. Empty bands
// are not backfilled, so fewer than maxCount values may be returned. Only
// fewer than maxCount starts are returned unchanged.
func PickRepresentative(starts []time.Time, maxCount int) []time.Time {
	out := make([]time.Time, 0, len(starts))
	if maxCount <= 0 || len(starts) < maxCount {
		return append(out, starts...)
	}

	sorted := append([]time.Time(nil), starts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	earliest := sorted[0]
	width := sorted[len(sorted)-1].Sub(earliest)
	if width <= 0 {
		return append(out, earliest)
	}

	lastBand := -1
	for _, s := range sorted {
		band := bandOf(s.Sub(earliest), width, maxCount)
		if band == lastBand {
			continue
		}
		out = append(out, s)
		lastBand = band
	}

	return out
}

// bandOf returns floor(offset*bands/width) clamped to bands-1, so the latest
// start lands in the last band. Computed exactly to avoid overflow on wide ranges.
func bandOf(offset, width time.Duration, bands int) int {
	num := new(big.Int).Mul(big.NewInt(int64(offset)), big.NewInt(int64(bands)))
	band := int(num.Quo(num, big.NewInt(int64(width))).Int64())
	if band >= bands {
		return bands - 1
	}
	return band
}

package compress

import "fmt"

// Tracker histograms how many lines filled at each compression factor,
// grounded on original_source/replacement/compression_tracker.h.
type Tracker struct {
	counts [MaxCompressibility]uint64
}

// Increment records one more line at the given compression factor
// (1, 2, or 4).
func (t *Tracker) Increment(factor int) {
	if factor != 1 && factor != 2 && factor != 4 {
		panic(fmt.Sprintf("compress: invalid compression factor %d", factor))
	}
	t.counts[factor-1]++
}

// Count returns the running total for the given compression factor.
func (t *Tracker) Count(factor int) uint64 {
	if factor < 1 || factor > MaxCompressibility {
		panic(fmt.Sprintf("compress: invalid compression factor %d", factor))
	}
	return t.counts[factor-1]
}

// String renders the same summary as CompressionTracker::print, labelling
// each line by its loop index i (the compression factor), not by
// count(i) — the original prints `count(i)` as the label, which
// spec.md §9 flags as almost certainly a bug.
func (t *Tracker) String() string {
	var total uint64
	for i := MaxCompressibility; i > 0; i /= 2 {
		total += t.Count(i)
	}

	out := ""
	var denom float64
	for i := MaxCompressibility; i > 0; i /= 2 {
		c := t.Count(i)
		ratio := 0.0
		if total > 0 {
			ratio = float64(c) / float64(total)
		}
		denom += float64(c) * (1.0 / float64(i))
		out += fmt.Sprintf("Compressible %d: %d (%.2f%%)\n", i, c, ratio*100.0)
	}

	benchComp := 0.0
	lineComp := 0.0
	if total > 0 && denom > 0 {
		benchComp = float64(total) / denom
		lineComp = float64(4*t.Count(4)+2*t.Count(2)+t.Count(1)) / float64(total)
	}

	out += fmt.Sprintf("Benchmark Compression Ratio: %.2f\n", benchComp)
	out += fmt.Sprintf("Average Line Compressibility: %.2f\n", lineComp)
	return out
}

// Package hawkeye implements the RRIP-based generator of spec.md §4.E:
// per-set insertion/aging state trained by the SHCT predictions, steering
// which way is evicted and how fast a filled way ages back towards
// eviction.
//
// Grounded on original_source/replacement/hawkeyegen_rrpv.h (the RRIP
// variant of HAWKEYEgen) and hawkeyegen.h (the LRU-stack variant, whose
// add_access overload resolution is spec.md §9's Open Question 3).
package hawkeye

import "github.com/llcsim/hawkeye/internal/invariant"

const (
	// RRPVMax is the saturating ceiling of the re-reference prediction
	// value (spec.md §3: "0..7").
	RRPVMax = 7
	// RRPVSaturated is the threshold the no-saturation aging guard
	// checks for before ageing every way.
	RRPVSaturated = 6
)

// Metadata describes the line currently occupying a way, used to detrain
// the PC that installed it when it is evicted early.
type Metadata struct {
	PC         uint64
	Prefetched bool
}

type wayState struct {
	valid    bool
	tag      uint64
	rrpv     uint8
	epoch    uint64
	metadata Metadata
}

// Generator holds one set's worth of RRIP state.
type Generator struct {
	ways []wayState

	access            uint64
	hit               uint64
	prefetchAccess    uint64
	redundantPrefetch uint64
}

// New allocates a generator for numWays ways, all initially invalid with
// maximal RRPV.
func New(numWays int) *Generator {
	g := &Generator{ways: make([]wayState, numWays)}
	for i := range g.ways {
		g.ways[i].rrpv = RRPVMax
	}
	return g
}

// RecordAccess counts one access of either kind against the set's
// cumulative totals, independent of whether it goes on to hit.
func (g *Generator) RecordAccess(isPrefetch bool) {
	if isPrefetch {
		g.prefetchAccess++
	} else {
		g.access++
	}
}

// CheckHit performs the linear tag scan of spec.md §4.E, returning the
// matching way index (or -1) and the epoch recorded for feedback
// purposes.
func (g *Generator) CheckHit(tag uint64, isPrefetch bool) (index int, feedbackEpoch uint64) {
	for i := range g.ways {
		if g.ways[i].valid && g.ways[i].tag == tag {
			if isPrefetch {
				g.redundantPrefetch++
			} else {
				g.hit++
			}
			return i, g.ways[i].epoch
		}
	}
	return -1, 0
}

// GetVictim prefers any invalid way, then any way at RRPVMax (a line
// inserted cache-averse); neither returns metadata. Failing that, it
// picks the maximum-RRPV way, returning its stored metadata so the
// controller can detrain the PC that loaded it.
func (g *Generator) GetVictim() (index int, detrainMeta Metadata, feedbackEpoch uint64) {
	invariant.Assertf(len(g.ways) > 0, "hawkeye generator has no ways")

	for i := range g.ways {
		if !g.ways[i].valid {
			return i, Metadata{}, 0
		}
	}

	for i := range g.ways {
		if g.ways[i].rrpv == RRPVMax {
			return i, Metadata{}, g.ways[i].epoch
		}
	}

	maxIdx := 0
	for i := range g.ways {
		if g.ways[i].rrpv > g.ways[maxIdx].rrpv {
			maxIdx = i
		}
	}
	return maxIdx, g.ways[maxIdx].metadata, g.ways[maxIdx].epoch
}

// Update implements the no-saturation RRIP insertion/aging rule of
// spec.md §4.E.
func (g *Generator) Update(index int, tag uint64, predictedCacheFriendly, isPrefetch bool, pc uint64, wasHit bool, epoch uint64) {
	w := &g.ways[index]

	if !predictedCacheFriendly {
		w.rrpv = RRPVMax
	} else {
		saturated := false
		for i := range g.ways {
			if g.ways[i].rrpv == RRPVSaturated {
				saturated = true
				break
			}
		}
		if !saturated {
			for i := range g.ways {
				if g.ways[i].rrpv < RRPVSaturated {
					g.ways[i].rrpv++
				}
			}
		}
		w.rrpv = 0
	}

	w.valid = true
	w.tag = tag
	w.epoch = epoch
	w.metadata.PC = pc
	if isPrefetch {
		w.metadata.Prefetched = true
	} else {
		w.metadata.Prefetched = false
	}
	_ = wasHit
}

// Invalidate clears a way, e.g. after an explicit invalidate() on the
// backing tag array.
func (g *Generator) Invalidate(index int) {
	g.ways[index] = wayState{rrpv: RRPVMax}
}

// Stats exposes the cumulative hit/access counters for reporting.
func (g *Generator) Stats() (access, hit, prefetchAccess, redundantPrefetch uint64) {
	return g.access, g.hit, g.prefetchAccess, g.redundantPrefetch
}

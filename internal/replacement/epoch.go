package replacement

import (
	"math"
	"sort"
)

// EpochLength is the number of demand accesses between threshold
// recomputations (spec.md §4.G: "Epoch = 256 accesses").
const EpochLength = 256

// EpochStats accumulates one epoch's worth of demand hit-rate history
// for a single core.
type EpochStats struct {
	Accesses uint64
	Hits     uint64
}

func (s *EpochStats) observe(hit bool) {
	s.Accesses++
	if hit {
		s.Hits++
	}
}

// meanSupplyLength approximates the mean distance between hits this
// core's demand stream delivered this epoch — a core with a low hit
// rate "supplies" itself rarely, so each hit is spaced far apart. A
// core with zero hits is treated as having unboundedly long supply, so
// it sorts first and receives the largest share of the threshold
// budget.
func (s *EpochStats) meanSupplyLength() float64 {
	if s.Hits == 0 {
		return math.Inf(1)
	}
	return float64(s.Accesses) / float64(s.Hits)
}

func (s *EpochStats) misses() uint64 { return s.Accesses - s.Hits }

// EpochController tracks per-core demand hit-rate histograms and
// recomputes each core's DynDP reuse-distance threshold every
// EpochLength accesses, per spec.md §4.G: sort cores by mean supply
// length, then apportion threshold budget — widening the window in
// which a demand→prefetch or prefetch→prefetch transition is allowed to
// train the prefetch SHCT — to the cores whose supply is weakest first,
// until the cumulative supply of already-apportioned cores would meet
// the epoch's total projected demand (misses).
type EpochController struct {
	numCPUs       int
	perCore       []EpochStats
	count         uint64
	dynThreshold  []uint64
	baseThreshold uint64
}

// NewEpochController allocates an epoch controller for numCPUs cores.
// baseThreshold is the reuse-distance cutoff MiddleDP uses outright
// (spec.md §4.G names it 5*NUM_CPUS).
func NewEpochController(numCPUs int) *EpochController {
	e := &EpochController{
		numCPUs:       numCPUs,
		perCore:       make([]EpochStats, numCPUs),
		baseThreshold: uint64(5 * numCPUs),
		dynThreshold:  make([]uint64, numCPUs),
	}
	for i := range e.dynThreshold {
		e.dynThreshold[i] = e.baseThreshold
	}
	return e
}

// Observe records one demand access's hit/miss outcome for cpu, rolling
// thresholds over once EpochLength accesses have been seen system-wide.
func (e *EpochController) Observe(cpu int, hit bool) {
	e.perCore[cpu].observe(hit)
	e.count++
	if e.count >= EpochLength {
		e.RecomputeThresholds()
		e.count = 0
	}
}

// RecomputeThresholds implements spec.md §4.G's per-epoch rollover: it
// snapshots every core's hits/accesses, sorts cores by mean supply
// length (longest first — the cores contributing least hit supply), and
// apportions a widening threshold multiplier to those cores until the
// hits already apportioned would cover the epoch's total misses. Cores
// reached after that point keep the base threshold.
func (e *EpochController) RecomputeThresholds() {
	type snapshot struct {
		cpu    int
		stats  EpochStats
		length float64
	}

	snaps := make([]snapshot, e.numCPUs)
	var totalDemand uint64
	for i := range e.perCore {
		snaps[i] = snapshot{cpu: i, stats: e.perCore[i], length: e.perCore[i].meanSupplyLength()}
		totalDemand += e.perCore[i].misses()
		e.perCore[i] = EpochStats{}
	}

	sort.Slice(snaps, func(a, b int) bool { return snaps[a].length > snaps[b].length })

	var cumulativeSupply uint64
	for _, snap := range snaps {
		mult := uint64(1)
		switch {
		case totalDemand == 0:
			mult = 1
		case cumulativeSupply >= totalDemand:
			mult = 1
		case snap.length >= 4:
			mult = 4
		case snap.length >= 2:
			mult = 2
		default:
			mult = 1
		}
		e.dynThreshold[snap.cpu] = e.baseThreshold * mult
		cumulativeSupply += snap.stats.Hits
	}
}

// MiddleThreshold returns the fixed reuse-distance cutoff MiddleDP uses,
// shared across every core per spec.md's "rd < 5*NUM_CPUS" rule.
func (e *EpochController) MiddleThreshold() uint64 { return e.baseThreshold }

// DynThreshold returns the epoch-adjusted reuse-distance cutoff DynDP
// uses for cpu.
func (e *EpochController) DynThreshold(cpu int) uint64 { return e.dynThreshold[cpu] }

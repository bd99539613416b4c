package replacement

import (
	"github.com/llcsim/hawkeye/internal/addr"
	"github.com/llcsim/hawkeye/internal/compress"
	"github.com/llcsim/hawkeye/internal/hawkeye"
	"github.com/llcsim/hawkeye/internal/optgen"
	"github.com/llcsim/hawkeye/internal/shct"
	"github.com/llcsim/hawkeye/internal/tagarray"
)

// Controller is the replacement machinery for one associative set: it
// owns the set's tag array, its auxiliary shadow array, its OPTgen
// oracle and its Hawkeye generator, and drives the seven-step pipeline
// of spec.md §4.G on every access. The two SHCT tables and the epoch
// controller are shared across every set of a cache and injected in.
type Controller struct {
	numWays int
	numSets uint64

	Tags *tagarray.Set
	Aux  *tagarray.Auxiliary

	oracle *optgen.Oracle
	gen    *hawkeye.Generator

	demandSHCT   *shct.Table
	prefetchSHCT *shct.Table
	epoch        *EpochController
	dpPolicy     DPPolicy

	history map[uint64]*optgen.AccessRecord
	quanta  uint64
}

// New allocates a set's replacement controller. demandSHCT, prefetchSHCT
// and epoch are typically shared across every set of the owning cache;
// oracle belongs to this set alone.
func New(numWays int, numSets uint64, oracle *optgen.Oracle, demandSHCT, prefetchSHCT *shct.Table, epoch *EpochController, dp DPPolicy) *Controller {
	return &Controller{
		numWays:      numWays,
		numSets:      numSets,
		Tags:         tagarray.NewSet(numWays, numSets),
		Aux:          tagarray.NewAuxiliary(numWays, numSets, 0, hawkeye.RRPVMax),
		oracle:       oracle,
		gen:          hawkeye.New(numWays),
		demandSHCT:   demandSHCT,
		prefetchSHCT: prefetchSHCT,
		epoch:        epoch,
		dpPolicy:     dp,
		history:      make(map[uint64]*optgen.AccessRecord),
	}
}

func train(t *shct.Table, pc uint64, shouldCache bool) {
	if shouldCache {
		t.Increment(pc)
	} else {
		t.Decrement(pc)
	}
}

// allowDP reports whether a demand→prefetch or prefetch→prefetch
// transition with the given reuse distance is allowed to train the
// prefetch SHCT, per spec.md §4.G's DPPolicy.
func (c *Controller) allowDP(cpu int, reuseDistance uint64) bool {
	switch c.dpPolicy {
	case NoDP:
		return false
	case AllDP:
		return true
	case MiddleDP:
		return reuseDistance < c.epoch.MiddleThreshold()
	case DynDP:
		return reuseDistance < c.epoch.DynThreshold(cpu)
	default:
		return false
	}
}

// trainFromPrevious implements step 3 of spec.md §4.G: using the
// previously recorded access to this line, query the oracle for whether
// Belady's MIN would have retained it, and steer the appropriate SHCT.
func (c *Controller) trainFromPrevious(cpu int, prev *optgen.AccessRecord, curr uint64, currPrefetch bool, cf int, sbTag uint64) bool {
	shouldCache := c.oracle.ShouldCache(curr, prev.LastQuanta, currPrefetch, cf, sbTag)

	switch {
	case !prev.Prefetched && !currPrefetch: // demand -> demand
		train(c.demandSHCT, prev.PC, shouldCache)
	case prev.Prefetched && !currPrefetch: // prefetch -> demand
		train(c.prefetchSHCT, prev.PC, shouldCache)
	default: // demand -> prefetch, or prefetch -> prefetch
		if c.allowDP(cpu, curr-prev.LastQuanta) {
			train(c.prefetchSHCT, prev.PC, shouldCache)
		}
	}

	return shouldCache
}

// predict implements step 4: look up the SHCT prediction for pc, using
// the demand or prefetch table depending on the current access's type.
func (c *Controller) predict(pc uint64, isPrefetch bool) bool {
	if isPrefetch {
		return c.prefetchSHCT.GetPrediction(pc)
	}
	return c.demandSHCT.GetPrediction(pc)
}

// detrain decrements the SHCT entry belonging to a way's resident line
// when it is evicted before hitting again, per spec.md §4.E's detrain
// step: the predictor that said "keep this" was wrong.
func (c *Controller) detrain(meta hawkeye.Metadata) {
	if meta.PC == 0 {
		return
	}
	if meta.Prefetched {
		c.prefetchSHCT.Decrement(meta.PC)
	} else {
		c.demandSHCT.Decrement(meta.PC)
	}
}

// Access runs the full per-access pipeline of spec.md §4.G: tag lookup,
// OPTgen training from history, SHCT prediction, victim selection via
// Hawkeye, and (on a miss) fill. payload/compressedSize are only
// consulted on a miss, since a hit needs neither.
func (c *Controller) Access(ac Access, payload [64]byte, compressedSize int, wq tagarray.WriteQueue) Outcome {
	c.quanta++
	curr := c.quanta

	line := addr.Line(ac.FullAddr)
	sbTag := addr.SBTag(ac.FullAddr, c.numSets)
	isPrefetch := ac.Type.IsPrefetch()

	c.gen.RecordAccess(isPrefetch)

	way, slot, hit := c.Tags.Lookup(ac.FullAddr)

	cf := 1
	if hit {
		cf = c.Tags.Ways[way].CompressionFactor
	} else {
		cf = compress.Factor(compressedSize)
	}

	if prev, ok := c.history[line]; ok && prev.Valid {
		c.trainFromPrevious(ac.CPU, prev, curr, isPrefetch, cf, sbTag)
	} else {
		c.oracle.AddAccess(curr, isPrefetch)
	}

	predictedFriendly := c.predict(ac.PC, isPrefetch)

	if c.epoch != nil && !isPrefetch {
		c.epoch.Observe(ac.CPU, hit)
	}

	out := Outcome{Hit: hit, Way: way, Slot: slot, PredictedFriendly: predictedFriendly}

	if hit {
		c.gen.CheckHit(sbTag, isPrefetch)
		c.gen.Update(way, sbTag, predictedFriendly, isPrefetch, ac.PC, true, curr)
		c.history[line] = &optgen.AccessRecord{
			FullAddr: ac.FullAddr, LastQuanta: curr, PC: ac.PC,
			Prefetched: isPrefetch, LastPrediction: predictedFriendly, Valid: true,
		}
		return out
	}

	out.NeedsFill = true

	victimWay, victimSlot := c.Tags.FindVictim(cf, ac.FullAddr, func() int {
		idx, meta, _ := c.gen.GetVictim()
		c.detrain(meta)
		return idx
	})

	if victimSlot == tagarray.EvictAll {
		if !c.Tags.Evict(victimWay, tagarray.EvictAll, wq) {
			out.Stalled = true
			return out
		}
		c.Aux.Evict(victimWay, tagarray.EvictAll)
		victimSlot = 0
	}

	c.Tags.Fill(victimWay, victimSlot, ac.FullAddr, payload, compressedSize, cf, ac.CPU, ac.InstrID, isPrefetch)
	c.Aux.Fill(victimWay, victimSlot, ac.FullAddr, compressedSize, compress.Factor)
	c.gen.Update(victimWay, sbTag, predictedFriendly, isPrefetch, ac.PC, false, curr)

	out.Way, out.Slot = victimWay, victimSlot

	c.history[line] = &optgen.AccessRecord{
		FullAddr: ac.FullAddr, LastQuanta: curr, PC: ac.PC,
		Prefetched: isPrefetch, LastPrediction: predictedFriendly, Valid: true,
	}

	return out
}

// Invalidate evicts a line (if present) and clears its Hawkeye and
// history state.
func (c *Controller) Invalidate(fullAddr uint64, wq tagarray.WriteQueue) bool {
	way, _, ok := c.Tags.Lookup(fullAddr)
	if !ok {
		return true
	}
	if !c.Tags.Invalidate(fullAddr, wq) {
		return false
	}
	c.Aux.Evict(way, tagarray.EvictAll)
	c.gen.Invalidate(way)
	delete(c.history, addr.Line(fullAddr))
	return true
}

// Stats exposes the set's Hawkeye generator counters for reporting.
func (c *Controller) Stats() (access, hit, prefetchAccess, redundantPrefetch uint64) {
	return c.gen.Stats()
}

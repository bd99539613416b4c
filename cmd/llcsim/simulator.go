package main

import (
	"fmt"
	"os"

	"github.com/llcsim/hawkeye/internal/addr"
	"github.com/llcsim/hawkeye/internal/llc"
	"github.com/llcsim/hawkeye/internal/optgen"
	"github.com/llcsim/hawkeye/internal/replacement"
	"github.com/llcsim/hawkeye/internal/shct"
	"github.com/llcsim/hawkeye/internal/simconfig"
	"github.com/llcsim/hawkeye/internal/stats"
	"github.com/llcsim/hawkeye/internal/trace"
)

// amcSets and amcWays are the AMC's geometry when this driver exercises
// it on behalf of the (unmodelled) prefetcher — spec.md names the AMC
// optional when no prefetcher is simulated, but a small fixed instance
// still gets exercised by every PREFETCH record the trace contains.
const (
	amcSets = 64
	amcWays = 4
)

// simulator owns one cache instance wired up per cfg, and drives it from
// a trace one record at a time.
type simulator struct {
	cfg   simconfig.Config
	cache *llc.Cache
	mem   *memory
	sink  *sink

	sets []*replacement.Controller

	cycle     uint64
	exhausted bool

	structuralIDs    map[uint64]uint64
	nextStructuralID uint64
}

func newSimulator(cfg simconfig.Config) *simulator {
	demandSHCT := shct.New()
	prefetchSHCT := shct.New()
	epoch := replacement.NewEpochController(cfg.NumCPUs)

	sets := make([]*replacement.Controller, cfg.NumSets)
	for i := range sets {
		sets[i] = replacement.New(cfg.NumWays, cfg.NumSets, newOracle(cfg), demandSHCT, prefetchSHCT, epoch, cfg.DPPolicyValue())
	}

	s := &simulator{cfg: cfg, structuralIDs: make(map[uint64]uint64)}
	s.mem = newMemory(memoryLatency, &s.cycle)
	s.sink = newSink()

	s.cache = llc.New(llc.Config{
		NumSets:           cfg.NumSets,
		NumWays:           cfg.NumWays,
		OptgenCapacity:    cfg.OptgenCapacity,
		DPPolicy:          cfg.DPPolicyValue(),
		NumCPUs:           cfg.NumCPUs,
		BandwidthPerCycle: cfg.BandwidthPerCycle,
	}, cfg.MSHRSize, cfg.RQSize, cfg.WQSize, cfg.PQSize, amcSets, amcWays, cfg.TLBSync, s.mem, s.sink, s.sink)

	s.mem.attach(s.cache)
	s.cache.AttachSets(sets)
	s.sets = sets

	return s
}

// newOracle builds the per-set OPTgen oracle cfg selects. Every set gets
// its own independent oracle; only the SHCT tables and epoch controller
// are shared across a cache's sets.
func newOracle(cfg simconfig.Config) *optgen.Oracle {
	liveLines := uint32(cfg.NumWays * 4) // up to 4 compressed lines per way
	switch cfg.OptgenVariant {
	case "demand":
		return optgen.NewOracle(cfg.OptgenCapacity, liveLines)
	case "size_aware":
		return optgen.NewSizeAwareOracle(cfg.OptgenCapacity, liveLines)
	case "yacc":
		return optgen.NewYACCOracle(cfg.NumWays)
	default:
		panic(fmt.Sprintf("llcsim: unknown optgen variant %q reached newOracle", cfg.OptgenVariant))
	}
}

// step advances the simulation by one cycle, injecting the trace's next
// record if one is available. It returns false once the trace is
// exhausted and every in-flight request has drained.
func (s *simulator) step(r *trace.Reader) bool {
	if !s.exhausted {
		rec, ok, err := r.Next()
		switch {
		case err != nil:
			fmt.Fprintln(os.Stderr, "error:", err)
			s.exhausted = true
		case !ok:
			s.exhausted = true
		default:
			s.inject(rec)
		}
	}

	s.cycle++
	s.mem.Operate()
	s.cache.Operate()

	return !(s.exhausted && s.idle())
}

func (s *simulator) inject(rec trace.Record) {
	p := llc.Packet{
		CPU: rec.CPU, PC: rec.PC, Address: addr.Line(rec.FullAddr), FullAddr: rec.FullAddr,
		Type: rec.Type, FillLevel: llc.IsLLC, EventCycle: s.cycle,
	}

	switch rec.Type {
	case replacement.Writeback:
		s.cache.AddWQ(p)
	case replacement.Prefetch:
		if s.cache.AddPQ(p) {
			s.noteStructural(rec.FullAddr)
		}
	default:
		s.cache.AddRQ(p)
	}
}

// noteStructural assigns this line a dense structural identifier the
// first time it is prefetched and records the translation in the AMC,
// standing in for the address-assignment a real prefetcher would do.
func (s *simulator) noteStructural(fullAddr uint64) {
	line := addr.Line(fullAddr)
	id, ok := s.structuralIDs[line]
	if !ok {
		id = s.nextStructuralID
		s.nextStructuralID++
		s.structuralIDs[line] = id
	}
	s.cache.NotePrefetchTranslation(line, id)
}

func (s *simulator) idle() bool {
	for _, q := range []llc.QueueID{llc.MSHR, llc.RQ, llc.WQ, llc.PQ} {
		if s.cache.GetOccupancy(q, 0) > 0 {
			return false
		}
	}
	return len(s.mem.pending) == 0
}

// counters gathers every set's Hawkeye generator stats, the cache's
// queue stall counters, and the AMC's eviction counters into one report.
func (s *simulator) counters() stats.Counters {
	var c stats.Counters

	for _, set := range s.sets {
		access, hit, prefetchAccess, redundantPrefetch := set.Stats()
		c.Add(stats.Counters{
			Access: access, Hit: hit,
			PrefetchAccess: prefetchAccess, RedundantPrefetch: redundantPrefetch,
		})
	}

	c.StallRQ, c.StallWQ, c.StallPQ = s.cache.QueueStats()
	c.AMCPSEvictions, c.AMCSPEvictions = s.cache.AMCEvictions()

	return c
}

package llc

import (
	"github.com/llcsim/hawkeye/internal/addr"
	"github.com/llcsim/hawkeye/internal/amc"
	"github.com/llcsim/hawkeye/internal/compress"
	"github.com/llcsim/hawkeye/internal/replacement"
	"github.com/llcsim/hawkeye/internal/tagarray"
)

// Downstream is the lower-level cache a miss is sent to, per spec.md §6.
type Downstream interface {
	AddRQ(Packet) bool
	AddWQ(Packet) bool
	AddPQ(Packet) bool
	GetOccupancy(queue QueueID, addr uint64) int
	GetSize(queue QueueID, addr uint64) int
	IncrementWQFull(addr uint64)
}

// Upstream is a CPU-side cache (per-core, instruction or data side) a
// completed fill is returned to, per spec.md §6.
type Upstream interface {
	ReturnData(Packet)
}

// Stall is an error value naming why a request could not make progress
// this cycle (a full queue, or a writeback that could not be enqueued
// downstream). No path in this package returns it: a full queue is
// reported by AddRQ/AddWQ/AddPQ returning false and counted in
// QueueStats, and handle re-enqueues a request it could not issue.
type Stall struct{ Reason string }

func (s Stall) Error() string { return "llc: stalled: " + s.Reason }

// Config is the geometry and policy knobs Cache needs at construction.
type Config struct {
	NumSets        uint64
	NumWays        int
	OptgenCapacity int
	DPPolicy       replacement.DPPolicy
	NumCPUs        int
	BandwidthPerCycle int
}

// Cache is the top-level compressed LLC controller of spec.md §4.I. It
// owns one replacement.Controller per set, the four request queues, and
// (optionally) an AMC for a prefetcher riding alongside it.
type Cache struct {
	cfg Config

	sets []*replacement.Controller
	amc  *amc.Map

	mshr *Queue
	rq   *Queue
	wq   *Queue
	pq   *Queue

	downstream Downstream
	dataSide   Upstream
	instrSide  Upstream

	cycle uint64

	stallRQ, stallWQ, stallPQ uint64

	tracker compress.Tracker
}

// writeQueueAdapter lets a replacement.Controller enqueue a writeback
// directly into this cache's WQ, implementing tagarray.WriteQueue.
type writeQueueAdapter struct{ c *Cache }

func (w writeQueueAdapter) Enqueue(fullAddr uint64, payload [64]byte, cpu int) bool {
	return w.wq().Add(Packet{
		CPU: cpu, Address: addr.Line(fullAddr), FullAddr: fullAddr,
		Type: replacement.Writeback, Data: payload, EventCycle: w.c.cycle,
	})
}
func (w writeQueueAdapter) wq() *Queue { return w.c.wq }

// New allocates a Cache with the given geometry. An AMC is attached only
// when amcSets > 0.
func New(cfg Config, mshrCap, rqCap, wqCap, pqCap int, amcSets, amcWays int, amcTLBSync bool, downstream Downstream, dataSide, instrSide Upstream) *Cache {
	c := &Cache{
		cfg:        cfg,
		mshr:       NewQueue(MSHR, mshrCap, true),
		rq:         NewQueue(RQ, rqCap, false),
		wq:         NewQueue(WQ, wqCap, false),
		pq:         NewQueue(PQ, pqCap, false),
		downstream: downstream,
		dataSide:   dataSide,
		instrSide:  instrSide,
	}
	if amcSets > 0 {
		c.amc = amc.New(amcSets, amcWays, amcTLBSync)
	}
	return c
}

// AttachSets installs the per-set replacement controllers. Kept separate
// from New so cmd/llcsim can build the shared SHCT tables and epoch
// controller first, then wire them into every set uniformly.
func (c *Cache) AttachSets(sets []*replacement.Controller) { c.sets = sets }

func (c *Cache) setFor(fullAddr uint64) *replacement.Controller {
	setMask := addr.SetMaskFor(c.cfg.NumSets)
	idx := addr.SetCC(fullAddr, setMask)
	return c.sets[idx]
}

// AddRQ enqueues a read (load/RFO) request.
func (c *Cache) AddRQ(p Packet) bool {
	if !c.rq.Add(p) {
		c.stallRQ++
		return false
	}
	return true
}

// AddWQ enqueues a writeback request.
func (c *Cache) AddWQ(p Packet) bool {
	if !c.wq.Add(p) {
		c.stallWQ++
		c.downstream.IncrementWQFull(p.Address)
		return false
	}
	return true
}

// AddPQ enqueues a prefetch request.
func (c *Cache) AddPQ(p Packet) bool {
	if !c.pq.Add(p) {
		c.stallPQ++
		return false
	}
	return true
}

// GetOccupancy reports the named queue's current occupancy.
func (c *Cache) GetOccupancy(queue QueueID, _ uint64) int { return c.queueByID(queue).Occupancy() }

// GetSize reports the named queue's capacity.
func (c *Cache) GetSize(queue QueueID, _ uint64) int { return c.queueByID(queue).Size() }

func (c *Cache) queueByID(id QueueID) *Queue {
	switch id {
	case MSHR:
		return c.mshr
	case RQ:
		return c.rq
	case WQ:
		return c.wq
	case PQ:
		return c.pq
	default:
		panic("llc: unknown queue id")
	}
}

// IncrementWQFull is invoked by an upstream cache when this cache's WQ
// rejected a writeback; it exists to satisfy Downstream symmetrically
// (this cache itself has no further upstream WQ-full counter to bump).
func (c *Cache) IncrementWQFull(uint64) {}

// ReturnData completes a fill that was fetched from downstream: the
// packet now carries real data, and can be installed into the set.
func (c *Cache) ReturnData(p Packet) {
	if _, ok := c.mshr.RemoveByLine(p.Address); !ok {
		return
	}
	c.install(p)
}

// install runs the replacement pipeline for a packet whose data is
// ready (either a same-cycle hit or a completed downstream fill).
func (c *Cache) install(p Packet) {
	ctrl := c.setFor(p.FullAddr)
	compressedSize := compress.EstimateForFill(p.Data[:])

	out := ctrl.Access(replacement.Access{
		CPU: p.CPU, PC: p.PC, FullAddr: p.FullAddr, Type: p.Type, InstrID: p.InstrID,
	}, p.Data, compressedSize, writeQueueAdapter{c})

	if out.Stalled {
		return
	}

	if out.NeedsFill {
		c.tracker.Increment(compress.Factor(compressedSize))
	}

	p.Returned = true
	if p.FillLevel&IsL1I != 0 && c.instrSide != nil {
		c.instrSide.ReturnData(p)
	} else if c.dataSide != nil {
		c.dataSide.ReturnData(p)
	}
}

// Operate advances the cache by one simulated cycle: it drains WQ, RQ
// and PQ (in that priority order, matching the teacher's writeback-first
// drain discipline) up to BandwidthPerCycle requests total, issuing a
// downstream fetch through the MSHR on a miss and completing same-cycle
// fills directly.
func (c *Cache) Operate() {
	c.cycle++
	budget := c.cfg.BandwidthPerCycle
	if budget <= 0 {
		budget = 1
	}

	for _, q := range []*Queue{c.wq, c.rq, c.pq} {
		for budget > 0 {
			p, ok := q.Peek()
			if !ok || p.EventCycle > c.cycle {
				break
			}
			q.Pop()
			budget--
			c.handle(p, q)
		}
	}
}

// handle processes one packet already popped from its source queue. If
// it cannot make progress (MSHR full, or downstream refuses the fetch),
// it is pushed back onto its own queue so Operate retries it next cycle
// — the caller already charged the cycle's bandwidth for the attempt.
func (c *Cache) handle(p Packet, source *Queue) {
	if p.Type == replacement.Writeback {
		if !c.downstream.AddWQ(p) {
			p.EventCycle = c.cycle + 1
			source.Add(p)
		}
		return
	}

	_, _, hit := c.setFor(p.FullAddr).Tags.Lookup(p.FullAddr)
	if hit {
		c.install(p)
		return
	}

	alreadyInFlight := c.mshr.Has(p.Address)
	if !c.mshr.Add(p) {
		p.EventCycle = c.cycle + 1
		source.Add(p)
		return
	}
	if alreadyInFlight {
		return // merged into an in-flight fetch; no second downstream request needed
	}

	sendDownstream := c.downstream.AddRQ
	if source.ID() == PQ {
		sendDownstream = c.downstream.AddPQ
	}
	if !sendDownstream(p) {
		c.mshr.RemoveByLine(p.Address)
		p.EventCycle = c.cycle + 1
		source.Add(p)
	}
}

// QueueStats reports the cumulative count of enqueue attempts each queue
// has rejected for being full, per spec.md §7's STALL accounting.
func (c *Cache) QueueStats() (stallRQ, stallWQ, stallPQ uint64) {
	return c.stallRQ, c.stallWQ, c.stallPQ
}

// NotePrefetchTranslation records a physical→structural mapping in the
// attached AMC, if one is attached. This cache does not generate
// prefetches itself (spec.md treats the prefetcher as adjacent
// machinery); a caller driving its own prefetch logic feeds the
// translations it discovers through here.
func (c *Cache) NotePrefetchTranslation(phy, str uint64) {
	if c.amc != nil {
		c.amc.Update(phy, str)
	}
}

// AMCEvictions reports the attached AMC's cumulative PS/SP eviction
// counters, or (0, 0) when no AMC is attached.
func (c *Cache) AMCEvictions() (ps, sp uint64) {
	if c.amc == nil {
		return 0, 0
	}
	return c.amc.Evictions()
}

// CompressionSummary renders the per-factor fill histogram the cache has
// accumulated, in the same shape as original_source's
// CompressionTracker::print.
func (c *Cache) CompressionSummary() string { return c.tracker.String() }

var _ tagarray.WriteQueue = writeQueueAdapter{}

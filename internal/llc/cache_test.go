package llc_test

import (
	"testing"

	"github.com/llcsim/hawkeye/internal/llc"
	"github.com/llcsim/hawkeye/internal/optgen"
	"github.com/llcsim/hawkeye/internal/replacement"
	"github.com/llcsim/hawkeye/internal/shct"
)

type fakeDownstream struct {
	fetched    []llc.Packet
	written    []llc.Packet
	prefetched []llc.Packet
	reject     bool
}

func (f *fakeDownstream) AddRQ(p llc.Packet) bool {
	if f.reject {
		return false
	}
	f.fetched = append(f.fetched, p)
	return true
}
func (f *fakeDownstream) AddWQ(p llc.Packet) bool {
	if f.reject {
		return false
	}
	f.written = append(f.written, p)
	return true
}
func (f *fakeDownstream) AddPQ(p llc.Packet) bool {
	if f.reject {
		return false
	}
	f.prefetched = append(f.prefetched, p)
	return true
}
func (f *fakeDownstream) GetOccupancy(llc.QueueID, uint64) int { return 0 }
func (f *fakeDownstream) GetSize(llc.QueueID, uint64) int      { return 0 }
func (f *fakeDownstream) IncrementWQFull(uint64)               {}

type fakeUpstream struct {
	returned []llc.Packet
}

func (u *fakeUpstream) ReturnData(p llc.Packet) { u.returned = append(u.returned, p) }

func newTestCache(numSets uint64, numWays int, down llc.Downstream, up llc.Upstream) *llc.Cache {
	cfg := llc.Config{NumSets: numSets, NumWays: numWays, OptgenCapacity: 4096, DPPolicy: replacement.AllDP, NumCPUs: 1, BandwidthPerCycle: 4}
	c := llc.New(cfg, 16, 16, 16, 16, 0, 0, false, down, up, up)

	demandSHCT, prefetchSHCT := shct.New(), shct.New()
	epoch := replacement.NewEpochController(1)
	sets := make([]*replacement.Controller, numSets)
	for i := range sets {
		oracle := optgen.NewOracle(cfg.OptgenCapacity, uint32(numWays))
		sets[i] = replacement.New(numWays, numSets, oracle, demandSHCT, prefetchSHCT, epoch, replacement.AllDP)
	}
	c.AttachSets(sets)
	return c
}

func Test_AddRQ_MissIssuesDownstreamFetch(t *testing.T) {
	t.Parallel()

	down := &fakeDownstream{}
	up := &fakeUpstream{}
	c := newTestCache(1, 4, down, up)

	c.AddRQ(llc.Packet{CPU: 0, PC: 1, Address: 1, FullAddr: 1 << 6, Type: replacement.Load})
	c.Operate()

	if len(down.fetched) != 1 {
		t.Fatalf("got %d downstream fetches, want 1", len(down.fetched))
	}
}

func Test_ReturnData_CompletesFillAndNotifiesUpstream(t *testing.T) {
	t.Parallel()

	down := &fakeDownstream{}
	up := &fakeUpstream{}
	c := newTestCache(1, 4, down, up)

	full := uint64(1) << 6
	c.AddRQ(llc.Packet{CPU: 0, PC: 1, Address: 1, FullAddr: full, Type: replacement.Load, FillLevel: llc.IsL1D})
	c.Operate()

	c.ReturnData(llc.Packet{CPU: 0, PC: 1, Address: 1, FullAddr: full, Type: replacement.Load, FillLevel: llc.IsL1D})

	if len(up.returned) != 1 {
		t.Fatalf("got %d upstream returns, want 1", len(up.returned))
	}
	if !up.returned[0].Returned {
		t.Error("returned packet should have Returned = true")
	}
}

func Test_SecondRequestForSameLine_MergesIntoMSHR(t *testing.T) {
	t.Parallel()

	down := &fakeDownstream{}
	up := &fakeUpstream{}
	c := newTestCache(1, 4, down, up)

	full := uint64(1) << 6
	c.AddRQ(llc.Packet{CPU: 0, PC: 1, Address: 1, FullAddr: full, Type: replacement.Load})
	c.AddRQ(llc.Packet{CPU: 0, PC: 2, Address: 1, FullAddr: full, Type: replacement.Load})
	c.Operate()
	c.Operate()

	if len(down.fetched) != 1 {
		t.Fatalf("got %d downstream fetches for the same line, want 1 (MSHR should merge the second)", len(down.fetched))
	}
}

func Test_Writeback_ForwardsDownstreamInsteadOfRefilling(t *testing.T) {
	t.Parallel()

	down := &fakeDownstream{}
	up := &fakeUpstream{}
	c := newTestCache(1, 4, down, up)

	full := uint64(1) << 6
	c.AddWQ(llc.Packet{CPU: 0, Address: 1, FullAddr: full, Type: replacement.Writeback})
	c.Operate()

	if len(down.written) != 1 {
		t.Fatalf("got %d downstream writebacks, want 1", len(down.written))
	}
	if len(down.fetched) != 0 {
		t.Fatalf("writeback should never issue a downstream read fetch, got %d", len(down.fetched))
	}
	if len(up.returned) != 0 {
		t.Fatalf("writeback should never be installed into the set or returned upstream, got %d returns", len(up.returned))
	}
}

func Test_PrefetchMiss_UsesDownstreamPQNotRQ(t *testing.T) {
	t.Parallel()

	down := &fakeDownstream{}
	up := &fakeUpstream{}
	c := newTestCache(1, 4, down, up)

	c.AddPQ(llc.Packet{CPU: 0, Address: 1, FullAddr: 1 << 6, Type: replacement.Prefetch})
	c.Operate()

	if len(down.prefetched) != 1 {
		t.Fatalf("got %d downstream PQ fetches, want 1", len(down.prefetched))
	}
	if len(down.fetched) != 0 {
		t.Fatalf("a PQ miss should never be issued as a downstream RQ fetch, got %d", len(down.fetched))
	}
}

func Test_Queue_Occupancy_ReflectsPendingRequests(t *testing.T) {
	t.Parallel()

	c := newTestCache(1, 4, &fakeDownstream{}, &fakeUpstream{})
	c.AddRQ(llc.Packet{Address: 1, FullAddr: 1 << 6})

	if got := c.GetOccupancy(llc.RQ, 0); got != 1 {
		t.Errorf("RQ occupancy = %d, want 1", got)
	}
}

package main

import "github.com/llcsim/hawkeye/internal/llc"

// memoryLatency is the fixed round trip a miss takes to come back from
// everything below the LLC. DRAM timing is explicitly out of scope; this
// is just enough to exercise the MSHR fill path with a nonzero delay.
const memoryLatency = 120

// memory stands in for the rest of the hierarchy below the LLC: every
// fetch it accepts completes memoryLatency cycles later, at which point
// it fills the result straight back into the cache that issued it.
type memory struct {
	latency uint64
	cycle   *uint64
	cache   *llc.Cache
	pending []llc.Packet
}

func newMemory(latency uint64, cycle *uint64) *memory {
	return &memory{latency: latency, cycle: cycle}
}

// attach wires the cache this memory fills back into. Kept separate from
// newMemory so the cache and its downstream can be constructed in either
// order.
func (m *memory) attach(c *llc.Cache) { m.cache = c }

func (m *memory) AddRQ(p llc.Packet) bool {
	p.EventCycle = *m.cycle + m.latency
	m.pending = append(m.pending, p)
	return true
}

// AddWQ accepts every writeback unconditionally: nothing below the LLC
// is modelled closely enough to ever need to read it back.
func (m *memory) AddWQ(llc.Packet) bool { return true }

func (m *memory) AddPQ(p llc.Packet) bool { return m.AddRQ(p) }

func (m *memory) GetOccupancy(llc.QueueID, uint64) int { return len(m.pending) }
func (m *memory) GetSize(llc.QueueID, uint64) int      { return 1 << 30 }
func (m *memory) IncrementWQFull(uint64)               {}

// Operate completes every pending fetch whose latency has elapsed.
func (m *memory) Operate() {
	remaining := m.pending[:0]
	for _, p := range m.pending {
		if p.EventCycle <= *m.cycle {
			m.cache.ReturnData(p)
		} else {
			remaining = append(remaining, p)
		}
	}
	m.pending = remaining
}

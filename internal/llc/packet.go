// Package llc implements the top-level cache controller of spec.md
// §4.I: the queues, packet shape, and downstream/upstream interfaces an
// LLC model exposes to the rest of a simulated memory hierarchy, driving
// the per-set replacement.Controller on every access.
package llc

import "github.com/llcsim/hawkeye/internal/replacement"

// FillLevel is a bitmask of the cache-hierarchy levels a packet is
// travelling through or filling into (spec.md §6's IS_* markers).
type FillLevel uint8

const (
	IsITLB FillLevel = 1 << iota
	IsDTLB
	IsSTLB
	IsL1I
	IsL1D
	IsL2C
	IsLLC
)

// Packet is the cache access packet of spec.md §6. Every field the
// controller reads or writes is named exactly as the spec lists it,
// renamed to Go's exported-field convention.
type Packet struct {
	CPU        int
	InstrID    uint64
	PC         uint64 // ip
	Address    uint64 // line address
	FullAddr   uint64
	Type       replacement.Type
	FillLevel  FillLevel
	EventCycle uint64

	ProgramData [64]byte
	Data        [64]byte

	Latency          uint64
	EffectiveLatency uint64
	Returned         bool
	InstructionPA    uint64
	DataPA           uint64
}

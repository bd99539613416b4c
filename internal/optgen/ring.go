// Package optgen implements the Belady-MIN oracle of spec.md §4.C: for
// every access it reconstructs, offline, whether MIN would have kept the
// line cached since its previous access. Three variants share one ring
// buffer type (spec.md §9's "no deep inheritance" / "ring buffer OPTgen"
// notes), grounded on original_source/replacement/optgen.h,
// size_aware_optgen.h, and the YACC superblock-aware oracle implied by
// spec.md's compressed-cache scenario.
package optgen

import "github.com/llcsim/hawkeye/internal/invariant"

// Ring is the parametric ring buffer spec.md §9 calls for: a fixed-size
// circular window of small counters, indexed by quantum modulo capacity.
type Ring struct {
	buffer     []uint32
	headQuanta uint64
}

// NewRing allocates a ring of the given capacity, all counters zero.
func NewRing(capacity int) *Ring {
	invariant.Assertf(capacity > 0, "ring capacity must be positive, got %d", capacity)
	return &Ring{buffer: make([]uint32, capacity)}
}

func (r *Ring) index(quanta uint64) int { return int(quanta % uint64(len(r.buffer))) }

// InBounds reports whether quanta falls within one full revolution of the
// ring starting at headQuanta.
func (r *Ring) InBounds(quanta uint64) bool {
	return quanta >= r.headQuanta && quanta < r.headQuanta+uint64(len(r.buffer))
}

// BeforeStart reports whether quanta precedes the ring's current window.
func (r *Ring) BeforeStart(quanta uint64) bool { return quanta < r.headQuanta }

// AfterEnd reports whether quanta is past the ring's current window.
func (r *Ring) AfterEnd(quanta uint64) bool {
	return quanta >= r.headQuanta+uint64(len(r.buffer))
}

// Clamp pins quanta into [headQuanta, headQuanta+capacity).
func (r *Ring) Clamp(quanta uint64) uint64 {
	if r.BeforeStart(quanta) {
		return r.headQuanta
	}
	if r.AfterEnd(quanta) {
		return r.headQuanta + uint64(len(r.buffer)) - 1
	}
	return quanta
}

// At returns the counter at the given quantum.
func (r *Ring) At(quanta uint64) uint32 { return r.buffer[r.index(quanta)] }

// Set overwrites the counter at the given quantum (used by add_access to
// reset a slot, per optgen.h's add_access).
func (r *Ring) Set(quanta uint64, v uint32) { r.buffer[r.index(quanta)] = v }

// Len reports the ring's fixed capacity.
func (r *Ring) Len() int { return len(r.buffer) }

// ForEachBetween calls fn(quanta) for every quantum in [last, curr),
// wrapping modulo capacity, matching optgen.h's `while (i != curr_quanta)`
// loop — the half-open range used by the plain and size-aware oracles.
func (r *Ring) ForEachBetween(last, curr uint64, fn func(quanta uint64)) {
	i := last % uint64(len(r.buffer))
	end := curr % uint64(len(r.buffer))
	for i != end {
		fn(i)
		i = (i + 1) % uint64(len(r.buffer))
	}
}

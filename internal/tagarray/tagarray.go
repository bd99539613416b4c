// Package tagarray implements the superblock tag array of spec.md §4.B:
// a set-associative store whose ways hold up to four compressed lines
// sharing one tag, plus the auxiliary shadow arrays of §4.F.
package tagarray

import (
	"fmt"

	"github.com/llcsim/hawkeye/internal/addr"
	"github.com/llcsim/hawkeye/internal/invariant"
)

// MaxCompressibility mirrors addr.MaxCompressibility; re-exported here so
// callers needn't import two packages for one constant.
const MaxCompressibility = addr.MaxCompressibility

// EvictAll is the slot index FindVictim returns to mean "evict every
// valid slot in this way" (spec.md §4.B).
const EvictAll = MaxCompressibility

// Slot is one compressed line within a superblock (spec.md §3).
type Slot struct {
	Valid           bool
	Dirty           bool
	PrefetchBit     bool
	UsedBit         bool
	CompressedSize  int
	FullAddr        uint64
	Payload         [64]byte
	CPU             int
	LastFillInstrID uint64
}

// Way holds up to MaxCompressibility slots sharing one superblock tag.
type Way struct {
	SBTag             uint64
	CompressionFactor int
	Slots             [MaxCompressibility]Slot
	LRU               int // stack position, for the uncompressed-baseline policy
}

func (w *Way) anyValid() bool {
	for i := 0; i < w.CompressionFactor; i++ {
		if w.Slots[i].Valid {
			return true
		}
	}
	return false
}

// Set is one associative set of LLCWay ways. Each way carries its own LRU
// stack position (Way.LRU); the RRPV state lives alongside in the
// hawkeye/replacement packages rather than duplicated here.
type Set struct {
	Ways    []Way
	NumSets uint64
}

// NewSet allocates a set with numWays empty ways, each way starting at
// its own index in the LRU stack.
func NewSet(numWays int, numSets uint64) *Set {
	s := &Set{Ways: make([]Way, numWays), NumSets: numSets}
	for i := range s.Ways {
		s.Ways[i].LRU = i
	}
	return s
}

// Lookup finds the valid slot whose way's sbTag matches and whose slot's
// blkId matches, per spec.md §4.B. It panics on more than one match,
// since distinct ways must never share a superblock tag.
func (s *Set) Lookup(fullAddr uint64) (way, slot int, ok bool) {
	sbTag := addr.SBTag(fullAddr, s.NumSets)
	blkID := addr.BlkID(fullAddr)

	foundWay, foundSlot := -1, -1
	for wi := range s.Ways {
		w := &s.Ways[wi]
		if w.SBTag != sbTag {
			continue
		}
		for si := 0; si < w.CompressionFactor; si++ {
			if w.Slots[si].Valid && uint64(si) == blkID {
				invariant.Assertf(foundWay == -1, "duplicate slot match for addr %x", fullAddr)
				foundWay, foundSlot = wi, si
			}
		}
	}
	if foundWay == -1 {
		return 0, 0, false
	}
	s.touch(foundWay)
	return foundWay, foundSlot, true
}

// touch moves way to the front of the LRU stack (position 0), demoting
// every way that was more recently used than it. This is the
// uncompressed-baseline alternative to Hawkeye's RRPV state, grounded on
// original_source/replacement/compressed_cache_replacement.cc's
// llc_update_replacement_state_cc stack-position update.
func (s *Set) touch(way int) {
	prev := s.Ways[way].LRU
	for i := range s.Ways {
		if i != way && s.Ways[i].LRU < prev {
			s.Ways[i].LRU++
		}
	}
	s.Ways[way].LRU = 0
}

// FindLRUVictim returns the way at the back of the LRU stack, for the
// uncompressed-baseline replacement policy (spec.md §4.B's "unshifted
// variants").
func (s *Set) FindLRUVictim() int {
	victim := 0
	for i := range s.Ways {
		if s.Ways[i].LRU > s.Ways[victim].LRU {
			victim = i
		}
	}
	return victim
}

// FindVictim is the three-stage search of spec.md §4.B. pickVictimWay is
// called only if stages 1 and 2 fail, and must return a way index the
// replacement policy has chosen.
func (s *Set) FindVictim(incomingCF int, fullAddr uint64, pickVictimWay func() int) (way, slot int) {
	sbTag := addr.SBTag(fullAddr, s.NumSets)

	// Stage 1: superblock hit with matching compression factor.
	for wi := range s.Ways {
		w := &s.Ways[wi]
		if w.SBTag == sbTag && w.CompressionFactor == incomingCF {
			for si := 0; si < w.CompressionFactor; si++ {
				if !w.Slots[si].Valid {
					return wi, si
				}
			}
		}
	}

	// Stage 2: empty way.
	for wi := range s.Ways {
		if s.Ways[wi].CompressionFactor == 0 {
			return wi, 0
		}
	}

	// Stage 3: delegate to the replacement policy.
	victim := pickVictimWay()
	invariant.Assertf(victim >= 0 && victim < len(s.Ways), "replacement policy returned out-of-range way %d", victim)
	return victim, EvictAll
}

// WriteQueue is the lower-level write queue a dirty evictee's writeback
// packet must be enqueued on before its slot is overwritten (spec.md
// §4.B's writeback discipline).
type WriteQueue interface {
	// Enqueue attempts to enqueue a writeback for fullAddr, returning
	// false if the queue is full.
	Enqueue(fullAddr uint64, payload [64]byte, cpu int) bool
}

// Fill writes every slot attribute and sets the way's sbTag/blkId/
// compressionFactor, per spec.md §4.B.
func (s *Set) Fill(way, slot int, fullAddr uint64, payload [64]byte, compressedSize, compressionFactor int, cpu int, instrID uint64, isPrefetch bool) {
	w := &s.Ways[way]
	w.SBTag = addr.SBTag(fullAddr, s.NumSets)
	w.CompressionFactor = compressionFactor

	sl := &w.Slots[slot]
	sl.Valid = true
	sl.Dirty = false
	sl.PrefetchBit = isPrefetch
	sl.UsedBit = false
	sl.CompressedSize = compressedSize
	sl.FullAddr = fullAddr
	sl.Payload = payload
	sl.CPU = cpu
	sl.LastFillInstrID = instrID

	s.touch(way)
}

// Evict invalidates a single slot (or, with slot == EvictAll, every
// valid slot in the way), enqueueing a writeback for each dirty slot
// first. It returns false, leaving the set unchanged, if any required
// writeback could not be enqueued — the whole eviction is cancelled. With
// EvictAll, writebacks already enqueued for earlier dirty slots before
// the failing one stay in the write queue.
func (s *Set) Evict(way, slot int, wq WriteQueue) bool {
	w := &s.Ways[way]

	if slot == EvictAll {
		dirty := make([]int, 0, MaxCompressibility)
		for i := 0; i < w.CompressionFactor; i++ {
			if w.Slots[i].Valid && w.Slots[i].Dirty {
				dirty = append(dirty, i)
			}
		}
		for _, i := range dirty {
			sl := &w.Slots[i]
			if !wq.Enqueue(sl.FullAddr, sl.Payload, sl.CPU) {
				return false
			}
		}
		for i := 0; i < w.CompressionFactor; i++ {
			w.Slots[i] = Slot{}
		}
		w.CompressionFactor = 0
		return true
	}

	sl := &w.Slots[slot]
	if sl.Valid && sl.Dirty {
		if !wq.Enqueue(sl.FullAddr, sl.Payload, sl.CPU) {
			return false
		}
	}
	*sl = Slot{}
	if !w.anyValid() {
		w.CompressionFactor = 0
	}
	return true
}

// Invalidate looks up fullAddr and evicts its slot if present. Per
// spec.md §8, a subsequent Lookup for the same address must then miss.
func (s *Set) Invalidate(fullAddr uint64, wq WriteQueue) bool {
	way, slot, ok := s.Lookup(fullAddr)
	if !ok {
		return true
	}
	return s.Evict(way, slot, wq)
}

// MarkDirty flags the slot holding fullAddr dirty, e.g. on a store hit.
func (s *Set) MarkDirty(fullAddr uint64) {
	way, slot, ok := s.Lookup(fullAddr)
	invariant.Assertf(ok, "MarkDirty on absent address %x", fullAddr)
	s.Ways[way].Slots[slot].Dirty = true
}

// CheckInvariants validates the invariants spec.md §8 requires hold
// after every operation. Intended for use from tests.
func (s *Set) CheckInvariants() error {
	for wi := range s.Ways {
		w := &s.Ways[wi]
		any := w.anyValid()
		if w.CompressionFactor == 0 && any {
			return fmt.Errorf("way %d has CompressionFactor=0 but a valid slot", wi)
		}
		if w.CompressionFactor != 0 && !any {
			return fmt.Errorf("way %d has CompressionFactor!=0 but no valid slot", wi)
		}
		for si := 0; si < w.CompressionFactor; si++ {
			sl := &w.Slots[si]
			if !sl.Valid {
				continue
			}
			if addr.BlkID(sl.FullAddr) != uint64(si) {
				return fmt.Errorf("way %d slot %d blkId mismatch", wi, si)
			}
			if addr.SBTag(sl.FullAddr, s.NumSets) != w.SBTag {
				return fmt.Errorf("way %d slot %d sbTag mismatch", wi, si)
			}
		}
	}
	return nil
}

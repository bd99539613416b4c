package tagarray

import "github.com/llcsim/hawkeye/internal/addr"

// Auxiliary is a logical shadow of a real set, sized identically, with
// its own RRPV counters and a prioritised compressed-size bucket
// (spec.md §4.F). Grounded directly on
// original_source/replacement/auxiliary_tag_array.h.
type Auxiliary struct {
	RRPV                [][MaxCompressibility]uint32
	Ways                []Way
	PrioritizedSizeIndex uint32
	numSets              uint64
}

// NewAuxiliary allocates an auxiliary array prioritising the given
// compressed-size bucket (0..7, 8-byte-wide bands of the 64-byte line).
func NewAuxiliary(numWays int, numSets uint64, prioritizedSizeIndex uint32, rrpvMax uint32) *Auxiliary {
	a := &Auxiliary{
		RRPV:                 make([][MaxCompressibility]uint32, numWays),
		Ways:                 make([]Way, numWays),
		PrioritizedSizeIndex: prioritizedSizeIndex,
		numSets:              numSets,
	}
	for w := range a.RRPV {
		for cf := 0; cf < MaxCompressibility; cf++ {
			a.RRPV[w][cf] = rrpvMax
		}
	}
	return a
}

// Copy snapshots the state of a real set's ways into this shadow array.
func (a *Auxiliary) Copy(existing []Way) {
	for wi := range existing {
		if wi >= len(a.Ways) {
			break
		}
		a.Ways[wi] = existing[wi]
	}
}

// Fill mirrors AuxiliaryTagArray::fill: installs a line at (way, slot)
// with the given compressed size, deriving the stored compression
// factor via the supplied factor function (internal/compress.Factor).
func (a *Auxiliary) Fill(way, slot int, fullAddr uint64, compressedSize int, factor func(int) int) {
	w := &a.Ways[way]
	sl := &w.Slots[slot]
	sl.Valid = true
	sl.Dirty = false
	sl.PrefetchBit = false
	sl.UsedBit = false

	w.SBTag = addr.SBTag(fullAddr, a.numSets)
	sl.CompressedSize = compressedSize
	w.CompressionFactor = factor(compressedSize)
	sl.FullAddr = fullAddr
}

// Evict mirrors AuxiliaryTagArray::evict.
func (a *Auxiliary) Evict(way, slot int) {
	w := &a.Ways[way]
	if slot == EvictAll {
		for cf := 0; cf < MaxCompressibility; cf++ {
			w.Slots[cf] = Slot{}
		}
		w.CompressionFactor = 0
		return
	}
	w.Slots[slot] = Slot{}
	if !w.anyValid() {
		w.CompressionFactor = 0
	}
}

// Find mirrors AuxiliaryTagArray::find.
func (a *Auxiliary) Find(fullAddr uint64) (way, slot int, ok bool) {
	sbTag := addr.SBTag(fullAddr, a.numSets)
	blkID := addr.BlkID(fullAddr)
	for wi := range a.Ways {
		w := &a.Ways[wi]
		if w.SBTag != sbTag {
			continue
		}
		for si := 0; si < w.CompressionFactor; si++ {
			if w.Slots[si].Valid && uint64(si) == blkID {
				return wi, si, true
			}
		}
	}
	return 0, 0, false
}

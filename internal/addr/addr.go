// Package addr implements the line-address decomposition of §3/§4.B:
// a 64-byte line, a 4-slot superblock, and the compressed-cache set
// index that sits above the intra-superblock block id.
package addr

import "math/bits"

const (
	// LogBlockSize is log2(64), the cache line size in bytes.
	LogBlockSize = 6
	// LogSuperblock is log2(MAX_COMPRESSIBILITY), the width of the
	// intra-superblock block id field.
	LogSuperblock = 2
	// MaxCompressibility is the largest compression factor a superblock
	// can hold (spec.md §3).
	MaxCompressibility = 4
)

// SetMaskFor returns the bitmask selecting the set-index bits for a
// cache with the given number of sets (must be a power of two).
func SetMaskFor(numSets uint64) uint64 {
	invariantPow2(numSets)
	return numSets - 1
}

func invariantPow2(n uint64) {
	if n == 0 || n&(n-1) != 0 {
		panic("addr: numSets must be a power of two")
	}
}

// Line strips the intra-line offset, returning the line address.
func Line(full uint64) uint64 { return full >> LogBlockSize }

// BlkID returns the intra-superblock slot id, bits [7:6] of the full
// address — equivalently bits [1:0] of the line address.
func BlkID(full uint64) uint64 { return Line(full) & (MaxCompressibility - 1) }

// SetCC returns the compressed-cache set index: the line address is
// shifted right by log2(MAX_COMPRESSIBILITY) before masking, so that the
// four blocks of one superblock always map to the same set.
func SetCC(full uint64, setMask uint64) uint64 {
	return (Line(full) >> LogSuperblock) & setMask
}

// SBTag returns the superblock tag: everything above the set-index bits
// and the 2-bit block id.
func SBTag(full uint64, numSets uint64) uint64 {
	setBits := bits.Len64(numSets - 1)
	if numSets == 1 {
		setBits = 0
	}
	return Line(full) >> (LogSuperblock + setBits)
}

// SetUncompressed is the "unshifted variant" used only by the
// uncompressed baseline (spec.md §4.B).
func SetUncompressed(full uint64, setMask uint64) uint64 {
	return Line(full) & setMask
}

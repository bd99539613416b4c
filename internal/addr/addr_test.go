package addr_test

import (
	"testing"

	"github.com/llcsim/hawkeye/internal/addr"
)

func Test_Line_StripsBlockOffset(t *testing.T) {
	t.Parallel()

	if got := addr.Line(0x1234); got != 0x1234>>6 {
		t.Errorf("Line(0x1234) = %#x, want %#x", got, 0x1234>>6)
	}
}

func Test_BlkID_CyclesThroughSuperblock(t *testing.T) {
	t.Parallel()

	base := uint64(0x1000)
	for blk := uint64(0); blk < addr.MaxCompressibility; blk++ {
		full := base | (blk << addr.LogBlockSize)
		if got := addr.BlkID(full); got != blk {
			t.Errorf("BlkID(%#x) = %d, want %d", full, got, blk)
		}
	}
}

func Test_SetCC_MapsWholeSuperblockToSameSet(t *testing.T) {
	t.Parallel()

	mask := addr.SetMaskFor(1024)
	sbBase := uint64(0xABCD) << (addr.LogSuperblock + addr.LogBlockSize)

	var want uint64 = ^uint64(0)
	for blk := uint64(0); blk < addr.MaxCompressibility; blk++ {
		full := sbBase | (blk << addr.LogBlockSize)
		set := addr.SetCC(full, mask)
		if want == ^uint64(0) {
			want = set
			continue
		}
		if set != want {
			t.Errorf("block %d mapped to set %d, want %d", blk, set, want)
		}
	}
}

func Test_SBTag_IdentifiesSameSuperblock(t *testing.T) {
	t.Parallel()

	numSets := uint64(1024)
	sbBase := uint64(0xABCD) << (addr.LogSuperblock + addr.LogBlockSize)

	var tags []uint64
	for blk := uint64(0); blk < addr.MaxCompressibility; blk++ {
		full := sbBase | (blk << addr.LogBlockSize)
		tags = append(tags, addr.SBTag(full, numSets))
	}
	for i := 1; i < len(tags); i++ {
		if tags[i] != tags[0] {
			t.Errorf("SBTag differs across blocks of one superblock: %v", tags)
		}
	}
}

func Test_SBTag_DiffersAcrossSuperblocks(t *testing.T) {
	t.Parallel()

	// a and b map to the same set (superblock numbers numSets apart), so
	// only the tag can tell them apart.
	numSets := uint64(1024)
	a := uint64(0xABCD) << (addr.LogSuperblock + addr.LogBlockSize)
	b := uint64(0xABCD+numSets) << (addr.LogSuperblock + addr.LogBlockSize)

	if addr.SBTag(a, numSets) == addr.SBTag(b, numSets) {
		t.Error("distinct superblocks produced the same SBTag")
	}
}

func Test_SetMaskFor_PanicsOnNonPowerOfTwo(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a non-power-of-two set count")
		}
	}()
	addr.SetMaskFor(3)
}

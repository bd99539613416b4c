// Package compress implements the three line-compression codecs named in
// spec.md §1/§4.A: BDI (base-delta-immediate), FPC (frequent-pattern
// compression), and CPack. All three are pure functions over a 64-byte
// buffer; none hold state beyond the optional Tracker histogram.
//
// Grounded on original_source/inc/compression/bdi.h, fpc.go section of the
// same header, and cpack.h.
package compress

import "fmt"

// LineSize is the uncompressed cache line size in bytes.
const LineSize = 64

// MaxCompressibility is the largest compression factor the cache honours
// (spec.md §4.A: "only these three values reach the cache").
const MaxCompressibility = 4

// basesCount is the number of candidate base values multiBaseCompression will
// try to find before giving up on a given (blimit, elemSize) pair.
type basesCount int

const (
	twoBases   basesCount = 2 // standalone bdi.Compress, per spec.md §9 Open Question 1
	threeBases basesCount = 3 // compressed-cache EstimateForFill, per the same decision
)

// blimit is the byte width of the delta encoded against a base.
type blimit int

const (
	blimit1 blimit = 1
	blimit2 blimit = 2
	blimit4 blimit = 4
)

func packElements(buf []byte, step int) []uint64 {
	if len(buf)%step != 0 {
		panic(fmt.Sprintf("compress: buffer length %d not a multiple of step %d", len(buf), step))
	}
	values := make([]uint64, len(buf)/step)
	for i := range values {
		var v uint64
		for j := 0; j < step; j++ {
			v |= uint64(buf[i*step+j]) << (8 * uint(j))
		}
		values[i] = v
	}
	return values
}

func isZeroPackable(values []uint64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

func isSameValuePackable(values []uint64) bool {
	for _, v := range values {
		if v != values[0] {
			return false
		}
	}
	return true
}

// absDelta64 returns |a - b| computed in two's-complement space, matching
// the source's my_llabs(a - b) which tolerates the subtraction wrapping.
func absDelta64(a, b uint64) uint64 {
	d := int64(a - b)
	if d < 0 {
		d = -d
	}
	return uint64(d)
}

func blimitMask(bl blimit) uint64 {
	switch bl {
	case blimit1:
		return 0xFF
	case blimit2:
		return 0xFFFF
	case blimit4:
		return 0xFFFFFFFF
	default:
		panic(fmt.Sprintf("compress: invalid blimit %d", bl))
	}
}

// multiBaseCompression mirrors multBaseCompression in bdi.h: it greedily
// collects up to `bases` base values (the source always seeds base[0]=0,
// then real values as they fail to match existing bases), then counts how
// many elements fall within `bl` bytes of some base.
func multiBaseCompression(values []uint64, bl blimit, elemSize int, bases basesCount) int {
	limit := blimitMask(bl)
	baseVals := make([]uint64, 1, int(bases))
	baseVals[0] = 0

	for _, v := range values {
		covered := false
		for _, b := range baseVals {
			if absDelta64(b, v) <= limit {
				covered = true
				break
			}
		}
		if !covered && len(baseVals) < int(bases) {
			baseVals = append(baseVals, v)
		}
		if len(baseVals) >= int(bases) {
			break
		}
	}

	compCount := 0
	for _, v := range values {
		for _, b := range baseVals {
			if absDelta64(b, v) <= limit {
				compCount++
				break
			}
		}
	}

	if compCount < len(values) {
		return len(values) * elemSize
	}

	size := int(bl)*compCount + elemSize*(int(bases)-1) + (len(values)-compCount)*elemSize
	if size > len(values)*elemSize {
		return len(values) * elemSize
	}
	return size
}

func bdiCompress(buf []byte, bases basesCount) int {
	if len(buf) != LineSize {
		panic(fmt.Sprintf("compress: bdi requires a %d-byte line, got %d", LineSize, len(buf)))
	}

	best := LineSize

	v8 := packElements(buf, 8)
	if isZeroPackable(v8) {
		best = 1
	}
	if isSameValuePackable(v8) {
		return min(best, 8)
	}
	for _, bl := range []blimit{blimit1, blimit2, blimit4} {
		best = min(best, multiBaseCompression(v8, bl, 8, bases))
	}

	v4 := packElements(buf, 4)
	if isSameValuePackable(v4) {
		best = min(best, 4)
	}
	for _, bl := range []blimit{blimit1, blimit2} {
		best = min(best, multiBaseCompression(v4, bl, 4, bases))
	}

	v2 := packElements(buf, 2)
	best = min(best, multiBaseCompression(v2, blimit1, 2, bases))

	return best
}

// Compress is the standalone BDI utility (e.g. for offline trace analysis
// tooling). Per spec.md §9 Open Question 1, it uses the two-base variant.
func Compress(buf []byte) int { return bdiCompress(buf, twoBases) }

// EstimateForFill is the compressed-cache's compression estimator,
// reached from every fill (spec.md §4.A). Per spec.md §9 Open Question 1
// it uses the three-base variant with the duplicate-base check baked into
// multiBaseCompression's "already covered" test.
func EstimateForFill(buf []byte) int { return bdiCompress(buf, threeBases) }

// Factor derives the compression factor the cache actually stores
// (spec.md §4.A): only 1, 2, or 4 ever reach a superblock slot.
func Factor(compressedSize int) int {
	switch {
	case compressedSize > 32:
		return 1
	case compressedSize > 16:
		return 2
	default:
		return 4
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package compress

// FPCCompress implements the 3-bit-pattern-per-word codec of spec.md
// §4.A, grounded on FPCCompress in original_source/inc/compression/bdi.h.
// n is the number of 32-bit words in the line (16 for a 64-byte line).
func FPCCompress(buf []byte) int {
	words := packElements(buf, 4)
	n := len(words)

	compressible := 0
	for _, w := range words {
		v := int32(w)
		switch {
		case v == 0:
			compressible += 1 // pattern 000
		case abs32(v) <= 0xFF:
			compressible += 1 // pattern 001/010
		case abs32(v) <= 0xFFFF:
			compressible += 2 // pattern 011
		case w&0xFFFF == 0:
			compressible += 2 // pattern 100
		case abs32(int32(w&0xFFFF)) <= 0xFF && abs32(int32((w>>16)&0xFFFF)) <= 0xFF:
			compressible += 2 // pattern 101
		case sameBytes(w):
			compressible += 1 // pattern 110
		default:
			compressible += 4 // pattern 111
		}
	}

	// 3 bits of pattern-code prefix per word, rounded to whole bytes.
	size := compressible + n*3/8
	if size < n*4 {
		return size
	}
	return n * 4
}

func sameBytes(w uint64) bool {
	b0 := byte(w)
	b1 := byte(w >> 8)
	b2 := byte(w >> 16)
	b3 := byte(w >> 24)
	return b0 == b1 && b0 == b2 && b0 == b3
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

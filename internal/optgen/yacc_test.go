package optgen_test

import (
	"testing"

	"github.com/llcsim/hawkeye/internal/optgen"
)

// Test_YACC_OverlappingSuperblocks reproduces spec.md §8 scenario 2.
func Test_YACC_OverlappingSuperblocks(t *testing.T) {
	t.Parallel()

	y := optgen.NewYACC(2)

	type step struct {
		start, end uint64
		sb         uint64
		cf         int
		want       bool
		name       string
	}
	steps := []step{
		{0, 10, 0, 2, true, "first sb0 cf2 slot"},
		{4, 14, 0, 2, true, "second sb0 cf2 slot"},
		{0, 20, 1, 1, true, "sb1 cf1 in the other way"},
		{1, 21, 1, 1, false, "sb1 cf1 no spare capacity"},
		{1, 22, 0, 2, false, "sb0 cf2 no spare capacity"},
		{15, 20, 3, 1, true, "sb3 displaces freed sb0 way"},
		{50, 80, 3, 1, true, "sb3 cf1 reused after both ways idle"},
		{50, 81, 3, 1, true, "sb3 cf1 goes to the other idle way"},
		{80, 81, 3, 1, false, "off-by-one boundary collision"},
	}

	for _, s := range steps {
		got := y.ShouldCache(s.start, s.end, s.sb, s.cf)
		if got != s.want {
			t.Errorf("%s: ShouldCache(%d,%d,sb=%d,cf=%d) = %v, want %v",
				s.name, s.start, s.end, s.sb, s.cf, got, s.want)
		}
	}
}

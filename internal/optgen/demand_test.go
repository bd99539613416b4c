package optgen_test

import (
	"testing"

	"github.com/llcsim/hawkeye/internal/optgen"
)

// Test_Demand_ReuseExample reproduces the reuse-paper example of
// spec.md §8 scenario 1: a 2-line OPTgen over six usage intervals, which
// should report exactly four MIN-cacheable accesses.
func Test_Demand_ReuseExample(t *testing.T) {
	t.Parallel()

	d := optgen.NewDemand(1024, 2)

	type interval struct {
		start, end uint64
		addr       string
	}
	intervals := []interval{
		{1, 2, "B"},
		{0, 6, "A"},
		{4, 8, "D"},
		{5, 9, "E"},
		{7, 10, "F"},
		{3, 11, "C"},
	}

	hits := 0
	for _, iv := range intervals {
		if d.ShouldCache(iv.end, iv.start, false) {
			hits++
		}
	}

	if hits != 4 {
		t.Fatalf("got %d MIN-cacheable accesses, want 4", hits)
	}
	if got := d.GetNumOptHits(); got != 4 {
		t.Errorf("GetNumOptHits() = %d, want 4", got)
	}
}

func Test_Demand_ShouldCacheProbe_IsIdempotent(t *testing.T) {
	t.Parallel()

	d := optgen.NewDemand(64, 2)
	d.AddAccess(0)
	d.AddAccess(1)

	first := d.ShouldCacheProbe(5, 0)
	second := d.ShouldCacheProbe(5, 0)

	if first != second {
		t.Fatalf("ShouldCacheProbe not idempotent: %v then %v", first, second)
	}
}

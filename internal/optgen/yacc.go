package optgen

import "sort"

// reservation records one superblock's occupancy of a way across the
// half-open... actually closed [start, end] quantum range it is
// considered live for. YACC intentionally treats both endpoints as
// occupied (spec.md §8 scenario 2's "off-by-one boundary" case exists
// precisely to exercise this).
type reservation struct {
	start, end uint64
	sbTag      uint64
	cf         int
}

func (r reservation) overlaps(start, end uint64) bool {
	return r.start <= end && r.end >= start
}

// way tracks every reservation ever made against one associative slot of
// the shadow compressed cache the YACC oracle models.
type way struct {
	reservations []reservation
}

func (w *way) overlapping(start, end uint64) []reservation {
	var out []reservation
	for _, r := range w.reservations {
		if r.overlaps(start, end) {
			out = append(out, r)
		}
	}
	return out
}

func (w *way) lastEnd() uint64 {
	var max uint64
	for _, r := range w.reservations {
		if r.end > max {
			max = r.end
		}
	}
	return max
}

// maxConcurrent returns the largest number of same-superblock
// reservations simultaneously active at any quantum in [start, end],
// counting only the overlapping reservations already on the way; the
// candidate is not counted, so ShouldCache's "< cf" check leaves room
// for it.
func maxConcurrent(overlapping []reservation) int {
	if len(overlapping) == 0 {
		return 0
	}
	type event struct {
		q    uint64
		delta int
	}
	events := make([]event, 0, len(overlapping)*2)
	for _, r := range overlapping {
		events = append(events, event{r.start, 1}, event{r.end + 1, -1})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].q < events[j].q })

	cur, max := 0, 0
	for _, e := range events {
		cur += e.delta
		if cur > max {
			max = cur
		}
	}
	return max
}

// YACC is the superblock-aware oracle of spec.md §4.C: it decides whether
// a usage interval fits by checking, per way, whether the way already
// hosts the same superblock with spare slot capacity, or is entirely
// empty over the interval.
type YACC struct {
	ways      []way
	cacheSize int
}

// NewYACC builds a YACC oracle over cacheSize associative ways.
func NewYACC(cacheSize int) *YACC {
	return &YACC{ways: make([]way, cacheSize), cacheSize: cacheSize}
}

type candidate struct {
	index   int
	lastEnd uint64
}

// ShouldCache reports whether the interval [start, end] for superblock
// sbTag at compression factor cf fits in the shadow cache, reserving a
// way for it if so.
func (y *YACC) ShouldCache(start, end, sbTag uint64, cf int) bool {
	var candidates []candidate

	for i := range y.ways {
		w := &y.ways[i]
		overlap := w.overlapping(start, end)

		if len(overlap) == 0 {
			candidates = append(candidates, candidate{index: i, lastEnd: w.lastEnd()})
			continue
		}

		sameSignature := true
		for _, r := range overlap {
			if r.sbTag != sbTag || r.cf != cf {
				sameSignature = false
				break
			}
		}
		if !sameSignature {
			continue
		}

		if maxConcurrent(overlap) < cf {
			candidates = append(candidates, candidate{index: i, lastEnd: w.lastEnd()})
		}
	}

	if len(candidates) == 0 {
		return false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].lastEnd != candidates[j].lastEnd {
			return candidates[i].lastEnd > candidates[j].lastEnd
		}
		return candidates[i].index < candidates[j].index
	})

	chosen := &y.ways[candidates[0].index]
	chosen.reservations = append(chosen.reservations, reservation{start: start, end: end, sbTag: sbTag, cf: cf})
	return true
}

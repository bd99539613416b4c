package optgen

// Demand is the plain per-set OPTgen oracle of spec.md §4.C.
type Demand struct {
	ring        *Ring
	cacheSize   uint32
	access      uint64
	prefetch    uint64
	numCache    uint64
	numDontCache uint64
	prefetchHit uint64
}

// NewDemand builds a demand-access oracle with the given ring capacity
// and cache_size (the number of lines that may be concurrently live).
func NewDemand(capacity int, cacheSize uint32) *Demand {
	return &Demand{ring: NewRing(capacity), cacheSize: cacheSize}
}

// AddAccess appends a zero slot at curr and counts the access, per
// optgen.h's add_access.
func (d *Demand) AddAccess(curr uint64) {
	d.access++
	d.ring.Set(curr, 0)
}

// AddPrefetch appends a zero slot at curr and counts the prefetch.
func (d *Demand) AddPrefetch(curr uint64) {
	d.prefetch++
	d.ring.Set(curr, 0)
}

// ShouldCache scans liveness[last, curr), mutating it on a hit exactly as
// optgen.h does, and returns whether Belady's MIN would cache the line.
func (d *Demand) ShouldCache(curr, last uint64, prefetch bool) bool {
	isCache := true
	d.ring.ForEachBetween(last, curr, func(q uint64) {
		if d.ring.At(q) >= d.cacheSize {
			isCache = false
		}
	})

	if isCache {
		d.ring.ForEachBetween(last, curr, func(q uint64) {
			d.ring.Set(q, d.ring.At(q)+1)
		})
	}

	if !prefetch {
		if isCache {
			d.numCache++
		} else {
			d.numDontCache++
		}
	} else if isCache {
		d.prefetchHit++
	}

	return isCache
}

// ShouldCacheProbe is the read-only variant: it answers the same question
// without mutating the liveness vector.
func (d *Demand) ShouldCacheProbe(curr, last uint64) bool {
	isCache := true
	d.ring.ForEachBetween(last, curr, func(q uint64) {
		if d.ring.At(q) >= d.cacheSize {
			isCache = false
		}
	})
	return isCache
}

// GetNumOptHits returns the cumulative count of MIN-cacheable demand
// accesses.
func (d *Demand) GetNumOptHits() uint64 { return d.numCache }

// GetTraffic returns the cumulative traffic counter of optgen.h's
// get_traffic: misses plus non-redundant prefetches.
func (d *Demand) GetTraffic() uint64 {
	return d.prefetch - d.prefetchHit + d.access - d.numCache
}

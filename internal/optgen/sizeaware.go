package optgen

// SizeAware is the byte-accounting OPTgen variant of spec.md §4.C: each
// liveness entry holds bytes rather than line counts, and the cap is
// cache_size * 64.
type SizeAware struct {
	ring      *Ring
	byteCap   uint32
	access    uint64
	numCache  uint64
}

// NewSizeAware builds a size-aware oracle; cacheSizeLines is the nominal
// number of uncompressed lines the cache can hold.
func NewSizeAware(capacity int, cacheSizeLines uint32) *SizeAware {
	return &SizeAware{ring: NewRing(capacity), byteCap: cacheSizeLines * 64}
}

// AddAccess resets the slot at curr.
func (s *SizeAware) AddAccess(curr uint64) {
	s.access++
	s.ring.Set(curr, 0)
}

// ShouldCache scans [last, curr) in bytes; on a hit it increments each
// entry by 64/compressionFactor bytes — the footprint the line born at
// `last` occupies during the interval it stays resident.
func (s *SizeAware) ShouldCache(curr, last uint64, compressionFactor uint32) bool {
	isCache := true
	s.ring.ForEachBetween(last, curr, func(q uint64) {
		if s.ring.At(q) >= s.byteCap {
			isCache = false
		}
	})

	if isCache {
		delta := uint32(64) / compressionFactor
		s.ring.ForEachBetween(last, curr, func(q uint64) {
			s.ring.Set(q, s.ring.At(q)+delta)
		})
		s.numCache++
	}

	return isCache
}

// GetNumOptHits returns the cumulative count of MIN-cacheable accesses.
func (s *SizeAware) GetNumOptHits() uint64 { return s.numCache }

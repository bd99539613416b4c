package optgen

// Kind tags which oracle variant a set-level Oracle wraps, replacing the
// CacheGen/UnboundedOPTgen/YACCgen/UnboundedSizeAwareOPTgen class
// hierarchy of original_source/replacement/optgen.h and
// size_aware_optgen.h with the tagged-variant spec.md §9 calls for.
type Kind int

const (
	KindDemand Kind = iota
	KindSizeAware
	KindYACC
)

// Oracle is the common operation set the replacement controller drives,
// regardless of which concrete variant backs a set.
type Oracle struct {
	kind      Kind
	demand    *Demand
	sizeAware *SizeAware
	yacc      *YACC
}

// NewOracle builds the demand (plain Belady-MIN) variant.
func NewOracle(capacity int, cacheSize uint32) *Oracle {
	return &Oracle{kind: KindDemand, demand: NewDemand(capacity, cacheSize)}
}

// NewSizeAwareOracle builds the byte-accounting variant.
func NewSizeAwareOracle(capacity int, cacheSizeLines uint32) *Oracle {
	return &Oracle{kind: KindSizeAware, sizeAware: NewSizeAware(capacity, cacheSizeLines)}
}

// NewYACCOracle builds the superblock-aware variant.
func NewYACCOracle(cacheSize int) *Oracle {
	return &Oracle{kind: KindYACC, yacc: NewYACC(cacheSize)}
}

// Kind reports which variant this oracle is.
func (o *Oracle) Kind() Kind { return o.kind }

// AddAccess records bookkeeping for a fresh access at curr. The YACC
// variant needs no standing ring — its state lives entirely in the
// reservations ShouldCache books — so this is a no-op for KindYACC.
func (o *Oracle) AddAccess(curr uint64, prefetch bool) {
	switch o.kind {
	case KindDemand:
		if prefetch {
			o.demand.AddPrefetch(curr)
		} else {
			o.demand.AddAccess(curr)
		}
	case KindSizeAware:
		o.sizeAware.AddAccess(curr)
	case KindYACC:
	}
}

// ShouldCache answers whether Belady's MIN would retain a line installed
// at last and next referenced at curr, dispatching to whichever variant
// this oracle wraps. compressionFactor is consulted by the size-aware and
// YACC variants; sbTag only by YACC.
func (o *Oracle) ShouldCache(curr, last uint64, prefetch bool, compressionFactor int, sbTag uint64) bool {
	switch o.kind {
	case KindDemand:
		return o.demand.ShouldCache(curr, last, prefetch)
	case KindSizeAware:
		return o.sizeAware.ShouldCache(curr, last, uint32(compressionFactor))
	case KindYACC:
		return o.yacc.ShouldCache(last, curr, sbTag, compressionFactor)
	default:
		panic("optgen: oracle has no recognised kind")
	}
}

// AccessRecord is the "previously recorded access record for this
// address" spec.md §4.G step 3 refers to without naming a type —
// supplemented from ADDR_INFO in original_source/replacement/optgen.h.
type AccessRecord struct {
	FullAddr       uint64
	LastQuanta     uint64
	PC             uint64
	Prefetched     bool
	LastPrediction bool
	Detrained      bool
	Valid          bool
}

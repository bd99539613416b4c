// Package replacement implements the replacement controller of
// spec.md §4.G: it orchestrates the superblock tag array, the OPTgen
// oracle, the SHCT predictor, and the Hawkeye RRIP generator on every
// access, and runs the epoch controller that tunes the demand-prefetch
// training policy.
package replacement

// Type is the cache-access type code of spec.md §6. The exact integer
// values are part of the wire contract other components branch on.
type Type uint8

const (
	Load Type = iota
	RFO
	Prefetch
	Writeback
)

func (t Type) IsPrefetch() bool { return t == Prefetch }

// DPPolicy selects when a D→P or P→P transition is allowed to train the
// prefetch SHCT (spec.md §4.G step 3).
type DPPolicy int

const (
	// NoDP never trains on D-P/P-P transitions.
	NoDP DPPolicy = iota
	// MiddleDP trains only when the reuse distance is below
	// 5*NUM_CPUS.
	MiddleDP
	// AllDP always trains on D-P/P-P transitions.
	AllDP
	// DynDP uses the epoch-scoped dyn_threshold computed by the epoch
	// controller.
	DynDP
)

// Access is one cache-access request as the controller sees it
// (spec.md §4.G's "the pipeline per access").
type Access struct {
	CPU      int
	PC       uint64
	FullAddr uint64
	Type     Type
	InstrID  uint64
}

// Outcome is everything the controller decided, for the caller (the
// top-level cache, internal/llc) to act on.
type Outcome struct {
	Hit              bool
	Way, Slot        int
	NeedsFill        bool
	Stalled          bool
	PredictedFriendly bool
}

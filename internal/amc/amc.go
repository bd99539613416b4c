// Package amc implements the structural↔physical address mapping of
// spec.md §4.H: two on-chip set-associative maps (PS, SP) backed by an
// unbounded off-chip store, used by a prefetcher to translate between a
// physical line address and a compact structural identifier.
//
// Grounded on original_source/prefetcher/on_chip_info.{h,cc}.
package amc

import "github.com/llcsim/hawkeye/internal/invariant"

const (
	// MaxConfidence is the saturating ceiling for an entry's confidence.
	MaxConfidence = 3
)

// Entry is one AMC record, shared shape for both PS and SP tables.
type Entry struct {
	Valid        bool
	Key          uint64 // the phy (for PS) or str (for SP) this entry maps from
	Value        uint64 // the str (for PS) or phy (for SP) this entry maps to
	Confidence   uint8
	TLBResident  bool
	LastAccess   uint64
}

type set struct {
	entries []Entry
}

func (s *set) find(key uint64) *Entry {
	for i := range s.entries {
		if s.entries[i].Valid && s.entries[i].Key == key {
			return &s.entries[i]
		}
	}
	return nil
}

// table is one set-associative AMC (either PS or SP).
type table struct {
	sets     []set
	numWays  int
	evictions uint64
}

func newTable(numSets, numWays int) *table {
	t := &table{sets: make([]set, numSets), numWays: numWays}
	for i := range t.sets {
		t.sets[i].entries = make([]Entry, numWays)
	}
	return t
}

func (t *table) setFor(key uint64) *set { return &t.sets[key%uint64(len(t.sets))] }

// Backing is the unbounded off-chip store absorbing evictions from both
// on-chip maps.
type Backing struct {
	ps map[uint64]uint64
	sp map[uint64]uint64
}

// NewBacking allocates an empty backing store.
func NewBacking() *Backing {
	return &Backing{ps: make(map[uint64]uint64), sp: make(map[uint64]uint64)}
}

// UpdatePhysical records a physical→structural mapping in the backing store.
func (b *Backing) UpdatePhysical(phy, str uint64) { b.ps[phy] = str }

// UpdateStructural records a structural→physical mapping in the backing store.
func (b *Backing) UpdateStructural(str, phy uint64) { b.sp[str] = phy }

// LookupPhysical answers a physical→structural query from backing store.
func (b *Backing) LookupPhysical(phy uint64) (uint64, bool) { v, ok := b.ps[phy]; return v, ok }

// LookupStructural answers a structural→physical query from backing store.
func (b *Backing) LookupStructural(str uint64) (uint64, bool) { v, ok := b.sp[str]; return v, ok }

// Map is the two-level on-chip AMC plus its backing store.
type Map struct {
	ps, sp *table
	backing *Backing
	tlbSync bool

	psEvictions uint64
	spEvictions uint64
	timestamp   uint64
}

// New allocates an AMC with the given per-table (numSets, numWays)
// geometry. tlbSync controls whether the backing store answers queries
// that miss on-chip (spec.md §4.H: "can answer queries when TLB_SYNC is
// disabled").
func New(numSets, numWays int, tlbSync bool) *Map {
	return &Map{
		ps:      newTable(numSets, numWays),
		sp:      newTable(numSets, numWays),
		backing: NewBacking(),
		tlbSync: tlbSync,
	}
}

// GetStructural answers a physical→structural query.
func (m *Map) GetStructural(phy uint64) (uint64, bool) {
	if e := m.ps.setFor(phy).find(phy); e != nil {
		e.LastAccess = m.tick()
		return e.Value, true
	}
	if !m.tlbSync {
		return m.backing.LookupPhysical(phy)
	}
	return 0, false
}

// GetPhysical answers a structural→physical query.
func (m *Map) GetPhysical(str uint64) (uint64, bool) {
	if e := m.sp.setFor(str).find(str); e != nil {
		e.LastAccess = m.tick()
		return e.Value, true
	}
	if !m.tlbSync {
		return m.backing.LookupStructural(str)
	}
	return 0, false
}

func (m *Map) tick() uint64 { m.timestamp++; return m.timestamp }

// pickEvictionVictim returns the index of the LRU entry in a set,
// preferring a non-TLB-resident entry per spec.md §4.H.
func pickEvictionVictim(s *set) int {
	bestIdx := -1
	var bestAccess uint64 = ^uint64(0)
	bestResident := true

	for i := range s.entries {
		e := &s.entries[i]
		if !e.Valid {
			return i
		}
		switch {
		case bestIdx == -1:
			bestIdx, bestAccess, bestResident = i, e.LastAccess, e.TLBResident
		case !e.TLBResident && bestResident:
			bestIdx, bestAccess, bestResident = i, e.LastAccess, e.TLBResident
		case e.TLBResident == bestResident && e.LastAccess < bestAccess:
			bestIdx, bestAccess, bestResident = i, e.LastAccess, e.TLBResident
		}
	}
	return bestIdx
}

// Update installs a bidirectional phy↔str mapping, evicting LRU entries
// (with a preference for non-TLB-resident victims) from both maps if
// full, per spec.md §4.H.
func (m *Map) Update(phy, str uint64) {
	now := m.tick()

	psSet := m.ps.setFor(phy)
	idx := pickEvictionVictim(psSet)
	if psSet.entries[idx].Valid {
		old := psSet.entries[idx]
		m.backing.UpdatePhysical(old.Key, old.Value)
		m.psEvictions++
	}
	psSet.entries[idx] = Entry{Valid: true, Key: phy, Value: str, LastAccess: now}

	spSet := m.sp.setFor(str)
	idx2 := pickEvictionVictim(spSet)
	if spSet.entries[idx2].Valid {
		old := spSet.entries[idx2]
		m.backing.UpdateStructural(old.Key, old.Value)
		m.spEvictions++
	}
	spSet.entries[idx2] = Entry{Valid: true, Key: str, Value: phy, LastAccess: now}
}

// Invalidate removes phy and str from both on-chip maps.
func (m *Map) Invalidate(phy, str uint64) {
	if e := m.ps.setFor(phy).find(phy); e != nil {
		*e = Entry{}
	}
	if e := m.sp.setFor(str).find(str); e != nil {
		*e = Entry{}
	}
}

// IncreaseConfidence saturates the confidence of phy's PS/SP pair at
// MaxConfidence.
func (m *Map) IncreaseConfidence(phy uint64) {
	if e := m.ps.setFor(phy).find(phy); e != nil && e.Confidence < MaxConfidence {
		e.Confidence++
		if sp := m.sp.setFor(e.Value).find(e.Value); sp != nil {
			sp.Confidence = e.Confidence
		}
	}
}

// LowerConfidence floors the confidence of phy's entry at 0, returning
// false once it is already at the floor to signal "invalidate upstream".
func (m *Map) LowerConfidence(phy uint64) bool {
	e := m.ps.setFor(phy).find(phy)
	invariant.Assertf(e != nil, "LowerConfidence on unmapped phy %x", phy)
	if e.Confidence == 0 {
		return false
	}
	e.Confidence--
	if sp := m.sp.setFor(e.Value).find(e.Value); sp != nil {
		sp.Confidence = e.Confidence
	}
	return true
}

// MarkTLBResident propagates TLB residency to both PS and SP entries.
func (m *Map) MarkTLBResident(phy uint64) { m.setTLBResident(phy, true) }

// MarkNotTLBResident propagates non-residency to both PS and SP entries.
func (m *Map) MarkNotTLBResident(phy uint64) { m.setTLBResident(phy, false) }

func (m *Map) setTLBResident(phy uint64, resident bool) {
	e := m.ps.setFor(phy).find(phy)
	if e == nil {
		return
	}
	e.TLBResident = resident
	if sp := m.sp.setFor(e.Value).find(e.Value); sp != nil {
		sp.TLBResident = resident
	}
}

// Evictions returns the cumulative PS/SP eviction counters.
func (m *Map) Evictions() (ps, sp uint64) { return m.psEvictions, m.spEvictions }

// Reset clears the AMC's eviction counters. Per spec.md §9's resolution
// of the fourth Open Question, this deliberately differs from
// original_source (which never resets ps_amc_evictions/sp_amc_evictions)
// — see DESIGN.md.
func (m *Map) Reset() {
	m.psEvictions = 0
	m.spEvictions = 0
}

// Package stats aggregates the simulator's cumulative counters across
// every set's replacement.Controller and llc.Cache queue, for a single
// end-of-run report.
package stats

import "fmt"

// Counters is the full set of cumulative statistics the simulator
// reports, gathered from the Hawkeye generators, the cache's queue stall
// counters, and the AMC (when attached).
type Counters struct {
	Access            uint64
	Hit               uint64
	PrefetchAccess    uint64
	RedundantPrefetch uint64

	StallRQ uint64
	StallWQ uint64
	StallPQ uint64

	AMCPSEvictions uint64
	AMCSPEvictions uint64
}

// HitRate returns Hit/Access, or 0 if there were no accesses.
func (c Counters) HitRate() float64 {
	if c.Access == 0 {
		return 0
	}
	return float64(c.Hit) / float64(c.Access)
}

// Add folds other's counters into c, for summing per-set stats into a
// cache-wide total.
func (c *Counters) Add(other Counters) {
	c.Access += other.Access
	c.Hit += other.Hit
	c.PrefetchAccess += other.PrefetchAccess
	c.RedundantPrefetch += other.RedundantPrefetch
	c.StallRQ += other.StallRQ
	c.StallWQ += other.StallWQ
	c.StallPQ += other.StallPQ
	c.AMCPSEvictions += other.AMCPSEvictions
	c.AMCSPEvictions += other.AMCSPEvictions
}

// String renders a human-readable summary, the only persisted output
// spec.md §6 allows.
func (c Counters) String() string {
	return fmt.Sprintf(
		"access=%d hit=%d hit_rate=%.4f prefetch_access=%d redundant_prefetch=%d "+
			"stall_rq=%d stall_wq=%d stall_pq=%d amc_ps_evictions=%d amc_sp_evictions=%d",
		c.Access, c.Hit, c.HitRate(), c.PrefetchAccess, c.RedundantPrefetch,
		c.StallRQ, c.StallWQ, c.StallPQ, c.AMCPSEvictions, c.AMCSPEvictions,
	)
}

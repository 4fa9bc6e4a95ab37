// Package gc provides a reference mark/sweep collector over a value.Heap.
//
// The heap itself only frees refcounted records; objects wait here until
// nothing rooted reaches them. The collector is synchronous and must run
// between internal-method calls, never inside one.
package gc

import (
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/jscore/value"
)

var log = commonlog.GetLogger("jscore.gc")

// DefaultThreshold is the allocation count that triggers MaybeCollect when
// no configuration says otherwise.
const DefaultThreshold = 4096

// Stats holds statistics from a single collection.
type Stats struct {
	Marked    int
	Swept     int
	Live      int
	Duration  time.Duration
	Timestamp time.Time
}

// Collector marks from rooted objects and pinned values and frees every
// unreachable, unrooted object.
type Collector struct {
	heap      *value.Heap
	threshold uint64
	enabled   bool

	pinned map[value.Value]int

	sweepCount uint64
	lastStats  *Stats
}

// New creates a collector for h. A zero threshold selects DefaultThreshold.
func New(h *value.Heap, threshold uint64) *Collector {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &Collector{
		heap:      h,
		threshold: threshold,
		enabled:   true,
		pinned:    make(map[value.Value]int),
	}
}

// SetEnabled enables or disables MaybeCollect. Collect always runs.
func (c *Collector) SetEnabled(enabled bool) { c.enabled = enabled }

// IsEnabled reports whether MaybeCollect may sweep.
func (c *Collector) IsEnabled() bool { return c.enabled }

// Threshold returns the allocation count that triggers MaybeCollect.
func (c *Collector) Threshold() uint64 { return c.threshold }

// SweepCount returns the number of collections performed.
func (c *Collector) SweepCount() uint64 { return c.sweepCount }

// LastStats returns the most recent collection's statistics, or nil.
func (c *Collector) LastStats() *Stats { return c.lastStats }

// Pin adds v as an extra root until a matching Unpin. Hosts use it for
// values they hold outside the heap without an owning reference, such as
// an interpreter's register file.
func (c *Collector) Pin(v value.Value) {
	if v.IsObject() {
		c.pinned[v]++
	}
}

// Unpin removes one Pin of v.
func (c *Collector) Unpin(v value.Value) {
	if n := c.pinned[v]; n > 1 {
		c.pinned[v] = n - 1
	} else {
		delete(c.pinned, v)
	}
}

// MaybeCollect collects if enabled and enough allocations happened since the
// last sweep. It returns nil when it did not run.
func (c *Collector) MaybeCollect() *Stats {
	if !c.enabled || c.heap.AllocsSinceSweep() < c.threshold {
		return nil
	}
	return c.Collect()
}

// Collect performs a full mark and sweep immediately.
func (c *Collector) Collect() *Stats {
	start := time.Now()
	stats := &Stats{Timestamp: start}

	marked := c.mark()
	stats.Marked = len(marked)

	var garbage []value.Value
	c.heap.ForEachObject(func(v value.Value, roots int, _ value.Record) {
		if !marked[v] {
			garbage = append(garbage, v)
		}
	})
	for _, v := range garbage {
		c.heap.FreeObject(v)
	}
	stats.Swept = len(garbage)
	stats.Live = c.heap.Stats().Live
	stats.Duration = time.Since(start)

	c.heap.ResetSweepCounter()
	c.sweepCount++
	c.lastStats = stats

	log.Infof("collected: marked %d, swept %d, live %d in %s", stats.Marked, stats.Swept, stats.Live, stats.Duration)
	return stats
}

func (c *Collector) mark() map[value.Value]bool {
	marked := make(map[value.Value]bool)
	var work []value.Value

	push := func(v value.Value) {
		if !v.IsObject() || marked[v] || !c.heap.IsLive(v) {
			return
		}
		marked[v] = true
		work = append(work, v)
	}

	c.heap.ForEachObject(func(v value.Value, roots int, _ value.Record) {
		if roots > 0 {
			push(v)
		}
	})
	for v := range c.pinned {
		push(v)
	}

	for len(work) > 0 {
		v := work[len(work)-1]
		work = work[:len(work)-1]
		c.heap.Record(v).Trace(push)
	}
	return marked
}

// Package collect fans counter reads out across interfaces and joins
// them into one attributed result set per tick.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/i978sukhoi/nbwin/internal/netif"
	"github.com/i978sukhoi/nbwin/internal/stats"
)

// ErrStaleSample marks a snapshot whose capture time did not advance
// past the interface's previously delivered one.
var ErrStaleSample = errors.New("stale counter snapshot discarded")

// Result pairs one interface with its snapshot, or with the error that
// prevented a usable read this pass.
type Result struct {
	Interface netif.Interface
	Snapshot  stats.CounterSnapshot
	Err       error
}

// Collector reads counters for a set of interfaces in one pass,
// concurrently when the fan-out machinery cooperates and sequentially
// when it does not. Per-interface capture times are tracked so a
// snapshot can never move an interface backwards in time.
//
// A Collector is confined to a single goroutine; the only parallelism
// lives inside one Collect call and is joined before it returns.
type Collector struct {
	source netif.Source
	run    runner

	// lastCaptured is the per-interface high-water mark of capture
	// times. It only ever advances.
	lastCaptured map[int]time.Time
}

// NewCollector returns a collector reading from the given source.
func NewCollector(source netif.Source) *Collector {
	return &Collector{
		source:       source,
		run:          goRunner{},
		lastCaptured: make(map[int]time.Time),
	}
}

// Collect reads counters for every given interface and returns one
// result per interface, in input order. A failed read marks only that
// interface's result; a failure of the concurrent pass itself is logged
// and retried as a strictly sequential pass so the tick is never lost.
func (c *Collector) Collect(ctx context.Context, interfaces []netif.Interface) []Result {
	results := make([]Result, len(interfaces))

	err := c.run.Run(ctx, len(interfaces), func(task int) {
		results[task] = c.read(ctx, interfaces[task])
	})
	if err != nil {
		slog.Warn("Parallel collection failed, reading sequentially", "error", err)
		for task := range interfaces {
			results[task] = c.read(ctx, interfaces[task])
		}
	}

	c.guardStale(results)
	return results
}

// read performs one counter read. Workers write only their own result
// slot and hold no shared state.
func (c *Collector) read(ctx context.Context, iface netif.Interface) Result {
	snapshot, err := c.source.ReadCounters(ctx, iface.Index)
	if err != nil {
		slog.Debug("Failed to read interface counters", "interface", iface.Name, "error", err)
		return Result{Interface: iface, Err: fmt.Errorf("reading counters for %s: %w", iface.Name, err)}
	}
	return Result{Interface: iface, Snapshot: snapshot}
}

// guardStale enforces strictly increasing capture times per interface.
// It runs on the caller's goroutine after the pass has joined, so the
// high-water marks need no locking.
func (c *Collector) guardStale(results []Result) {
	for i := range results {
		result := &results[i]
		if result.Err != nil {
			continue
		}

		mark, seen := c.lastCaptured[result.Interface.Index]
		if seen && !result.Snapshot.CapturedAt.After(mark) {
			slog.Debug("Discarding stale snapshot",
				"interface", result.Interface.Name,
				"captured_at", result.Snapshot.CapturedAt,
				"high_water", mark)
			result.Snapshot = stats.CounterSnapshot{}
			result.Err = ErrStaleSample
			continue
		}
		c.lastCaptured[result.Interface.Index] = result.Snapshot.CapturedAt
	}
}

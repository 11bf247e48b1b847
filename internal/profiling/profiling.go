package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Lightweight per-tick CPU profiler. Totals accumulate until ResetTick, and
// call counts ride along so a slow tick can say whether one call or many
// were expensive.

type entry struct {
	total time.Duration
	calls int
}

var (
	mu         sync.Mutex
	tickTotals = make(map[string]*entry)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		e := tickTotals[name]
		if e == nil {
			e = &entry{}
			tickTotals[name] = e
		}
		e.total += d
		e.calls++
		mu.Unlock()
	}
}

// ResetTick clears the current totals. Call at the start of each tick.
func ResetTick() {
	mu.Lock()
	clear(tickTotals)
	mu.Unlock()
}

// Snapshot returns a copy of the current per-tick totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(tickTotals))
	for k, e := range tickTotals {
		out[k] = e.total
	}
	return out
}

// Calls returns how many times name was tracked since the last reset.
func Calls(name string) int {
	mu.Lock()
	defer mu.Unlock()
	if e := tickTotals[name]; e != nil {
		return e.calls
	}
	return 0
}

// TopN formats the n most expensive entries of the current tick.
// Example: "world.Tick:4.2ms, meshing.Build:2.1ms(x12)"
func TopN(n int) string {
	type pair struct {
		name  string
		dur   time.Duration
		calls int
	}
	mu.Lock()
	list := make([]pair, 0, len(tickTotals))
	for k, e := range tickTotals {
		list = append(list, pair{name: k, dur: e.total, calls: e.calls})
	}
	mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		s := fmt.Sprintf("%s:%.1fms", p.name, float64(p.dur.Microseconds())/1000.0)
		if p.calls > 1 {
			s += fmt.Sprintf("(x%d)", p.calls)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

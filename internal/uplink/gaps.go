package uplink

import (
	"sort"
	"time"
)

// Seen is one received uplink of a device, identified by its frame counter.
type Seen struct {
	Counter int
	Time    time.Time
}

// Gap is a jump of more than one in a device's frame counter, meaning uplinks
// were lost between Prev and Next.
type Gap struct {
	DevID string
	// Gap is Next.Counter - Prev.Counter.
	Gap int
	// Run is the length of the unbroken counter run that ended at Prev.
	Run  int
	Prev Seen
	Next Seen
}

// Missing returns the number of uplinks lost in the gap.
func (g Gap) Missing() int { return g.Gap - 1 }

// GapTracker collects uplinks per device and finds counter gaps. Uplinks may
// be added in any order. It is not safe for concurrent use.
type GapTracker struct {
	seen map[string][]Seen
}

// NewGapTracker returns an empty tracker.
func NewGapTracker() *GapTracker {
	return &GapTracker{seen: make(map[string][]Seen)}
}

// Add records env under its dev_id.
func (t *GapTracker) Add(env Envelope) {
	t.seen[env.DevID] = append(t.seen[env.DevID], Seen{Counter: env.Counter, Time: env.Metadata.Time})
}

// Devices returns the number of distinct devices seen.
func (t *GapTracker) Devices() int {
	return len(t.seen)
}

// Gaps sorts each device's uplinks by counter and returns every gap, ordered
// by dev_id then counter.
func (t *GapTracker) Gaps() []Gap {
	devs := make([]string, 0, len(t.seen))
	for dev := range t.seen {
		devs = append(devs, dev)
	}
	sort.Strings(devs)

	var gaps []Gap
	for _, dev := range devs {
		events := append([]Seen(nil), t.seen[dev]...)
		sort.SliceStable(events, func(i, j int) bool { return events[i].Counter < events[j].Counter })
		last := events[0]
		runStart := last
		for _, ev := range events[1:] {
			if ev.Counter > last.Counter+1 {
				gaps = append(gaps, Gap{
					DevID: dev,
					Gap:   ev.Counter - last.Counter,
					Run:   last.Counter - runStart.Counter,
					Prev:  last,
					Next:  ev,
				})
				runStart = ev
			}
			last = ev
		}
	}
	return gaps
}

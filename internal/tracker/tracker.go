package tracker

import "sync"

// Change is the outcome of observing a series.
// Baseline is false on the first observation, in which case Diff is zero.
type Change struct {
	Current  float64
	Diff     float64
	Baseline bool
}

// DeltaPtr returns the difference to the previous observation, or nil on the
// first one.
func (c Change) DeltaPtr() *float64 {
	if !c.Baseline {
		return nil
	}
	d := c.Diff
	return &d
}

// Tracker remembers the last observed value of each series for the lifetime
// of the process.
type Tracker struct {
	globalMu sync.RWMutex
	series   map[string]*seriesState
}

type seriesState struct {
	mu          sync.Mutex
	previous    float64
	hasBaseline bool
}

func New() *Tracker {
	return &Tracker{
		series: make(map[string]*seriesState),
	}
}

func (t *Tracker) state(id string) *seriesState {
	// Fast path: series already registered
	t.globalMu.RLock()
	st, ok := t.series[id]
	t.globalMu.RUnlock()
	if ok {
		return st
	}

	t.globalMu.Lock()
	defer t.globalMu.Unlock()
	if st, ok = t.series[id]; !ok {
		st = &seriesState{}
		t.series[id] = st
	}
	return st
}

// Observe records current as the new baseline of series id and reports the
// change against the previous baseline. Concurrent observers of the same
// series are serialized.
func (t *Tracker) Observe(id string, current float64) Change {
	st := t.state(id)

	// Per-series locking
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.hasBaseline {
		st.previous = current
		st.hasBaseline = true
		return Change{Current: current}
	}

	diff := current - st.previous
	st.previous = current
	return Change{Current: current, Diff: diff, Baseline: true}
}

// Snapshot copies every established baseline.
func (t *Tracker) Snapshot() map[string]float64 {
	t.globalMu.RLock()
	defer t.globalMu.RUnlock()

	out := make(map[string]float64, len(t.series))
	for id, st := range t.series {
		st.mu.Lock()
		if st.hasBaseline {
			out[id] = st.previous
		}
		st.mu.Unlock()
	}
	return out
}

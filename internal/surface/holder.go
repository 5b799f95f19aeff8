package surface

import (
	"sync/atomic"
	"time"
)

// Snapshot bundles the immutable tables produced by one build.
type Snapshot struct {
	Rates     *RateTable
	Dividends *DividendSeries
	BuiltAt   time.Time
}

// Holder publishes the current snapshot to readers. Queries load the pointer
// once and never observe a half-built surface; a rebuild swaps the whole
// snapshot in one atomic store while the old one keeps serving.
type Holder struct {
	cur atomic.Pointer[Snapshot]
}

// Current returns the active snapshot, or false if no build has completed yet.
func (h *Holder) Current() (*Snapshot, bool) {
	s := h.cur.Load()
	return s, s != nil
}

// Swap installs a freshly built snapshot.
func (h *Holder) Swap(s *Snapshot) {
	h.cur.Store(s)
}

// Package aggregate maintains the global per-day snapshot log: total
// committed value and open commitment count for every day, with
// carry-forward semantics for days with no activity.
package aggregate

import "sort"

// Snapshot is the global aggregate as of one day.
type Snapshot struct {
	TotalValue  uint64 `json:"total_value"`
	ActiveCount uint32 `json:"active_count"`
}

// Book is the append-only (day, snapshot) log plus the running global
// total. The running total and the latest day's snapshot move in
// lock-step: every Apply updates both before returning.
//
// Days are materialized lazily, only when a write targets them; reads
// for unmaterialized days fall back to the nearest prior day.
//
// Book is not safe for concurrent use; the owning store guards it.
type Book struct {
	days    []uint32
	snaps   map[uint32]Snapshot
	current Snapshot
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{snaps: make(map[uint32]Snapshot)}
}

// Apply materializes day if needed, seeding it from the latest prior
// snapshot so skipped days carry history forward, then applies the
// signed deltas to both the day's snapshot and the running total.
// Count underflow is clamped at zero, mirroring the checkpoint clamp.
func (b *Book) Apply(day uint32, amountDelta int64, countDelta int32) Snapshot {
	if n := len(b.days); n == 0 || b.days[n-1] != day {
		b.days = append(b.days, day)
		b.snaps[day] = b.current
	}

	snap := b.snaps[day]

	if amountDelta >= 0 {
		snap.TotalValue += uint64(amountDelta)
	} else {
		dec := uint64(-amountDelta)
		if dec > snap.TotalValue {
			snap.TotalValue = 0
		} else {
			snap.TotalValue -= dec
		}
	}

	if countDelta >= 0 {
		snap.ActiveCount += uint32(countDelta)
	} else {
		dec := uint32(-countDelta)
		if dec > snap.ActiveCount {
			snap.ActiveCount = 0
		} else {
			snap.ActiveCount -= dec
		}
	}

	b.snaps[day] = snap
	b.current = snap

	return snap
}

// At returns the snapshot as of day: the materialized snapshot for the
// rightmost day ≤ day, or the zero snapshot when day precedes all
// activity.
func (b *Book) At(day uint32) Snapshot {
	if s, ok := b.snaps[day]; ok {
		return s
	}

	i := sort.Search(len(b.days), func(i int) bool { return b.days[i] > day })
	if i == 0 {
		return Snapshot{}
	}

	return b.snaps[b.days[i-1]]
}

// Materialized returns the raw stored snapshot for day, if one exists.
func (b *Book) Materialized(day uint32) (Snapshot, bool) {
	s, ok := b.snaps[day]

	return s, ok
}

// Current returns the running global total. O(1).
func (b *Book) Current() Snapshot { return b.current }

// Len returns the number of materialized days.
func (b *Book) Len() int { return len(b.days) }

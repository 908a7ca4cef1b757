// Package checkpoint implements the per-account balance history: a
// strictly increasing array of days on which the balance changed plus
// a day→balance map. Point-in-time queries cost O(log k) where k is
// the number of distinct change days, so the ledger never stores a
// value for every day.
package checkpoint

import "sort"

// History records an account's balance changes. Days are strictly
// increasing with no duplicates: a second change on the same day
// overwrites the stored balance for that day in place.
//
// History is not safe for concurrent use; the owning store guards it.
type History struct {
	days     []uint32
	balances map[uint32]uint64
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{balances: make(map[uint32]uint64)}
}

// Record applies a signed delta to the balance as of day and stores
// the result under day. Negative deltas that would underflow are
// clamped at zero; the returned clamped flag reports that case so
// callers can surface it (it should be unreachable when the commitment
// store enforces its preconditions).
//
// The clock is non-decreasing, so day is never earlier than the last
// recorded day.
func (h *History) Record(day uint32, delta int64) (balance uint64, clamped bool) {
	balance = h.At(day)

	if delta >= 0 {
		balance += uint64(delta)
	} else {
		dec := uint64(-delta)
		if dec > balance {
			balance = 0
			clamped = true
		} else {
			balance -= dec
		}
	}

	if n := len(h.days); n == 0 || h.days[n-1] != day {
		h.days = append(h.days, day)
	}
	h.balances[day] = balance

	return balance, clamped
}

// At returns the balance as of day: the balance stored for the
// rightmost recorded day ≤ day, or zero when day precedes the first
// checkpoint (or no checkpoint exists).
func (h *History) At(day uint32) uint64 {
	if b, ok := h.balances[day]; ok {
		return b
	}

	// Lower bound: first index with days[i] > day.
	i := sort.Search(len(h.days), func(i int) bool { return h.days[i] > day })
	if i == 0 {
		return 0
	}

	return h.balances[h.days[i-1]]
}

// LastDay returns the most recent recorded day, if any.
func (h *History) LastDay() (uint32, bool) {
	if len(h.days) == 0 {
		return 0, false
	}

	return h.days[len(h.days)-1], true
}

// Len returns the number of distinct recorded days.
func (h *History) Len() int { return len(h.days) }

// Days returns a copy of the recorded day sequence, in order.
func (h *History) Days() []uint32 {
	out := make([]uint32, len(h.days))
	copy(out, h.days)

	return out
}

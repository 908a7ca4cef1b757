// Package commitment defines the deposit records at the core of the
// ledger. A commitment is created once, closed at most once, and never
// deleted: closed records stay queryable for historical audits.
package commitment

import (
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/types"
)

// Flags is a small provenance bitset carried by each commitment.
// Flags are set at creation and immutable afterwards.
type Flags uint8

const (
	// FlagNone marks a plain deposit.
	FlagNone Flags = 0

	// FlagMigrated marks a commitment imported from a prior ledger.
	FlagMigrated Flags = 1 << 0

	// FlagExtended marks a commitment whose lock was extended at
	// creation in exchange for a longer duration.
	FlagExtended Flags = 1 << 1
)

// Has reports whether all bits of f are set.
func (fl Flags) Has(f Flags) bool { return fl&f == f }

// Commitment is a single deposit: an amount locked for LockDays
// starting at StartDay. EndDay is zero while the commitment is open
// and is set exactly once when it closes.
type Commitment struct {
	types.Entity
	ID       id.CommitmentID `json:"id"`
	Amount   uint64          `json:"amount"`
	StartDay uint32          `json:"start_day"`
	EndDay   uint32          `json:"end_day"` // 0 = still open
	LockDays uint32          `json:"lock_days"`
	Flags    Flags           `json:"flags"`
}

// Active reports whether the commitment is still open.
func (c *Commitment) Active() bool {
	return c.EndDay == 0 && c.Amount > 0
}

// MaturityDay returns the first day the commitment is eligible to
// close. The ledger itself does not gate on this; the custody layer
// enforces it before calling Close.
func (c *Commitment) MaturityDay() uint32 {
	return c.StartDay + c.LockDays
}

// MaturedBy reports whether the commitment has matured as of day.
func (c *Commitment) MaturedBy(day uint32) bool {
	return day >= c.MaturityDay()
}

// Account is the per-account summary the ledger maintains alongside
// the commitment records. TotalActive always equals the sum of Amount
// over the account's open commitments.
type Account struct {
	types.Entity
	ID                string `json:"id"`
	TotalActive       uint64 `json:"total_active"`
	TotalRewarded     uint64 `json:"total_rewarded"` // written by the reward collaborator
	TotalClaimed      uint64 `json:"total_claimed"`  // written by the reward collaborator
	Counter           uint64 `json:"counter"`        // next commitment sequence number
	ActiveCount       uint32 `json:"active_count"`
	LastCheckpointDay uint32 `json:"last_checkpoint_day"`
	Ordinal           int    `json:"ordinal"` // registry position, assigned on first deposit
}

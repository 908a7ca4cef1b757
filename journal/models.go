// Package journal defines the append-only audit record of every
// deposit and withdrawal the ledger processes. The checkpoint index
// answers point queries fast; the journal keeps the raw event history
// for replay audits and external analytics.
package journal

import (
	"time"

	"github.com/xraph/timevault/id"
)

// Kind distinguishes the two mutation events.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
)

// Event is one recorded mutation.
type Event struct {
	ID           id.EventID      `json:"id"`
	Account      string          `json:"account"`
	CommitmentID id.CommitmentID `json:"commitment_id"`
	Kind         Kind            `json:"kind"`
	Amount       uint64          `json:"amount"`
	Day          uint32          `json:"day"`
	Timestamp    time.Time       `json:"timestamp"`
}

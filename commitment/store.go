package commitment

import (
	"context"

	"github.com/xraph/timevault/id"
)

// Store is the commitment segment of the ledger store. Open and Close
// are atomic units: the record, the account summary, the account's
// checkpoint history, the global aggregate, and (on first deposit) the
// registry all change together or not at all.
type Store interface {
	// Open creates a commitment for account on the given day and
	// returns its deterministic identifier plus whether this was the
	// account's first-ever deposit.
	Open(ctx context.Context, account string, amount uint64, lockDays uint32, flags Flags, day uint32) (id.CommitmentID, bool, error)

	// Close closes the identified commitment on the given day and
	// returns the closed record plus whether the checkpoint underflow
	// clamp fired (which signals a bookkeeping bug, not normal flow).
	Close(ctx context.Context, account string, cid id.CommitmentID, day uint32) (*Commitment, bool, error)

	// Get returns the identified commitment, verifying ownership by
	// decoding the identifier.
	Get(ctx context.Context, account string, cid id.CommitmentID) (*Commitment, error)

	// GetAccount returns the summary for an account that has deposited
	// at least once.
	GetAccount(ctx context.Context, account string) (*Account, error)
}

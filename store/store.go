package store

import (
	"context"

	"github.com/xraph/timevault/aggregate"
	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/journal"
)

// Store is the unified storage interface for the ledger.
// Instead of embedding the sub-interfaces, we explicitly declare all
// methods to avoid naming conflicts.
//
// OpenCommitment and CloseCommitment are atomic: the commitment
// record, the owner's summary and checkpoint history, the global
// aggregate, and (on first deposit) the registry change together or
// not at all. The engine serializes calls to both, so drivers never
// see two in-flight mutations.
type Store interface {
	// Commitment methods
	OpenCommitment(ctx context.Context, account string, amount uint64, lockDays uint32, flags commitment.Flags, day uint32) (id.CommitmentID, bool, error)
	CloseCommitment(ctx context.Context, account string, cid id.CommitmentID, day uint32) (*commitment.Commitment, bool, error)
	GetCommitment(ctx context.Context, account string, cid id.CommitmentID) (*commitment.Commitment, error)
	GetAccount(ctx context.Context, account string) (*commitment.Account, error)

	// Checkpoint methods
	BalanceAt(ctx context.Context, account string, day uint32) (uint64, error)

	// Aggregate methods
	SnapshotAt(ctx context.Context, day uint32) (aggregate.Snapshot, error)
	CurrentTotal(ctx context.Context) (aggregate.Snapshot, error)

	// Registry methods
	Accounts(ctx context.Context, offset, count int) ([]string, error)
	AccountCount(ctx context.Context) (int, error)

	// Journal methods
	AppendEvents(ctx context.Context, events []*journal.Event) error
	QueryEvents(ctx context.Context, account string, opts journal.QueryOpts) ([]*journal.Event, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

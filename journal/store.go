package journal

import "context"

// Store is the journal segment of the ledger store. Events are
// append-only; there is no update or delete path.
type Store interface {
	Append(ctx context.Context, events []*Event) error
	Query(ctx context.Context, account string, opts QueryOpts) ([]*Event, error)
}

// QueryOpts filters a journal query.
type QueryOpts struct {
	Kind    Kind
	FromDay uint32
	ToDay   uint32 // 0 = unbounded
	Limit   int
	Offset  int
}

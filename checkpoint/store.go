package checkpoint

import "context"

// Store is the historical-balance segment of the ledger store.
// Queries read the checkpoint history directly; writes only happen
// through the commitment segment's Open/Close path.
type Store interface {
	// BalanceAt returns the account's balance as of day. Unknown
	// accounts and days before the first checkpoint report zero.
	BalanceAt(ctx context.Context, account string, day uint32) (uint64, error)
}

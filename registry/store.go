package registry

import "context"

// Store is the account-registry segment of the ledger store.
type Store interface {
	// Accounts returns the registry slice [offset, offset+count) in
	// insertion order. Fails when offset is at or past the end.
	Accounts(ctx context.Context, offset, count int) ([]string, error)

	// AccountCount returns the number of registered accounts. O(1).
	AccountCount(ctx context.Context) (int, error)
}

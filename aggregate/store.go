package aggregate

import "context"

// Store is the global-aggregate segment of the ledger store.
type Store interface {
	// SnapshotAt returns the global snapshot as of day, carrying the
	// nearest prior materialized day forward when day itself was never
	// written.
	SnapshotAt(ctx context.Context, day uint32) (Snapshot, error)

	// CurrentTotal returns the running global total. O(1).
	CurrentTotal(ctx context.Context) (Snapshot, error)
}

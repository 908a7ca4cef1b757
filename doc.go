// Package timevault provides a checkpointed balance ledger for
// time-locked deposits in Go applications.
//
// TimeVault is designed as a library, not a service. Import it directly
// into your Go application, typically underneath a custody layer that
// owns value transfer and maturity policy. It provides:
//
//   - Deterministic commitment identifiers derived from (account, counter)
//   - O(log k) historical balance queries over per-account checkpoints
//   - Daily global aggregates with carry-forward over idle days
//   - A stable, append-only account registry with offset pagination
//   - An append-only journal of deposits and withdrawals with batched flushing
//   - Pluggable storage drivers (memory, SQLite, Postgres, MongoDB)
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/xraph/timevault"
//	    "github.com/xraph/timevault/store/memory"
//	)
//
//	// Initialize store. The persistent drivers wrap a grove database
//	// handle instead: postgres.New(db), sqlite.New(db), mongo.New(db).
//	store := memory.New()
//
//	// Create ledger
//	l := timevault.New(store)
//
//	// Start the ledger (runs migrations, begins background workers)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// A deposit opens a commitment: a fixed amount locked for a number of
// days, identified by the owner account and a per-account sequence
// number:
//
//	cid, err := l.Deposit(ctx, account, 5_000, 30, commitment.FlagNone)
//
// Closing the commitment releases the amount back to the owner:
//
//	err := l.Close(ctx, account, cid)
//
// Every deposit and close writes a checkpoint, so the committed balance
// of any account on any past day remains queryable:
//
//	balance, err := l.BalanceAt(ctx, account, day)
//
// Global totals follow the same model via SnapshotAt and CurrentTotal.
//
// # Day Indexing
//
// The ledger never reads wall time for its bookkeeping. A Clock
// supplies the current day index; it must be non-decreasing but may
// repeat or jump forward. All history is keyed by these day indices,
// making the ledger fully deterministic under test clocks.
//
// # Amount Semantics
//
// Amounts are uint64 in the smallest unit of the managed value. The
// ledger records and aggregates amounts; it never moves value. The
// custody layer above it validates amounts, transfers funds, and
// enforces maturity before closing.
package timevault

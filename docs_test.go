package timevault_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	timevault "github.com/xraph/timevault"
	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/store/memory"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from the package documentation
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize the ledger
		l := timevault.New(store,
			timevault.WithLogger(slog.Default()),
			timevault.WithJournalConfig(100, 5*time.Second),
		)

		// Start the engine
		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		// Lock 1000 units for alice for 30 days
		cid, err := l.Deposit(ctx, "alice", 1000, 30, commitment.FlagNone)
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("commitment opened: %s\n", cid)

		// Query the balance as of any past day
		balance, err := l.BalanceAt(ctx, "alice", l.CurrentDay())
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("alice holds %d as of today\n", balance)

		// Close the commitment once the custody layer confirms maturity
		if err := l.Close(ctx, "alice", cid); err != nil {
			t.Fatal(err)
		}
	})

	// Test Clock examples
	t.Run("ClockExamples", func(t *testing.T) {
		// A fixed clock for deterministic tests
		fixed := timevault.ClockFunc(func() uint32 { return 42 })
		_ = fixed.CurrentDay() // 42

		// A wall clock with a custom epoch and day length
		epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		wall := timevault.WallClock(epoch, timevault.DefaultDayLength)
		_ = wall.CurrentDay()
	})
}

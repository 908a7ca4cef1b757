package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	timevault "github.com/xraph/timevault"
	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/journal"
	"github.com/xraph/timevault/store/memory"
)

func TestOpenCommitmentFlow(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	cid, isNew, err := s.OpenCommitment(ctx, "alice", 1000, 30, commitment.FlagNone, 10)
	if err != nil {
		t.Fatalf("OpenCommitment failed: %v", err)
	}
	if !isNew {
		t.Error("first deposit should register the account")
	}
	if cid.String() != "alice#0" {
		t.Errorf("first commitment id = %q, want %q", cid.String(), "alice#0")
	}

	cid2, isNew2, err := s.OpenCommitment(ctx, "alice", 500, 60, commitment.FlagExtended, 10)
	if err != nil {
		t.Fatalf("second OpenCommitment failed: %v", err)
	}
	if isNew2 {
		t.Error("second deposit should not re-register the account")
	}
	if cid2.Seq() != 1 {
		t.Errorf("second seq = %d, want 1", cid2.Seq())
	}

	acct, err := s.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Counter != 2 || acct.ActiveCount != 2 || acct.TotalActive != 1500 {
		t.Errorf("summary = {Counter:%d ActiveCount:%d TotalActive:%d}, want {2 2 1500}",
			acct.Counter, acct.ActiveCount, acct.TotalActive)
	}
	if acct.Ordinal != 0 {
		t.Errorf("Ordinal = %d, want 0 for first account", acct.Ordinal)
	}

	balance, err := s.BalanceAt(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("BalanceAt failed: %v", err)
	}
	if balance != 1500 {
		t.Errorf("BalanceAt(10) = %d, want 1500", balance)
	}

	snap, err := s.SnapshotAt(ctx, 10)
	if err != nil {
		t.Fatalf("SnapshotAt failed: %v", err)
	}
	if snap.TotalValue != 1500 || snap.ActiveCount != 2 {
		t.Errorf("SnapshotAt(10) = %+v, want {1500 2}", snap)
	}
}

func TestCloseCommitmentFlow(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	cid, _, err := s.OpenCommitment(ctx, "alice", 1000, 30, commitment.FlagNone, 10)
	if err != nil {
		t.Fatalf("OpenCommitment failed: %v", err)
	}

	rec, clamped, err := s.CloseCommitment(ctx, "alice", cid, 45)
	if err != nil {
		t.Fatalf("CloseCommitment failed: %v", err)
	}
	if clamped {
		t.Error("balanced close should not clamp")
	}
	if rec.EndDay != 45 {
		t.Errorf("EndDay = %d, want 45", rec.EndDay)
	}
	if rec.Active() {
		t.Error("closed commitment should not be active")
	}

	// Closed records stay queryable.
	got, err := s.GetCommitment(ctx, "alice", cid)
	if err != nil {
		t.Fatalf("GetCommitment after close failed: %v", err)
	}
	if got.EndDay != 45 {
		t.Errorf("stored EndDay = %d, want 45", got.EndDay)
	}

	acct, err := s.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.ActiveCount != 0 || acct.TotalActive != 0 {
		t.Errorf("summary after close = {ActiveCount:%d TotalActive:%d}, want {0 0}",
			acct.ActiveCount, acct.TotalActive)
	}

	// History: full before the close day, zero from it onward.
	balance, _ := s.BalanceAt(ctx, "alice", 44)
	if balance != 1000 {
		t.Errorf("BalanceAt(44) = %d, want 1000", balance)
	}
	balance, _ = s.BalanceAt(ctx, "alice", 45)
	if balance != 0 {
		t.Errorf("BalanceAt(45) = %d, want 0", balance)
	}

	total, _ := s.CurrentTotal(ctx)
	if total.TotalValue != 0 || total.ActiveCount != 0 {
		t.Errorf("CurrentTotal = %+v, want zero", total)
	}
}

func TestCloseCommitmentErrors(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	cid, _, err := s.OpenCommitment(ctx, "alice", 1000, 30, commitment.FlagNone, 10)
	if err != nil {
		t.Fatalf("OpenCommitment failed: %v", err)
	}

	t.Run("not owner", func(t *testing.T) {
		_, _, closeErr := s.CloseCommitment(ctx, "bob", cid, 45)
		if !errors.Is(closeErr, timevault.ErrNotOwner) {
			t.Errorf("got %v, want ErrNotOwner", closeErr)
		}
	})

	t.Run("unknown commitment", func(t *testing.T) {
		_, _, closeErr := s.CloseCommitment(ctx, "alice", id.NewCommitmentID("alice", 99), 45)
		if !errors.Is(closeErr, timevault.ErrCommitmentNotFound) {
			t.Errorf("got %v, want ErrCommitmentNotFound", closeErr)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, _, closeErr := s.CloseCommitment(ctx, "carol", id.NewCommitmentID("carol", 0), 45)
		if !errors.Is(closeErr, timevault.ErrCommitmentNotFound) {
			t.Errorf("got %v, want ErrCommitmentNotFound", closeErr)
		}
	})

	t.Run("already closed", func(t *testing.T) {
		if _, _, closeErr := s.CloseCommitment(ctx, "alice", cid, 45); closeErr != nil {
			t.Fatalf("first close failed: %v", closeErr)
		}
		_, _, closeErr := s.CloseCommitment(ctx, "alice", cid, 46)
		if !errors.Is(closeErr, timevault.ErrAlreadyClosed) {
			t.Errorf("got %v, want ErrAlreadyClosed", closeErr)
		}
	})
}

func TestGetCommitmentErrors(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, _, err := s.OpenCommitment(ctx, "alice", 100, 30, commitment.FlagNone, 1); err != nil {
		t.Fatalf("OpenCommitment failed: %v", err)
	}

	if _, err := s.GetCommitment(ctx, "bob", id.NewCommitmentID("alice", 0)); !errors.Is(err, timevault.ErrNotOwner) {
		t.Errorf("got %v, want ErrNotOwner", err)
	}
	if _, err := s.GetCommitment(ctx, "alice", id.NewCommitmentID("alice", 7)); !errors.Is(err, timevault.ErrCommitmentNotFound) {
		t.Errorf("got %v, want ErrCommitmentNotFound", err)
	}
	if _, err := s.GetAccount(ctx, "nobody"); !errors.Is(err, timevault.ErrAccountNotFound) {
		t.Errorf("got %v, want ErrAccountNotFound", err)
	}
}

func TestBalanceAtUnknownAccount(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	balance, err := s.BalanceAt(ctx, "ghost", 100)
	if err != nil {
		t.Fatalf("BalanceAt failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("BalanceAt for unknown account = %d, want 0", balance)
	}
}

func TestAccountsPagination(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	for i := 0; i < 7; i++ {
		account := fmt.Sprintf("acct-%d", i)
		if _, _, err := s.OpenCommitment(ctx, account, 100, 30, commitment.FlagNone, 1); err != nil {
			t.Fatalf("OpenCommitment(%s) failed: %v", account, err)
		}
	}

	count, err := s.AccountCount(ctx)
	if err != nil {
		t.Fatalf("AccountCount failed: %v", err)
	}
	if count != 7 {
		t.Errorf("AccountCount = %d, want 7", count)
	}

	page, err := s.Accounts(ctx, 2, 3)
	if err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	want := []string{"acct-2", "acct-3", "acct-4"}
	if len(page) != len(want) {
		t.Fatalf("page = %v, want %v", page, want)
	}
	for i := range want {
		if page[i] != want[i] {
			t.Errorf("page[%d] = %q, want %q", i, page[i], want[i])
		}
	}

	// Truncated tail.
	page, err = s.Accounts(ctx, 5, 10)
	if err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("truncated page length = %d, want 2", len(page))
	}

	// Offset at or past the end is out of bounds, even by one.
	if _, err := s.Accounts(ctx, 7, 1); !errors.Is(err, timevault.ErrOutOfBounds) {
		t.Errorf("offset == count: got %v, want ErrOutOfBounds", err)
	}
	if _, err := s.Accounts(ctx, -1, 1); !errors.Is(err, timevault.ErrOutOfBounds) {
		t.Errorf("negative offset: got %v, want ErrOutOfBounds", err)
	}
}

func TestQueryEvents(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	mkEvent := func(account string, seq uint64, kind journal.Kind, day uint32) *journal.Event {
		return &journal.Event{
			ID:           id.NewEventID(),
			Account:      account,
			CommitmentID: id.NewCommitmentID(account, seq),
			Kind:         kind,
			Amount:       100,
			Day:          day,
			Timestamp:    time.Now().UTC(),
		}
	}

	events := []*journal.Event{
		mkEvent("alice", 0, journal.KindDeposit, 10),
		mkEvent("alice", 1, journal.KindDeposit, 20),
		mkEvent("alice", 0, journal.KindWithdraw, 40),
		mkEvent("bob", 0, journal.KindDeposit, 15),
	}
	if err := s.AppendEvents(ctx, events); err != nil {
		t.Fatalf("AppendEvents failed: %v", err)
	}

	t.Run("by account", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, "alice", journal.QueryOpts{})
		if err != nil {
			t.Fatalf("QueryEvents failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d events, want 3", len(got))
		}
	})

	t.Run("by kind", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, "alice", journal.QueryOpts{Kind: journal.KindWithdraw})
		if err != nil {
			t.Fatalf("QueryEvents failed: %v", err)
		}
		if len(got) != 1 || got[0].Day != 40 {
			t.Errorf("got %d events, want 1 withdraw on day 40", len(got))
		}
	})

	t.Run("day range", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, "alice", journal.QueryOpts{FromDay: 15, ToDay: 40})
		if err != nil {
			t.Fatalf("QueryEvents failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d events in [15, 40], want 2", len(got))
		}
	})

	t.Run("offset and limit", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, "alice", journal.QueryOpts{Offset: 1, Limit: 1})
		if err != nil {
			t.Fatalf("QueryEvents failed: %v", err)
		}
		if len(got) != 1 || got[0].Day != 20 {
			t.Errorf("got %d events, want the single day-20 event", len(got))
		}
	})

	t.Run("no matches", func(t *testing.T) {
		got, err := s.QueryEvents(ctx, "carol", journal.QueryOpts{})
		if err != nil {
			t.Fatalf("QueryEvents failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d events for unknown account, want 0", len(got))
		}
	})
}

// TestMultiAccountIndependence verifies one account's activity never
// leaks into another's history.
func TestMultiAccountIndependence(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	aliceCid, _, err := s.OpenCommitment(ctx, "alice", 1000, 30, commitment.FlagNone, 5)
	if err != nil {
		t.Fatalf("OpenCommitment failed: %v", err)
	}
	if _, _, err := s.OpenCommitment(ctx, "bob", 2000, 30, commitment.FlagNone, 5); err != nil {
		t.Fatalf("OpenCommitment failed: %v", err)
	}
	if _, _, err := s.CloseCommitment(ctx, "alice", aliceCid, 40); err != nil {
		t.Fatalf("CloseCommitment failed: %v", err)
	}

	aliceBalance, _ := s.BalanceAt(ctx, "alice", 50)
	bobBalance, _ := s.BalanceAt(ctx, "bob", 50)
	if aliceBalance != 0 {
		t.Errorf("alice balance = %d, want 0", aliceBalance)
	}
	if bobBalance != 2000 {
		t.Errorf("bob balance = %d, want 2000", bobBalance)
	}

	snap, _ := s.SnapshotAt(ctx, 50)
	if snap.TotalValue != 2000 || snap.ActiveCount != 1 {
		t.Errorf("SnapshotAt(50) = %+v, want {2000 1}", snap)
	}
}

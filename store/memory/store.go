// Package memory implements the ledger store with in-process data
// structures. It is the reference driver: the persistent drivers
// mirror its semantics.
package memory

import (
	"context"
	"sync"

	timevault "github.com/xraph/timevault"
	"github.com/xraph/timevault/aggregate"
	"github.com/xraph/timevault/checkpoint"
	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/journal"
	"github.com/xraph/timevault/registry"
	timevaultstore "github.com/xraph/timevault/store"
	"github.com/xraph/timevault/types"
)

// compile-time interface check
var _ timevaultstore.Store = (*Store)(nil)

// accountState bundles everything the ledger tracks per account.
// Commitments are keyed by their sequence number; the full identifier
// is derivable from (account, seq), so no id list is stored.
type accountState struct {
	summary     commitment.Account
	commitments map[uint64]*commitment.Commitment
	history     *checkpoint.History
}

type Store struct {
	mu sync.RWMutex

	accounts map[string]*accountState
	book     *aggregate.Book
	set      *registry.Set
	events   []journal.Event
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*accountState),
		book:     aggregate.NewBook(),
		set:      registry.NewSet(),
		events:   make([]journal.Event, 0),
	}
}

// ==================== Commitment Store ====================

func (s *Store) OpenCommitment(_ context.Context, account string, amount uint64, lockDays uint32, flags commitment.Flags, day uint32) (id.CommitmentID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.accounts[account]
	isNew := !ok
	if isNew {
		st = &accountState{
			summary: commitment.Account{
				Entity:            types.NewEntity(),
				ID:                account,
				LastCheckpointDay: day,
			},
			commitments: make(map[uint64]*commitment.Commitment),
			history:     checkpoint.NewHistory(),
		}
		s.accounts[account] = st
		s.set.Add(account)
		st.summary.Ordinal, _ = s.set.Ordinal(account)
	}

	seq := st.summary.Counter
	cid := id.NewCommitmentID(account, seq)

	// Structurally unreachable with a monotonic counter; a hit means
	// the counter is corrupted.
	if _, exists := st.commitments[seq]; exists {
		return id.NilCommitment, false, timevault.ErrCommitmentExists
	}

	st.commitments[seq] = &commitment.Commitment{
		Entity:   types.NewEntity(),
		ID:       cid,
		Amount:   amount,
		StartDay: day,
		LockDays: lockDays,
		Flags:    flags,
	}

	st.summary.Counter++
	st.summary.ActiveCount++
	st.summary.TotalActive += amount
	st.summary.LastCheckpointDay = day
	st.summary.Touch()

	st.history.Record(day, int64(amount))
	s.book.Apply(day, int64(amount), 1)

	return cid, isNew, nil
}

func (s *Store) CloseCommitment(_ context.Context, account string, cid id.CommitmentID, day uint32) (*commitment.Commitment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !cid.OwnedBy(account) {
		return nil, false, timevault.ErrNotOwner
	}

	st, ok := s.accounts[account]
	if !ok {
		return nil, false, timevault.ErrCommitmentNotFound
	}

	rec, ok := st.commitments[cid.Seq()]
	if !ok || rec.Amount == 0 {
		return nil, false, timevault.ErrCommitmentNotFound
	}
	if rec.EndDay != 0 {
		return nil, false, timevault.ErrAlreadyClosed
	}

	rec.EndDay = day
	rec.Touch()

	st.summary.ActiveCount--
	if rec.Amount > st.summary.TotalActive {
		st.summary.TotalActive = 0
	} else {
		st.summary.TotalActive -= rec.Amount
	}
	st.summary.LastCheckpointDay = day
	st.summary.Touch()

	_, clamped := st.history.Record(day, -int64(rec.Amount))
	s.book.Apply(day, -int64(rec.Amount), -1)

	out := *rec

	return &out, clamped, nil
}

func (s *Store) GetCommitment(_ context.Context, account string, cid id.CommitmentID) (*commitment.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !cid.OwnedBy(account) {
		return nil, timevault.ErrNotOwner
	}

	st, ok := s.accounts[account]
	if !ok {
		return nil, timevault.ErrCommitmentNotFound
	}

	rec, ok := st.commitments[cid.Seq()]
	if !ok || rec.Amount == 0 {
		return nil, timevault.ErrCommitmentNotFound
	}

	out := *rec

	return &out, nil
}

func (s *Store) GetAccount(_ context.Context, account string) (*commitment.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.accounts[account]
	if !ok {
		return nil, timevault.ErrAccountNotFound
	}

	out := st.summary

	return &out, nil
}

// ==================== Checkpoint Store ====================

func (s *Store) BalanceAt(_ context.Context, account string, day uint32) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.accounts[account]
	if !ok {
		return 0, nil
	}

	return st.history.At(day), nil
}

// ==================== Aggregate Store ====================

func (s *Store) SnapshotAt(_ context.Context, day uint32) (aggregate.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.book.At(day), nil
}

func (s *Store) CurrentTotal(_ context.Context) (aggregate.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.book.Current(), nil
}

// ==================== Registry Store ====================

func (s *Store) Accounts(_ context.Context, offset, count int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 || offset >= s.set.Len() {
		return nil, timevault.ErrOutOfBounds
	}

	return s.set.Page(offset, count), nil
}

func (s *Store) AccountCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.set.Len(), nil
}

// ==================== Journal Store ====================

func (s *Store) AppendEvents(_ context.Context, events []*journal.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		s.events = append(s.events, *e)
	}

	return nil
}

func (s *Store) QueryEvents(_ context.Context, account string, opts journal.QueryOpts) ([]*journal.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*journal.Event, 0)
	skipped := 0
	for i := range s.events {
		e := s.events[i]
		if e.Account != account {
			continue
		}
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		if e.Day < opts.FromDay {
			continue
		}
		if opts.ToDay != 0 && e.Day > opts.ToDay {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		result = append(result, &e)
		if opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}

	return result, nil
}

// ==================== Store management ====================

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

package timevault

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/timevault/aggregate"
	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/journal"
	"github.com/xraph/timevault/plugin"
	"github.com/xraph/timevault/store"
)

// Ledger is the time-locked deposit ledger engine.
//
// Mutations (Deposit, Close) are serialized through a single write
// lock: every write touches both the owner's checkpoint history and
// the global aggregate, and no reader may observe one half without the
// other. Reads run concurrently against the store.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   Clock

	// Single-writer gate for the deposit/close path.
	writeMu sync.Mutex

	// Background journal worker
	journalBuffer chan *journal.Event
	stopChan      chan struct{}
	wg            sync.WaitGroup

	// Configuration
	journalBatchSize     int
	journalFlushInterval time.Duration
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:                s,
		plugins:              plugin.NewRegistry(),
		logger:               slog.Default(),
		clock:                defaultClock(),
		journalBuffer:        make(chan *journal.Event, 10000),
		stopChan:             make(chan struct{}),
		journalBatchSize:     100,
		journalFlushInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithClock sets the day clock. The supplied clock must be
// non-decreasing; gaps of zero or many days between calls are fine.
func WithClock(c Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithJournalConfig configures journal batching parameters.
func WithJournalConfig(batchSize int, flushInterval time.Duration) Option {
	return func(l *Ledger) {
		l.journalBatchSize = batchSize
		l.journalFlushInterval = flushInterval
	}
}

// Start begins background workers.
func (l *Ledger) Start(ctx context.Context) error {
	// Migrate the store
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	// Start journal flush worker
	l.wg.Add(1)
	go l.journalFlushWorker(ctx)

	l.logger.Info("timevault started",
		"journal_batch_size", l.journalBatchSize,
		"journal_flush_interval", l.journalFlushInterval,
	)

	return nil
}

// Stop shuts down the Ledger, flushing any buffered journal events.
func (l *Ledger) Stop() error {
	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// CurrentDay returns the ledger's current day index per its clock.
func (l *Ledger) CurrentDay() uint32 { return l.clock.CurrentDay() }

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

// Deposit commits amount for account under a lock of lockDays,
// starting today. It returns the new commitment's deterministic
// identifier. The caller (custody layer) has already validated the
// amount and moved the underlying value; on error it must roll the
// whole operation back.
func (l *Ledger) Deposit(ctx context.Context, account string, amount uint64, lockDays uint32, flags commitment.Flags) (id.CommitmentID, error) {
	if account == "" {
		return id.NilCommitment, ErrInvalidAccount
	}
	if amount == 0 {
		return id.NilCommitment, ErrInvalidAmount
	}

	day := l.clock.CurrentDay()

	l.writeMu.Lock()
	cid, isNew, err := l.store.OpenCommitment(ctx, account, amount, lockDays, flags, day)
	l.writeMu.Unlock()
	if err != nil {
		return id.NilCommitment, err
	}

	if isNew {
		l.plugins.EmitAccountRegistered(ctx, account, day)
	}
	l.plugins.EmitCommitmentOpened(ctx, account, cid.String(), amount, day)

	l.record(&journal.Event{
		ID:           id.NewEventID(),
		Account:      account,
		CommitmentID: cid,
		Kind:         journal.KindDeposit,
		Amount:       amount,
		Day:          day,
		Timestamp:    time.Now().UTC(),
	})

	return cid, nil
}

// Close closes an open commitment, returning its amount to the owner's
// available balance as of today. Maturity gating happens in the
// custody layer before this call.
func (l *Ledger) Close(ctx context.Context, account string, cid id.CommitmentID) error {
	if account == "" {
		return ErrInvalidAccount
	}

	day := l.clock.CurrentDay()

	l.writeMu.Lock()
	rec, clamped, err := l.store.CloseCommitment(ctx, account, cid, day)
	l.writeMu.Unlock()
	if err != nil {
		return err
	}

	if clamped {
		// The underflow clamp is unreachable when commitment
		// preconditions hold; a trigger means the books are wrong.
		l.logger.Warn("checkpoint underflow clamped",
			"account", account,
			"commitment_id", cid.String(),
			"day", day,
		)
		l.plugins.EmitBalanceClamped(ctx, account, day)
	}

	l.plugins.EmitCommitmentClosed(ctx, account, cid.String(), rec.Amount, day)

	l.record(&journal.Event{
		ID:           id.NewEventID(),
		Account:      account,
		CommitmentID: cid,
		Kind:         journal.KindWithdraw,
		Amount:       rec.Amount,
		Day:          day,
		Timestamp:    time.Now().UTC(),
	})

	return nil
}

// ──────────────────────────────────────────────────
// Commitment queries
// ──────────────────────────────────────────────────

// Commitment retrieves a commitment by id, verifying ownership.
// Closed commitments remain retrievable indefinitely.
func (l *Ledger) Commitment(ctx context.Context, account string, cid id.CommitmentID) (*commitment.Commitment, error) {
	return l.store.GetCommitment(ctx, account, cid)
}

// IsActive reports whether the identified commitment is still open.
func (l *Ledger) IsActive(ctx context.Context, account string, cid id.CommitmentID) (bool, error) {
	rec, err := l.store.GetCommitment(ctx, account, cid)
	if err != nil {
		return false, err
	}

	return rec.Active(), nil
}

// CommitmentIDs reconstructs the full list of an account's commitment
// ids. Identifiers are derivable from (account, counter), so nothing
// is read beyond the summary. Unknown accounts yield an empty list.
func (l *Ledger) CommitmentIDs(ctx context.Context, account string) ([]id.CommitmentID, error) {
	sum, err := l.store.GetAccount(ctx, account)
	if err != nil {
		if IsNotFound(err) {
			return []id.CommitmentID{}, nil
		}

		return nil, err
	}

	ids := make([]id.CommitmentID, sum.Counter)
	for i := uint64(0); i < sum.Counter; i++ {
		ids[i] = id.NewCommitmentID(account, i)
	}

	return ids, nil
}

// Summary returns the account's aggregate counters.
func (l *Ledger) Summary(ctx context.Context, account string) (*commitment.Account, error) {
	return l.store.GetAccount(ctx, account)
}

// ──────────────────────────────────────────────────
// Historical queries
// ──────────────────────────────────────────────────

// BalanceAt returns the account's committed balance as of day.
// O(log k) in the number of days the balance changed.
func (l *Ledger) BalanceAt(ctx context.Context, account string, day uint32) (uint64, error) {
	return l.store.BalanceAt(ctx, account, day)
}

// BatchBalanceAt applies BalanceAt element-wise.
func (l *Ledger) BatchBalanceAt(ctx context.Context, accounts []string, day uint32) ([]uint64, error) {
	out := make([]uint64, len(accounts))
	for i, account := range accounts {
		b, err := l.store.BalanceAt(ctx, account, day)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}

	return out, nil
}

// SnapshotAt returns the global totals as of day, carrying forward
// over days with no activity.
func (l *Ledger) SnapshotAt(ctx context.Context, day uint32) (aggregate.Snapshot, error) {
	return l.store.SnapshotAt(ctx, day)
}

// CurrentTotal returns the running global totals.
func (l *Ledger) CurrentTotal(ctx context.Context) (aggregate.Snapshot, error) {
	return l.store.CurrentTotal(ctx)
}

// ──────────────────────────────────────────────────
// Registry queries
// ──────────────────────────────────────────────────

// Accounts pages through every account that has ever deposited, in
// first-deposit order. Fails with ErrOutOfBounds when offset is at or
// past the end.
func (l *Ledger) Accounts(ctx context.Context, offset, count int) ([]string, error) {
	return l.store.Accounts(ctx, offset, count)
}

// AccountCount returns the number of accounts that have ever deposited.
func (l *Ledger) AccountCount(ctx context.Context) (int, error) {
	return l.store.AccountCount(ctx)
}

// ──────────────────────────────────────────────────
// Journal
// ──────────────────────────────────────────────────

// Events queries the account's journal.
func (l *Ledger) Events(ctx context.Context, account string, opts journal.QueryOpts) ([]*journal.Event, error) {
	return l.store.QueryEvents(ctx, account, opts)
}

// record enqueues a journal event. The mutation has already committed,
// so a full buffer drops the event with a warning instead of failing
// the caller; the store remains the source of truth.
func (l *Ledger) record(e *journal.Event) {
	select {
	case l.journalBuffer <- e:
	default:
		l.logger.Warn("journal buffer full, dropping event",
			"event_id", e.ID.String(),
			"account", e.Account,
			"kind", string(e.Kind),
		)
	}
}

// journalFlushWorker flushes journal events to the store.
func (l *Ledger) journalFlushWorker(ctx context.Context) {
	defer l.wg.Done()

	batch := make([]*journal.Event, 0, l.journalBatchSize)
	ticker := time.NewTicker(l.journalFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			// Drain the buffer, then final flush
			for {
				select {
				case e := <-l.journalBuffer:
					batch = append(batch, e)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				l.flushJournalBatch(ctx, batch)
			}
			return

		case e := <-l.journalBuffer:
			batch = append(batch, e)
			if len(batch) >= l.journalBatchSize {
				l.flushJournalBatch(ctx, batch)
				batch = make([]*journal.Event, 0, l.journalBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flushJournalBatch(ctx, batch)
				batch = make([]*journal.Event, 0, l.journalBatchSize)
			}
		}
	}
}

func (l *Ledger) flushJournalBatch(ctx context.Context, batch []*journal.Event) {
	start := time.Now()

	if err := l.store.AppendEvents(ctx, batch); err != nil {
		l.logger.Error("failed to flush journal batch",
			"error", err,
			"batch_size", len(batch),
		)
		return
	}

	elapsed := time.Since(start)
	l.plugins.EmitJournalFlushed(ctx, len(batch), elapsed)

	l.logger.Debug("flushed journal batch",
		"batch_size", len(batch),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

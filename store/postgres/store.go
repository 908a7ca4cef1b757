package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	timevault "github.com/xraph/timevault"
	"github.com/xraph/timevault/aggregate"
	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/journal"
	timevaultstore "github.com/xraph/timevault/store"
)

// compile-time interface check
var _ timevaultstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
//
// Checkpoints and snapshots are rows keyed by day; the nearest-prior
// lookup the memory driver does with a binary search becomes
// "WHERE day <= $n ORDER BY day DESC LIMIT 1" against the primary key.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("timevault/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("timevault/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Commitment Store ====================

func (s *Store) OpenCommitment(ctx context.Context, account string, amount uint64, lockDays uint32, flags commitment.Flags, day uint32) (id.CommitmentID, bool, error) {
	t := now()

	acct := new(accountModel)
	isNew := false
	err := s.pg.NewSelect(acct).
		Where("id = $1", account).
		Scan(ctx)
	if err != nil {
		if !isNoRows(err) {
			return id.NilCommitment, false, err
		}

		// First deposit for this account: the registry ordinal is the
		// current account count, preserving first-deposit order.
		var n int
		if err := s.pg.NewRaw(`SELECT COUNT(*) FROM timevault_accounts`).Scan(ctx, &n); err != nil {
			return id.NilCommitment, false, err
		}

		isNew = true
		acct = &accountModel{
			ID:                account,
			Ordinal:           n,
			LastCheckpointDay: day,
			CreatedAt:         t,
			UpdatedAt:         t,
		}
		if _, err := s.pg.NewInsert(acct).Exec(ctx); err != nil {
			return id.NilCommitment, false, err
		}
	}

	seq := acct.Counter
	cid := id.NewCommitmentID(account, seq)

	cm := &commitmentModel{
		Account:   account,
		Seq:       seq,
		Amount:    amount,
		StartDay:  day,
		LockDays:  lockDays,
		Flags:     uint8(flags),
		CreatedAt: t,
		UpdatedAt: t,
	}
	if _, err := s.pg.NewInsert(cm).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return id.NilCommitment, false, timevault.ErrCommitmentExists
		}
		return id.NilCommitment, false, fmt.Errorf("timevault/postgres: create commitment: %w", err)
	}

	_, err = s.pg.NewUpdate((*accountModel)(nil)).
		Set("counter = $1", seq+1).
		Set("active_count = $2", acct.ActiveCount+1).
		Set("total_active = $3", acct.TotalActive+amount).
		Set("last_checkpoint_day = $4", day).
		Set("updated_at = $5", t).
		Where("id = $6", account).
		Exec(ctx)
	if err != nil {
		return id.NilCommitment, false, err
	}

	balance, err := s.nearestBalance(ctx, account, day)
	if err != nil {
		return id.NilCommitment, false, err
	}
	if err := s.upsertCheckpoint(ctx, account, day, balance+amount); err != nil {
		return id.NilCommitment, false, err
	}

	snap, err := s.nearestSnapshot(ctx, day)
	if err != nil {
		return id.NilCommitment, false, err
	}
	snap.TotalValue += amount
	snap.ActiveCount++
	if err := s.upsertSnapshot(ctx, day, snap); err != nil {
		return id.NilCommitment, false, err
	}

	return cid, isNew, nil
}

func (s *Store) CloseCommitment(ctx context.Context, account string, cid id.CommitmentID, day uint32) (*commitment.Commitment, bool, error) {
	if !cid.OwnedBy(account) {
		return nil, false, timevault.ErrNotOwner
	}

	cm := new(commitmentModel)
	err := s.pg.NewSelect(cm).
		Where("account = $1", account).
		Where("seq = $2", cid.Seq()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, false, timevault.ErrCommitmentNotFound
		}
		return nil, false, err
	}
	if cm.Amount == 0 {
		return nil, false, timevault.ErrCommitmentNotFound
	}
	if cm.EndDay != 0 {
		return nil, false, timevault.ErrAlreadyClosed
	}

	t := now()
	cm.EndDay = day
	cm.UpdatedAt = t
	_, err = s.pg.NewUpdate((*commitmentModel)(nil)).
		Set("end_day = $1", day).
		Set("updated_at = $2", t).
		Where("account = $3", account).
		Where("seq = $4", cid.Seq()).
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}

	acct := new(accountModel)
	if err := s.pg.NewSelect(acct).Where("id = $1", account).Scan(ctx); err != nil {
		return nil, false, err
	}

	totalActive := acct.TotalActive
	if cm.Amount > totalActive {
		totalActive = 0
	} else {
		totalActive -= cm.Amount
	}
	_, err = s.pg.NewUpdate((*accountModel)(nil)).
		Set("active_count = $1", acct.ActiveCount-1).
		Set("total_active = $2", totalActive).
		Set("last_checkpoint_day = $3", day).
		Set("updated_at = $4", t).
		Where("id = $5", account).
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}

	balance, err := s.nearestBalance(ctx, account, day)
	if err != nil {
		return nil, false, err
	}
	clamped := cm.Amount > balance
	newBalance := uint64(0)
	if !clamped {
		newBalance = balance - cm.Amount
	}
	if err := s.upsertCheckpoint(ctx, account, day, newBalance); err != nil {
		return nil, false, err
	}

	snap, err := s.nearestSnapshot(ctx, day)
	if err != nil {
		return nil, false, err
	}
	if cm.Amount > snap.TotalValue {
		snap.TotalValue = 0
	} else {
		snap.TotalValue -= cm.Amount
	}
	if snap.ActiveCount > 0 {
		snap.ActiveCount--
	}
	if err := s.upsertSnapshot(ctx, day, snap); err != nil {
		return nil, false, err
	}

	return fromCommitmentModel(cm), clamped, nil
}

func (s *Store) GetCommitment(ctx context.Context, account string, cid id.CommitmentID) (*commitment.Commitment, error) {
	if !cid.OwnedBy(account) {
		return nil, timevault.ErrNotOwner
	}

	m := new(commitmentModel)
	err := s.pg.NewSelect(m).
		Where("account = $1", account).
		Where("seq = $2", cid.Seq()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, timevault.ErrCommitmentNotFound
		}
		return nil, err
	}
	if m.Amount == 0 {
		return nil, timevault.ErrCommitmentNotFound
	}
	return fromCommitmentModel(m), nil
}

func (s *Store) GetAccount(ctx context.Context, account string) (*commitment.Account, error) {
	m := new(accountModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", account).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, timevault.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m), nil
}

// ==================== Checkpoint Store ====================

func (s *Store) BalanceAt(ctx context.Context, account string, day uint32) (uint64, error) {
	return s.nearestBalance(ctx, account, day)
}

// ==================== Aggregate Store ====================

func (s *Store) SnapshotAt(ctx context.Context, day uint32) (aggregate.Snapshot, error) {
	return s.nearestSnapshot(ctx, day)
}

func (s *Store) CurrentTotal(ctx context.Context) (aggregate.Snapshot, error) {
	m := new(snapshotModel)
	err := s.pg.NewSelect(m).
		OrderExpr("day DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return aggregate.Snapshot{}, nil
		}
		return aggregate.Snapshot{}, err
	}
	return aggregate.Snapshot{TotalValue: m.TotalValue, ActiveCount: m.ActiveCount}, nil
}

// ==================== Registry Store ====================

func (s *Store) Accounts(ctx context.Context, offset, count int) ([]string, error) {
	total, err := s.AccountCount(ctx)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= total {
		return nil, timevault.ErrOutOfBounds
	}

	var models []accountModel
	q := s.pg.NewSelect(&models).
		OrderExpr("ordinal ASC").
		Offset(offset)
	if count > 0 {
		q = q.Limit(count)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]string, len(models))
	for i := range models {
		result[i] = models[i].ID
	}
	return result, nil
}

func (s *Store) AccountCount(ctx context.Context) (int, error) {
	var n int
	err := s.pg.NewRaw(`SELECT COUNT(*) FROM timevault_accounts`).Scan(ctx, &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ==================== Journal Store ====================

func (s *Store) AppendEvents(ctx context.Context, events []*journal.Event) error {
	if len(events) == 0 {
		return nil
	}
	models := make([]eventModel, len(events))
	for i, e := range events {
		models[i] = *toEventModel(e)
	}
	_, err := s.pg.NewInsert(&models).Exec(ctx)
	return err
}

func (s *Store) QueryEvents(ctx context.Context, account string, opts journal.QueryOpts) ([]*journal.Event, error) {
	var models []eventModel
	q := s.pg.NewSelect(&models).
		Where("account = $1", account)

	argIdx := 1
	if opts.Kind != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("kind = $%d", argIdx), string(opts.Kind))
	}
	if opts.FromDay > 0 {
		argIdx++
		q = q.Where(fmt.Sprintf("day >= $%d", argIdx), opts.FromDay)
	}
	if opts.ToDay > 0 {
		argIdx++
		q = q.Where(fmt.Sprintf("day <= $%d", argIdx), opts.ToDay)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("timestamp ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*journal.Event, len(models))
	for i := range models {
		evt, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = evt
	}
	return result, nil
}

// ==================== Helpers ====================

// nearestBalance resolves the checkpoint covering day: the row with the
// greatest day not after the requested one. No row means the account
// had no balance yet.
func (s *Store) nearestBalance(ctx context.Context, account string, day uint32) (uint64, error) {
	m := new(checkpointModel)
	err := s.pg.NewSelect(m).
		Where("account = $1", account).
		Where("day <= $2", day).
		OrderExpr("day DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return m.Balance, nil
}

// nearestSnapshot resolves the global snapshot covering day, carrying
// forward over days with no activity.
func (s *Store) nearestSnapshot(ctx context.Context, day uint32) (aggregate.Snapshot, error) {
	m := new(snapshotModel)
	err := s.pg.NewSelect(m).
		Where("day <= $1", day).
		OrderExpr("day DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return aggregate.Snapshot{}, nil
		}
		return aggregate.Snapshot{}, err
	}
	return aggregate.Snapshot{TotalValue: m.TotalValue, ActiveCount: m.ActiveCount}, nil
}

func (s *Store) upsertCheckpoint(ctx context.Context, account string, day uint32, balance uint64) error {
	m := &checkpointModel{Account: account, Day: day, Balance: balance}
	_, err := s.pg.NewInsert(m).
		OnConflict("(account, day) DO UPDATE").
		Set("balance = EXCLUDED.balance").
		Exec(ctx)
	return err
}

func (s *Store) upsertSnapshot(ctx context.Context, day uint32, snap aggregate.Snapshot) error {
	m := &snapshotModel{Day: day, TotalValue: snap.TotalValue, ActiveCount: snap.ActiveCount}
	_, err := s.pg.NewInsert(m).
		OnConflict("(day) DO UPDATE").
		Set("total_value = EXCLUDED.total_value").
		Set("active_count = EXCLUDED.active_count").
		Exec(ctx)
	return err
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a PostgreSQL
// unique-constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

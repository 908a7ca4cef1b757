package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	timevault "github.com/xraph/timevault"
	"github.com/xraph/timevault/aggregate"
	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/journal"
	timevaultstore "github.com/xraph/timevault/store"
)

// Collection name constants.
const (
	colAccounts    = "timevault_accounts"
	colCommitments = "timevault_commitments"
	colCheckpoints = "timevault_checkpoints"
	colSnapshots   = "timevault_snapshots"
	colEvents      = "timevault_events"
)

// compile-time interface check
var _ timevaultstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
//
// Checkpoints and snapshots are documents keyed by day; the
// nearest-prior lookup becomes a descending find with day <= target
// and limit 1.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all timevault collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("timevault/mongo: migrate %s indexes: %w", col, err)
		}
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

	var acct accountModel
	isNew := false
	err := s.mdb.NewFind(&acct).
		Filter(bson.M{"_id": account}).
		Scan(ctx)
	if err != nil {
		if !isNoDocuments(err) {
			return id.NilCommitment, false, fmt.Errorf("timevault/mongo: get account: %w", err)
		}

		// First deposit for this account: the registry ordinal is the
		// current account count, preserving first-deposit order.
		n, err := s.mdb.Collection(colAccounts).CountDocuments(ctx, bson.M{})
		if err != nil {
			return id.NilCommitment, false, fmt.Errorf("timevault/mongo: count accounts: %w", err)
		}

		isNew = true
		acct = accountModel{
			ID:                account,
			Ordinal:           int(n),
			LastCheckpointDay: day,
			CreatedAt:         t,
			UpdatedAt:         t,
		}
		if _, err := s.mdb.NewInsert(&acct).Exec(ctx); err != nil {
			return id.NilCommitment, false, fmt.Errorf("timevault/mongo: create account: %w", err)
		}
	}

	seq := acct.Counter
	cid := id.NewCommitmentID(account, seq)

	cm := &commitmentModel{
		ID:        cid.String(),
		Account:   account,
		Seq:       seq,
		Amount:    amount,
		StartDay:  day,
		LockDays:  lockDays,
		Flags:     uint8(flags),
		CreatedAt: t,
		UpdatedAt: t,
	}
	if _, err := s.mdb.NewInsert(cm).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return id.NilCommitment, false, timevault.ErrCommitmentExists
		}
		return id.NilCommitment, false, fmt.Errorf("timevault/mongo: create commitment: %w", err)
	}

	_, err = s.mdb.NewUpdate((*accountModel)(nil)).
		Filter(bson.M{"_id": account}).
		Set("counter", seq+1).
		Set("active_count", acct.ActiveCount+1).
		Set("total_active", acct.TotalActive+amount).
		Set("last_checkpoint_day", day).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return id.NilCommitment, false, fmt.Errorf("timevault/mongo: update account: %w", err)
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

	var cm commitmentModel
	err := s.mdb.NewFind(&cm).
		Filter(bson.M{"_id": cid.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, false, timevault.ErrCommitmentNotFound
		}
		return nil, false, fmt.Errorf("timevault/mongo: get commitment: %w", err)
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
	_, err = s.mdb.NewUpdate((*commitmentModel)(nil)).
		Filter(bson.M{"_id": cid.String()}).
		Set("end_day", day).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("timevault/mongo: close commitment: %w", err)
	}

	var acct accountModel
	if err := s.mdb.NewFind(&acct).Filter(bson.M{"_id": account}).Scan(ctx); err != nil {
		return nil, false, fmt.Errorf("timevault/mongo: get account: %w", err)
	}

	totalActive := acct.TotalActive
	if cm.Amount > totalActive {
		totalActive = 0
	} else {
		totalActive -= cm.Amount
	}
	_, err = s.mdb.NewUpdate((*accountModel)(nil)).
		Filter(bson.M{"_id": account}).
		Set("active_count", acct.ActiveCount-1).
		Set("total_active", totalActive).
		Set("last_checkpoint_day", day).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("timevault/mongo: update account: %w", err)
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

	return fromCommitmentModel(&cm), clamped, nil
}

func (s *Store) GetCommitment(ctx context.Context, account string, cid id.CommitmentID) (*commitment.Commitment, error) {
	if !cid.OwnedBy(account) {
		return nil, timevault.ErrNotOwner
	}

	var m commitmentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": cid.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, timevault.ErrCommitmentNotFound
		}
		return nil, fmt.Errorf("timevault/mongo: get commitment: %w", err)
	}
	if m.Amount == 0 {
		return nil, timevault.ErrCommitmentNotFound
	}
	return fromCommitmentModel(&m), nil
}

func (s *Store) GetAccount(ctx context.Context, account string) (*commitment.Account, error) {
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": account}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, timevault.ErrAccountNotFound
		}
		return nil, fmt.Errorf("timevault/mongo: get account: %w", err)
	}
	return fromAccountModel(&m), nil
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
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return aggregate.Snapshot{}, nil
		}
		return aggregate.Snapshot{}, fmt.Errorf("timevault/mongo: current total: %w", err)
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
	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "ordinal", Value: 1}}).
		Skip(int64(offset))
	if count > 0 {
		q = q.Limit(int64(count))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("timevault/mongo: list accounts: %w", err)
	}

	result := make([]string, len(models))
	for i := range models {
		result[i] = models[i].ID
	}
	return result, nil
}

func (s *Store) AccountCount(ctx context.Context) (int, error) {
	n, err := s.mdb.Collection(colAccounts).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("timevault/mongo: count accounts: %w", err)
	}
	return int(n), nil
}

// ==================== Journal Store ====================

func (s *Store) AppendEvents(ctx context.Context, events []*journal.Event) error {
	for _, e := range events {
		m := toEventModel(e)
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("timevault/mongo: append event: %w", err)
		}
	}
	return nil
}

func (s *Store) QueryEvents(ctx context.Context, account string, opts journal.QueryOpts) ([]*journal.Event, error) {
	var models []eventModel

	filter := bson.M{"account": account}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if opts.FromDay > 0 || opts.ToDay > 0 {
		dayFilter := bson.M{}
		if opts.FromDay > 0 {
			dayFilter["$gte"] = opts.FromDay
		}
		if opts.ToDay > 0 {
			dayFilter["$lte"] = opts.ToDay
		}
		filter["day"] = dayFilter
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "timestamp", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("timevault/mongo: query events: %w", err)
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

// nearestBalance resolves the checkpoint covering day: the document
// with the greatest day not after the requested one.
func (s *Store) nearestBalance(ctx context.Context, account string, day uint32) (uint64, error) {
	var m checkpointModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"account": account, "day": bson.M{"$lte": day}}).
		Sort(bson.D{{Key: "day", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("timevault/mongo: balance lookup: %w", err)
	}
	return m.Balance, nil
}

// nearestSnapshot resolves the global snapshot covering day, carrying
// forward over days with no activity.
func (s *Store) nearestSnapshot(ctx context.Context, day uint32) (aggregate.Snapshot, error) {
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": bson.M{"$lte": day}}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return aggregate.Snapshot{}, nil
		}
		return aggregate.Snapshot{}, fmt.Errorf("timevault/mongo: snapshot lookup: %w", err)
	}
	return aggregate.Snapshot{TotalValue: m.TotalValue, ActiveCount: m.ActiveCount}, nil
}

func (s *Store) upsertCheckpoint(ctx context.Context, account string, day uint32, balance uint64) error {
	docID := fmt.Sprintf("%s#%d", account, day)
	_, err := s.mdb.NewUpdate((*checkpointModel)(nil)).
		Filter(bson.M{"_id": docID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":     docID,
			"account": account,
			"day":     day,
			"balance": balance,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("timevault/mongo: upsert checkpoint: %w", err)
	}
	return nil
}

func (s *Store) upsertSnapshot(ctx context.Context, day uint32, snap aggregate.Snapshot) error {
	_, err := s.mdb.NewUpdate((*snapshotModel)(nil)).
		Filter(bson.M{"_id": day}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":          day,
			"total_value":  snap.TotalValue,
			"active_count": snap.ActiveCount,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("timevault/mongo: upsert snapshot: %w", err)
	}
	return nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all timevault collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAccounts: {
			{
				Keys:    bson.D{{Key: "ordinal", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colCommitments: {
			{Keys: bson.D{{Key: "account", Value: 1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "account", Value: 1}, {Key: "end_day", Value: 1}}},
		},
		colCheckpoints: {
			{
				Keys:    bson.D{{Key: "account", Value: 1}, {Key: "day", Value: -1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colSnapshots: {},
		colEvents: {
			{Keys: bson.D{{Key: "account", Value: 1}, {Key: "day", Value: 1}}},
			{Keys: bson.D{{Key: "account", Value: 1}, {Key: "kind", Value: 1}}},
		},
	}
}

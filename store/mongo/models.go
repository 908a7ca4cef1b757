package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/timevault/commitment"
	"github.com/xraph/timevault/id"
	"github.com/xraph/timevault/journal"
	"github.com/xraph/timevault/types"
)

// ==================== Account models ====================

type accountModel struct {
	grove.BaseModel `grove:"table:timevault_accounts"`

	ID                string    `grove:"id,pk"               bson:"_id"`
	Ordinal           int       `grove:"ordinal"             bson:"ordinal"`
	Counter           uint64    `grove:"counter"             bson:"counter"`
	ActiveCount       uint32    `grove:"active_count"        bson:"active_count"`
	TotalActive       uint64    `grove:"total_active"        bson:"total_active"`
	TotalRewarded     uint64    `grove:"total_rewarded"      bson:"total_rewarded"`
	TotalClaimed      uint64    `grove:"total_claimed"       bson:"total_claimed"`
	LastCheckpointDay uint32    `grove:"last_checkpoint_day" bson:"last_checkpoint_day"`
	CreatedAt         time.Time `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"          bson:"updated_at"`
}

func fromAccountModel(m *accountModel) *commitment.Account {
	return &commitment.Account{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                m.ID,
		Ordinal:           m.Ordinal,
		Counter:           m.Counter,
		ActiveCount:       m.ActiveCount,
		TotalActive:       m.TotalActive,
		TotalRewarded:     m.TotalRewarded,
		TotalClaimed:      m.TotalClaimed,
		LastCheckpointDay: m.LastCheckpointDay,
	}
}

// ==================== Commitment models ====================

// Commitment documents use the full "account#seq" identifier as _id so
// lookups by commitment id stay single-key.
type commitmentModel struct {
	grove.BaseModel `grove:"table:timevault_commitments"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Account   string    `grove:"account"    bson:"account"`
	Seq       uint64    `grove:"seq"        bson:"seq"`
	Amount    uint64    `grove:"amount"     bson:"amount"`
	StartDay  uint32    `grove:"start_day"  bson:"start_day"`
	EndDay    uint32    `grove:"end_day"    bson:"end_day"`
	LockDays  uint32    `grove:"lock_days"  bson:"lock_days"`
	Flags     uint8     `grove:"flags"      bson:"flags"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func fromCommitmentModel(m *commitmentModel) *commitment.Commitment {
	return &commitment.Commitment{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       id.NewCommitmentID(m.Account, m.Seq),
		Amount:   m.Amount,
		StartDay: m.StartDay,
		EndDay:   m.EndDay,
		LockDays: m.LockDays,
		Flags:    commitment.Flags(m.Flags),
	}
}

// ==================== Checkpoint models ====================

type checkpointModel struct {
	grove.BaseModel `grove:"table:timevault_checkpoints"`

	ID      string `grove:"id,pk"   bson:"_id"` // "account#day"
	Account string `grove:"account" bson:"account"`
	Day     uint32 `grove:"day"     bson:"day"`
	Balance uint64 `grove:"balance" bson:"balance"`
}

// ==================== Snapshot models ====================

type snapshotModel struct {
	grove.BaseModel `grove:"table:timevault_snapshots"`

	Day         uint32 `grove:"day,pk"       bson:"_id"`
	TotalValue  uint64 `grove:"total_value"  bson:"total_value"`
	ActiveCount uint32 `grove:"active_count" bson:"active_count"`
}

// ==================== Journal event models ====================

type eventModel struct {
	grove.BaseModel `grove:"table:timevault_events"`

	ID           string    `grove:"id,pk"         bson:"_id"`
	Account      string    `grove:"account"       bson:"account"`
	CommitmentID string    `grove:"commitment_id" bson:"commitment_id"`
	Kind         string    `grove:"kind"          bson:"kind"`
	Amount       uint64    `grove:"amount"        bson:"amount"`
	Day          uint32    `grove:"day"           bson:"day"`
	Timestamp    time.Time `grove:"timestamp"     bson:"timestamp"`
}

func toEventModel(e *journal.Event) *eventModel {
	return &eventModel{
		ID:           e.ID.String(),
		Account:      e.Account,
		CommitmentID: e.CommitmentID.String(),
		Kind:         string(e.Kind),
		Amount:       e.Amount,
		Day:          e.Day,
		Timestamp:    e.Timestamp,
	}
}

func fromEventModel(m *eventModel) (*journal.Event, error) {
	eid, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	cid, err := id.ParseCommitmentID(m.CommitmentID)
	if err != nil {
		return nil, err
	}

	return &journal.Event{
		ID:           eid,
		Account:      m.Account,
		CommitmentID: cid,
		Kind:         journal.Kind(m.Kind),
		Amount:       m.Amount,
		Day:          m.Day,
		Timestamp:    m.Timestamp,
	}, nil
}

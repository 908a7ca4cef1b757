package postgres

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

	ID                string    `grove:"id,pk"`
	Ordinal           int       `grove:"ordinal"`
	Counter           uint64    `grove:"counter"`
	ActiveCount       uint32    `grove:"active_count"`
	TotalActive       uint64    `grove:"total_active"`
	TotalRewarded     uint64    `grove:"total_rewarded"`
	TotalClaimed      uint64    `grove:"total_claimed"`
	LastCheckpointDay uint32    `grove:"last_checkpoint_day"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
}

func toAccountModel(a *commitment.Account) *accountModel {
	return &accountModel{
		ID:                a.ID,
		Ordinal:           a.Ordinal,
		Counter:           a.Counter,
		ActiveCount:       a.ActiveCount,
		TotalActive:       a.TotalActive,
		TotalRewarded:     a.TotalRewarded,
		TotalClaimed:      a.TotalClaimed,
		LastCheckpointDay: a.LastCheckpointDay,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
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

type commitmentModel struct {
	grove.BaseModel `grove:"table:timevault_commitments"`

	Account   string    `grove:"account,pk"`
	Seq       uint64    `grove:"seq,pk"`
	Amount    uint64    `grove:"amount"`
	StartDay  uint32    `grove:"start_day"`
	EndDay    uint32    `grove:"end_day"`
	LockDays  uint32    `grove:"lock_days"`
	Flags     uint8     `grove:"flags"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toCommitmentModel(c *commitment.Commitment) *commitmentModel {
	return &commitmentModel{
		Account:   c.ID.Account(),
		Seq:       c.ID.Seq(),
		Amount:    c.Amount,
		StartDay:  c.StartDay,
		EndDay:    c.EndDay,
		LockDays:  c.LockDays,
		Flags:     uint8(c.Flags),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
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

	Account string `grove:"account,pk"`
	Day     uint32 `grove:"day,pk"`
	Balance uint64 `grove:"balance"`
}

// ==================== Snapshot models ====================

type snapshotModel struct {
	grove.BaseModel `grove:"table:timevault_snapshots"`

	Day         uint32 `grove:"day,pk"`
	TotalValue  uint64 `grove:"total_value"`
	ActiveCount uint32 `grove:"active_count"`
}

// ==================== Journal event models ====================

type eventModel struct {
	grove.BaseModel `grove:"table:timevault_events"`

	ID           string    `grove:"id,pk"`
	Account      string    `grove:"account"`
	CommitmentID string    `grove:"commitment_id"`
	Kind         string    `grove:"kind"`
	Amount       uint64    `grove:"amount"`
	Day          uint32    `grove:"day"`
	Timestamp    time.Time `grove:"timestamp"`
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

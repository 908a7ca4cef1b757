package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the TimeVault store.
var Migrations = migrate.NewGroup("timevault")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_timevault_accounts",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS timevault_accounts (
    id                  TEXT PRIMARY KEY,
    ordinal             INT NOT NULL DEFAULT 0,
    counter             BIGINT NOT NULL DEFAULT 0,
    active_count        INT NOT NULL DEFAULT 0,
    total_active        BIGINT NOT NULL DEFAULT 0,
    total_rewarded      BIGINT NOT NULL DEFAULT 0,
    total_claimed       BIGINT NOT NULL DEFAULT 0,
    last_checkpoint_day INT NOT NULL DEFAULT 0,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_timevault_accounts_ordinal ON timevault_accounts (ordinal);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS timevault_accounts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_timevault_commitments",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS timevault_commitments (
    account    TEXT NOT NULL,
    seq        BIGINT NOT NULL,
    amount     BIGINT NOT NULL DEFAULT 0,
    start_day  INT NOT NULL DEFAULT 0,
    end_day    INT NOT NULL DEFAULT 0,
    lock_days  INT NOT NULL DEFAULT 0,
    flags      SMALLINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (account, seq)
);

CREATE INDEX IF NOT EXISTS idx_timevault_commitments_open ON timevault_commitments (account, end_day);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS timevault_commitments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_timevault_checkpoints",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS timevault_checkpoints (
    account TEXT NOT NULL,
    day     INT NOT NULL,
    balance BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (account, day)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS timevault_checkpoints`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_timevault_snapshots",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS timevault_snapshots (
    day          INT PRIMARY KEY,
    total_value  BIGINT NOT NULL DEFAULT 0,
    active_count INT NOT NULL DEFAULT 0
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS timevault_snapshots`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_timevault_events",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS timevault_events (
    id            TEXT PRIMARY KEY,
    account       TEXT NOT NULL DEFAULT '',
    commitment_id TEXT NOT NULL DEFAULT '',
    kind          TEXT NOT NULL DEFAULT '',
    amount        BIGINT NOT NULL DEFAULT 0,
    day           INT NOT NULL DEFAULT 0,
    timestamp     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_timevault_events_account_day ON timevault_events (account, day);
CREATE INDEX IF NOT EXISTS idx_timevault_events_kind ON timevault_events (account, kind);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS timevault_events`)
				return err
			},
		},
	)
}

// Package plugin provides an extensible plugin system for Ledger.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Commitment lifecycle hooks
// ──────────────────────────────────────────────────

// OnCommitmentOpened is called after a deposit creates a commitment.
type OnCommitmentOpened interface {
	Plugin
	OnCommitmentOpened(ctx context.Context, account, commitmentID string, amount uint64, day uint32) error
}

// OnCommitmentClosed is called after a commitment is closed.
type OnCommitmentClosed interface {
	Plugin
	OnCommitmentClosed(ctx context.Context, account, commitmentID string, amount uint64, day uint32) error
}

// ──────────────────────────────────────────────────
// Account hooks
// ──────────────────────────────────────────────────

// OnAccountRegistered is called when an account makes its first deposit.
type OnAccountRegistered interface {
	Plugin
	OnAccountRegistered(ctx context.Context, account string, day uint32) error
}

// OnBalanceClamped is called when a close would have driven a
// checkpoint balance below zero and the balance was clamped instead.
// This firing at all means the books disagree with the commitments.
type OnBalanceClamped interface {
	Plugin
	OnBalanceClamped(ctx context.Context, account string, day uint32) error
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed is called when journal events are flushed to the store.
type OnJournalFlushed interface {
	Plugin
	OnJournalFlushed(ctx context.Context, count int, elapsed time.Duration) error
}

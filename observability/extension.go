// Package observability provides a metrics extension for TimeVault that
// records lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/timevault/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnCommitmentOpened  = (*MetricsExtension)(nil)
	_ plugin.OnCommitmentClosed  = (*MetricsExtension)(nil)
	_ plugin.OnAccountRegistered = (*MetricsExtension)(nil)
	_ plugin.OnBalanceClamped    = (*MetricsExtension)(nil)
	_ plugin.OnJournalFlushed    = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a TimeVault plugin to automatically track ledger metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Commitment metrics
	CommitmentsOpened Counter
	CommitmentsClosed Counter
	DepositAmount     Histogram
	WithdrawAmount    Histogram

	// Account metrics
	AccountsRegistered Counter

	// Integrity metrics. BalancesClamped should stay at zero; any
	// increment means a checkpoint disagreed with the commitment book.
	BalancesClamped Counter

	// Journal metrics
	JournalBatchSize    Histogram
	JournalFlushLatency Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Commitment metrics
		CommitmentsOpened: factory.Counter("timevault.commitment.opened"),
		CommitmentsClosed: factory.Counter("timevault.commitment.closed"),
		DepositAmount:     factory.Histogram("timevault.deposit.amount"),
		WithdrawAmount:    factory.Histogram("timevault.withdraw.amount"),

		// Account metrics
		AccountsRegistered: factory.Counter("timevault.account.registered"),

		// Integrity metrics
		BalancesClamped: factory.Counter("timevault.balance.clamped"),

		// Journal metrics
		JournalBatchSize:    factory.Histogram("timevault.journal.batch.size"),
		JournalFlushLatency: factory.Histogram("timevault.journal.flush.latency_ms"),

		// Error metrics
		StoreErrors:  factory.Counter("timevault.store.errors"),
		PluginErrors: factory.Counter("timevault.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Commitment lifecycle hooks
// ──────────────────────────────────────────────────

// OnCommitmentOpened implements plugin.OnCommitmentOpened.
func (m *MetricsExtension) OnCommitmentOpened(_ context.Context, _, _ string, amount uint64, _ uint32) error {
	m.CommitmentsOpened.Inc()
	m.DepositAmount.Observe(float64(amount))
	return nil
}

// OnCommitmentClosed implements plugin.OnCommitmentClosed.
func (m *MetricsExtension) OnCommitmentClosed(_ context.Context, _, _ string, amount uint64, _ uint32) error {
	m.CommitmentsClosed.Inc()
	m.WithdrawAmount.Observe(float64(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Account hooks
// ──────────────────────────────────────────────────

// OnAccountRegistered implements plugin.OnAccountRegistered.
func (m *MetricsExtension) OnAccountRegistered(_ context.Context, _ string, _ uint32) error {
	m.AccountsRegistered.Inc()
	return nil
}

// OnBalanceClamped implements plugin.OnBalanceClamped.
func (m *MetricsExtension) OnBalanceClamped(_ context.Context, _ string, _ uint32) error {
	m.BalancesClamped.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (m *MetricsExtension) OnJournalFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.JournalBatchSize.Observe(float64(count))
	m.JournalFlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

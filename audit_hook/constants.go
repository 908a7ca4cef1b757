package audithook

// Action constants for audit events.
const (
	// Commitment actions
	ActionCommitmentOpened = "commitment.opened"
	ActionCommitmentClosed = "commitment.closed"

	// Account actions
	ActionAccountRegistered = "account.registered"

	// Integrity actions
	ActionBalanceClamped = "balance.clamped"

	// Journal actions
	ActionJournalFlushed = "journal.flushed"
)

// Resource constants for audit events.
const (
	ResourceCommitment = "commitment"
	ResourceAccount    = "account"
	ResourceCheckpoint = "checkpoint"
	ResourceJournal    = "journal"
)

// Category constants for audit events.
const (
	CategoryLedger    = "ledger"
	CategoryAccount   = "account"
	CategoryIntegrity = "integrity"
	CategoryJournal   = "journal"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)

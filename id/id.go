// Package id defines identity types for Timevault entities.
//
// Commitment identifiers are deterministic composites of the owning
// account and a per-account sequence number, so ownership can be
// verified by decoding alone, with no lookup required. Journal event
// identifiers are TypeID-based (UUIDv7), K-sortable, and URL-safe.
package id

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"go.jetify.com/typeid/v2"
)

// Separator joins the account and sequence components of a
// CommitmentID's string form. Account identifiers must not contain it.
const Separator = "#"

// CommitmentID identifies a single commitment. It is allocated from the
// owning account's monotonic counter at creation time: the sequence
// number equals the account's commitment count before the create.
// Identifiers are never reused.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type CommitmentID struct {
	account string
	seq     uint64
	valid   bool
}

// NilCommitment is the zero-value CommitmentID.
var NilCommitment CommitmentID

// NewCommitmentID builds the identifier for the seq-th commitment of
// the given account. The same inputs always produce the same ID.
func NewCommitmentID(account string, seq uint64) CommitmentID {
	return CommitmentID{account: account, seq: seq, valid: account != ""}
}

// ParseCommitmentID parses the canonical "account#seq" string form.
func ParseCommitmentID(s string) (CommitmentID, error) {
	if s == "" {
		return NilCommitment, fmt.Errorf("id: parse %q: empty string", s)
	}

	i := strings.LastIndex(s, Separator)
	if i <= 0 || i == len(s)-1 {
		return NilCommitment, fmt.Errorf("id: parse %q: want account%sseq", s, Separator)
	}

	seq, err := strconv.ParseUint(s[i+1:], 10, 64)
	if err != nil {
		return NilCommitment, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return CommitmentID{account: s[:i], seq: seq, valid: true}, nil
}

// MustParseCommitmentID is like ParseCommitmentID but panics on error.
// Use for hardcoded ID values.
func MustParseCommitmentID(s string) CommitmentID {
	parsed, err := ParseCommitmentID(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// Account returns the owning account decoded from the identifier.
func (c CommitmentID) Account() string { return c.account }

// Seq returns the per-account sequence number.
func (c CommitmentID) Seq() uint64 { return c.seq }

// OwnedBy reports whether the identifier decodes to the given account.
func (c CommitmentID) OwnedBy(account string) bool {
	return c.valid && c.account == account
}

// IsNil reports whether this ID is the zero value.
func (c CommitmentID) IsNil() bool { return !c.valid }

// String returns the canonical "account#seq" form. Returns an empty
// string for the nil ID.
func (c CommitmentID) String() string {
	if !c.valid {
		return ""
	}

	return c.account + Separator + strconv.FormatUint(c.seq, 10)
}

// MarshalText implements encoding.TextMarshaler.
func (c CommitmentID) MarshalText() ([]byte, error) {
	if !c.valid {
		return []byte{}, nil
	}

	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CommitmentID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*c = NilCommitment

		return nil
	}

	parsed, err := ParseCommitmentID(string(data))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the nil ID so optional columns store NULL.
func (c CommitmentID) Value() (driver.Value, error) {
	if !c.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return c.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (c *CommitmentID) Scan(src any) error {
	if src == nil {
		*c = NilCommitment

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*c = NilCommitment

			return nil
		}

		return c.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*c = NilCommitment

			return nil
		}

		return c.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into CommitmentID", src)
	}
}

// ──────────────────────────────────────────────────
// Journal event IDs
// ──────────────────────────────────────────────────

// PrefixEvent is the TypeID prefix for journal events.
const PrefixEvent = "tvevt"

// EventID identifies a journal event. It wraps a TypeID providing a
// prefix-qualified, globally unique, sortable identifier in the format
// "tvevt_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type EventID struct {
	inner typeid.TypeID
	valid bool
}

// NilEvent is the zero-value EventID.
var NilEvent EventID

// NewEventID generates a new globally unique journal event ID.
func NewEventID() EventID {
	tid, err := typeid.Generate(PrefixEvent)
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", PrefixEvent, err))
	}

	return EventID{inner: tid, valid: true}
}

// ParseEventID parses a TypeID string (e.g. "tvevt_01h2xcejqtf2nbrexx3vqjhp41")
// and validates the event prefix.
func ParseEventID(s string) (EventID, error) {
	if s == "" {
		return NilEvent, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return NilEvent, fmt.Errorf("id: parse %q: %w", s, err)
	}

	if tid.Prefix() != PrefixEvent {
		return NilEvent, fmt.Errorf("id: expected prefix %q, got %q", PrefixEvent, tid.Prefix())
	}

	return EventID{inner: tid, valid: true}, nil
}

// String returns the full TypeID string representation.
// Returns an empty string for the nil ID.
func (e EventID) String() string {
	if !e.valid {
		return ""
	}

	return e.inner.String()
}

// IsNil reports whether this ID is the zero value.
func (e EventID) IsNil() bool { return !e.valid }

// MarshalText implements encoding.TextMarshaler.
func (e EventID) MarshalText() ([]byte, error) {
	if !e.valid {
		return []byte{}, nil
	}

	return []byte(e.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EventID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*e = NilEvent

		return nil
	}

	parsed, err := ParseEventID(string(data))
	if err != nil {
		return err
	}

	*e = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
func (e EventID) Value() (driver.Value, error) {
	if !e.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return e.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (e *EventID) Scan(src any) error {
	if src == nil {
		*e = NilEvent

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*e = NilEvent

			return nil
		}

		return e.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*e = NilEvent

			return nil
		}

		return e.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into EventID", src)
	}
}

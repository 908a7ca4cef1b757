package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/timevault/id"
)

func TestCommitmentIDDeterminism(t *testing.T) {
	a := id.NewCommitmentID("alice", 3)
	b := id.NewCommitmentID("alice", 3)
	if a != b {
		t.Errorf("same inputs produced different IDs: %v != %v", a, b)
	}
	if a.String() != "alice#3" {
		t.Errorf("expected %q, got %q", "alice#3", a.String())
	}
}

func TestCommitmentIDComponents(t *testing.T) {
	cid := id.NewCommitmentID("bob", 42)
	if cid.Account() != "bob" {
		t.Errorf("Account() = %q, want %q", cid.Account(), "bob")
	}
	if cid.Seq() != 42 {
		t.Errorf("Seq() = %d, want 42", cid.Seq())
	}
}

func TestCommitmentIDOwnership(t *testing.T) {
	cid := id.NewCommitmentID("alice", 0)
	if !cid.OwnedBy("alice") {
		t.Error("expected ownership by alice")
	}
	if cid.OwnedBy("bob") {
		t.Error("bob must not own alice's commitment")
	}
	if id.NilCommitment.OwnedBy("") {
		t.Error("nil ID must not claim ownership of anything")
	}
}

func TestCommitmentIDParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		account string
		seq     uint64
	}{
		{"simple", "alice", 0},
		{"large seq", "bob", 18446744073709551615},
		{"account with separator", "org#ops", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := id.NewCommitmentID(tt.account, tt.seq)
			parsed, err := id.ParseCommitmentID(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed != original {
				t.Errorf("round-trip mismatch: %v != %v", parsed, original)
			}
		})
	}
}

func TestCommitmentIDParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no separator", "alice42"},
		{"missing seq", "alice#"},
		{"missing account", "#42"},
		{"non-numeric seq", "alice#abc"},
		{"negative seq", "alice#-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.ParseCommitmentID(tt.input); err == nil {
				t.Errorf("expected error for %q, got nil", tt.input)
			}
		})
	}
}

func TestMustParseCommitmentIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid input")
		}
	}()
	id.MustParseCommitmentID("not-an-id")
}

func TestNilCommitmentID(t *testing.T) {
	var cid id.CommitmentID
	if !cid.IsNil() {
		t.Error("zero-value CommitmentID should be nil")
	}
	if cid.String() != "" {
		t.Errorf("expected empty string, got %q", cid.String())
	}
}

func TestCommitmentIDMarshalUnmarshalText(t *testing.T) {
	original := id.NewCommitmentID("carol", 9)
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.CommitmentID
	if unmarshalErr := restored.UnmarshalText(data); unmarshalErr != nil {
		t.Fatalf("UnmarshalText failed: %v", unmarshalErr)
	}
	if restored != original {
		t.Errorf("mismatch: %v != %v", restored, original)
	}

	// Nil round-trip.
	var nilID id.CommitmentID
	data, err = nilID.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText(nil) failed: %v", err)
	}
	var restored2 id.CommitmentID
	if err := restored2.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !restored2.IsNil() {
		t.Error("expected nil after round-trip of nil ID")
	}
}

func TestCommitmentIDValueScan(t *testing.T) {
	original := id.NewCommitmentID("dave", 12)
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.CommitmentID
	if scanErr := scanned.Scan(val); scanErr != nil {
		t.Fatalf("Scan failed: %v", scanErr)
	}
	if scanned != original {
		t.Errorf("mismatch: %v != %v", scanned, original)
	}

	// Nil round-trip.
	var nilID id.CommitmentID
	val, err = nilID.Value()
	if err != nil {
		t.Fatalf("Value(nil) failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}

	var scanned2 id.CommitmentID
	if err := scanned2.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of nil")
	}
}

func TestEventIDPrefix(t *testing.T) {
	got := id.NewEventID().String()
	if !strings.HasPrefix(got, id.PrefixEvent+"_") {
		t.Errorf("expected prefix %q, got %q", id.PrefixEvent+"_", got)
	}
}

func TestEventIDParseRoundTrip(t *testing.T) {
	original := id.NewEventID()
	parsed, err := id.ParseEventID(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
	}
}

func TestEventIDRejectsForeignPrefix(t *testing.T) {
	if _, err := id.ParseEventID("user_01h2xcejqtf2nbrexx3vqjhp41"); err == nil {
		t.Error("expected error for foreign prefix")
	}
	if _, err := id.ParseEventID(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestEventIDUniqueness(t *testing.T) {
	a := id.NewEventID()
	b := id.NewEventID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewEventID() calls returned the same ID: %q", a.String())
	}
}

package commitment_test

import (
	"testing"

	"github.com/xraph/timevault/commitment"
)

func TestFlagsHas(t *testing.T) {
	tests := []struct {
		name  string
		flags commitment.Flags
		check commitment.Flags
		want  bool
	}{
		{"none has none", commitment.FlagNone, commitment.FlagNone, true},
		{"none lacks migrated", commitment.FlagNone, commitment.FlagMigrated, false},
		{"migrated has migrated", commitment.FlagMigrated, commitment.FlagMigrated, true},
		{"combined has each", commitment.FlagMigrated | commitment.FlagExtended, commitment.FlagExtended, true},
		{"combined has both", commitment.FlagMigrated | commitment.FlagExtended, commitment.FlagMigrated | commitment.FlagExtended, true},
		{"single lacks combined", commitment.FlagMigrated, commitment.FlagMigrated | commitment.FlagExtended, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.Has(tt.check); got != tt.want {
				t.Errorf("Flags(%b).Has(%b) = %v, want %v", tt.flags, tt.check, got, tt.want)
			}
		})
	}
}

func TestCommitmentActive(t *testing.T) {
	open := &commitment.Commitment{Amount: 100, StartDay: 5}
	if !open.Active() {
		t.Error("open commitment with amount should be active")
	}

	closed := &commitment.Commitment{Amount: 100, StartDay: 5, EndDay: 30}
	if closed.Active() {
		t.Error("closed commitment should not be active")
	}

	empty := &commitment.Commitment{StartDay: 5}
	if empty.Active() {
		t.Error("zero-amount commitment should not be active")
	}
}

func TestCommitmentMaturity(t *testing.T) {
	c := &commitment.Commitment{Amount: 100, StartDay: 10, LockDays: 30}

	if got := c.MaturityDay(); got != 40 {
		t.Errorf("MaturityDay() = %d, want 40", got)
	}
	if c.MaturedBy(39) {
		t.Error("should not be matured one day early")
	}
	if !c.MaturedBy(40) {
		t.Error("should be matured on the maturity day")
	}
	if !c.MaturedBy(100) {
		t.Error("should be matured well past the maturity day")
	}
}

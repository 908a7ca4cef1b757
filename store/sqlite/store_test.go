package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"constraint failure", errors.New("constraint failed: UNIQUE constraint failed: timevault_commitments.account, timevault_commitments.seq (2067)"), true},
		{"wrapped constraint failure", fmt.Errorf("exec insert: %w", errors.New("UNIQUE constraint failed: timevault_accounts.id")), true},
		{"connection error", errors.New("database is locked"), false},
		{"no rows", sql.ErrNoRows, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNoRows(t *testing.T) {
	if !isNoRows(sql.ErrNoRows) {
		t.Error("sql.ErrNoRows should classify as no rows")
	}
	if !isNoRows(fmt.Errorf("scan: %w", sql.ErrNoRows)) {
		t.Error("wrapped sql.ErrNoRows should classify as no rows")
	}
	if isNoRows(errors.New("disk I/O error")) {
		t.Error("unrelated errors must not classify as no rows")
	}
}

package aggregate_test

import (
	"testing"

	"github.com/xraph/timevault/aggregate"
)

func TestBookEmpty(t *testing.T) {
	b := aggregate.NewBook()
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
	if got := b.Current(); got != (aggregate.Snapshot{}) {
		t.Errorf("Current() on empty book = %+v, want zero", got)
	}
	if got := b.At(50); got != (aggregate.Snapshot{}) {
		t.Errorf("At(50) on empty book = %+v, want zero", got)
	}
}

func TestBookApplyAndCarryForward(t *testing.T) {
	b := aggregate.NewBook()

	b.Apply(10, 1000, 1)
	b.Apply(10, 500, 1)
	b.Apply(40, -500, -1)

	tests := []struct {
		name string
		day  uint32
		want aggregate.Snapshot
	}{
		{"before activity", 9, aggregate.Snapshot{}},
		{"first active day", 10, aggregate.Snapshot{TotalValue: 1500, ActiveCount: 2}},
		{"idle gap carries forward", 25, aggregate.Snapshot{TotalValue: 1500, ActiveCount: 2}},
		{"close day", 40, aggregate.Snapshot{TotalValue: 1000, ActiveCount: 1}},
		{"after last day", 90, aggregate.Snapshot{TotalValue: 1000, ActiveCount: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.At(tt.day); got != tt.want {
				t.Errorf("At(%d) = %+v, want %+v", tt.day, got, tt.want)
			}
		})
	}

	if got := b.Current(); got != (aggregate.Snapshot{TotalValue: 1000, ActiveCount: 1}) {
		t.Errorf("Current() = %+v, want {1000 1}", got)
	}
}

func TestBookLazyMaterialization(t *testing.T) {
	b := aggregate.NewBook()

	b.Apply(1, 100, 1)
	b.Apply(50, 200, 1)

	// Only the two written days are materialized; the gap is not.
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if _, ok := b.Materialized(25); ok {
		t.Error("day 25 should not be materialized")
	}

	// The second day was seeded from the first before its deltas.
	snap, ok := b.Materialized(50)
	if !ok {
		t.Fatal("day 50 should be materialized")
	}
	if want := (aggregate.Snapshot{TotalValue: 300, ActiveCount: 2}); snap != want {
		t.Errorf("Materialized(50) = %+v, want %+v", snap, want)
	}
}

func TestBookSameDayAccumulates(t *testing.T) {
	b := aggregate.NewBook()

	b.Apply(7, 100, 1)
	b.Apply(7, -100, -1)

	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
	if got := b.At(7); got != (aggregate.Snapshot{}) {
		t.Errorf("At(7) = %+v, want zero after offsetting deltas", got)
	}
}

func TestBookClampsBothFields(t *testing.T) {
	b := aggregate.NewBook()

	b.Apply(1, 100, 1)
	snap := b.Apply(2, -500, -3)

	if snap.TotalValue != 0 {
		t.Errorf("TotalValue = %d, want 0 after clamp", snap.TotalValue)
	}
	if snap.ActiveCount != 0 {
		t.Errorf("ActiveCount = %d, want 0 after clamp", snap.ActiveCount)
	}
	if got := b.Current(); got != snap {
		t.Errorf("Current() = %+v, out of step with Apply result %+v", got, snap)
	}
}

func TestBookApplyReturnsUpdatedSnapshot(t *testing.T) {
	b := aggregate.NewBook()

	got := b.Apply(3, 250, 1)
	want := aggregate.Snapshot{TotalValue: 250, ActiveCount: 1}
	if got != want {
		t.Errorf("Apply returned %+v, want %+v", got, want)
	}
}

package timevault

import "time"

// Clock supplies the ledger's day index. The ledger never computes
// this itself: the value must be non-decreasing across calls, but it
// may repeat or jump forward by many days between operations.
type Clock interface {
	CurrentDay() uint32
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() uint32

// CurrentDay implements Clock.
func (f ClockFunc) CurrentDay() uint32 { return f() }

// WallClock returns a Clock that derives the day index from wall time:
// day N covers [dayZero + N*dayLength, dayZero + (N+1)*dayLength).
// Times before dayZero report day 0.
func WallClock(dayZero time.Time, dayLength time.Duration) Clock {
	return ClockFunc(func() uint32 {
		elapsed := time.Since(dayZero)
		if elapsed < 0 {
			return 0
		}

		return uint32(elapsed / dayLength)
	})
}

// DefaultDayLength is the day granularity used when none is configured.
const DefaultDayLength = 24 * time.Hour

// defaultClock counts UTC days since the Unix epoch.
func defaultClock() Clock {
	return WallClock(time.Unix(0, 0).UTC(), DefaultDayLength)
}

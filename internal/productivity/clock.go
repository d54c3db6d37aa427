package productivity

import "time"

// Clock supplies the reference instant for every time-relative computation.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

package stats

import "time"

// Clock provides the current time. It exists so tests can substitute a
// deterministic time source.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

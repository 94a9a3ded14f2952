package hours

import (
	"fmt"
	"time"
)

// Clock is a time of day expressed as minutes past midnight.
type Clock int

const (
	MidnightClock Clock = 0
	// EndOfDayClock is 23:59, the conventional "whole day" band end.
	EndOfDayClock Clock = 23*60 + 59
)

func ParseClock(str string) (Clock, error) {
	var h, m int
	if _, err := fmt.Sscanf(str, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", str, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", str)
	}
	return Clock(h*60 + m), nil
}

// MustParseClock panics on invalid input. For literals in tests and defaults.
func MustParseClock(str string) Clock {
	c, err := ParseClock(str)
	if err != nil {
		panic(err)
	}
	return c
}

func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Band is a repeating daily time-of-day interval [Start, End).
// When End < Start the band wraps past midnight, e.g. 17:00-07:00.
type Band struct {
	Start Clock
	End   Clock
}

func ParseBand(start, end string) (Band, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Band{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Band{}, err
	}
	return Band{Start: s, End: e}, nil
}

func (b Band) Wraps() bool {
	return b.End < b.Start
}

func (b Band) Contains(c Clock) bool {
	if b.Wraps() {
		return c >= b.Start || c < b.End
	}
	return c >= b.Start && c < b.End
}

// IsWholeDay reports whether the band is the 00:00-23:59 default,
// which is treated as "no constraint" by callers.
func (b Band) IsWholeDay() bool {
	return b.Start == MidnightClock && b.End == EndOfDayClock
}

func (b Band) String() string {
	return fmt.Sprintf("%s-%s", b.Start, b.End)
}

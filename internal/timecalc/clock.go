package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day with second resolution, counted from midnight.
type Clock int

const day = Clock(24 * 60 * 60)

// NewClock builds a Clock from its components. It does not validate them.
func NewClock(h, m, s int) Clock {
	return Clock(h*3600 + m*60 + s)
}

// ClockOf returns the time of day of t in t's location, truncated to the second.
func ClockOf(t time.Time) Clock {
	h, m, s := t.Clock()
	return NewClock(h, m, s)
}

// ParseClock accepts "HH:MM" or "HH:MM:SS", surrounding spaces allowed.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time format %q (want HH:MM or HH:MM:SS)", s)
	}
	limits := []int{23, 59, 59}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid time format %q (want HH:MM or HH:MM:SS)", s)
		}
		vals[i] = n
	}
	return NewClock(vals[0], vals[1], vals[2]), nil
}

// MustParseClock is ParseClock for constants; it panics on bad input.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Add shifts c by d, wrapping around midnight.
func (c Clock) Add(d time.Duration) Clock {
	v := (int(c) + int(d/time.Second)) % int(day)
	if v < 0 {
		v += int(day)
	}
	return Clock(v)
}

// On combines c with the calendar date of date.
func (c Clock) On(date time.Time) time.Time {
	h, m, s := c.Components()
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, date.Location())
}

// Components returns hours, minutes and seconds.
func (c Clock) Components() (h, m, s int) {
	return int(c) / 3600, (int(c) % 3600) / 60, int(c) % 60
}

// Distance is the absolute difference between two clocks in seconds, without
// wrapping around midnight.
func (c Clock) Distance(o Clock) int {
	if c > o {
		return int(c - o)
	}
	return int(o - c)
}

// Since is how far c lies after o going forward around the clock, in
// [0, 24h).
func (c Clock) Since(o Clock) time.Duration {
	d := (c - o) % day
	if d < 0 {
		d += day
	}
	return time.Duration(d) * time.Second
}

func (c Clock) String() string {
	h, m, s := c.Components()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Range is an inclusive time-of-day range. A range whose Start is after its
// End wraps past midnight.
type Range struct {
	Start Clock
	End   Clock
}

// ParseRange parses "HH:MM-HH:MM" (seconds optional on either side).
func ParseRange(s string) (Range, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return Range{}, fmt.Errorf("invalid range %q (want HH:MM-HH:MM)", s)
	}
	a, err := ParseClock(start)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	b, err := ParseClock(end)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	return Range{Start: a, End: b}, nil
}

// Wraps reports whether the range crosses midnight.
func (r Range) Wraps() bool {
	return r.Start > r.End
}

// Contains reports whether c lies in the range, both ends inclusive.
func (r Range) Contains(c Clock) bool {
	if r.Wraps() {
		return c >= r.Start || c <= r.End
	}
	return c >= r.Start && c <= r.End
}

// ContainsTime is Contains applied to the time of day of t.
func (r Range) ContainsTime(t time.Time) bool {
	return r.Contains(ClockOf(t))
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

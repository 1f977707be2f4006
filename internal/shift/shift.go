// Package shift describes the fixed shift patterns swipes are matched against.
package shift

import (
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

// Code identifies one of the fixed shift patterns.
type Code string

const (
	Morning   Code = "A"
	Afternoon Code = "B"
	Night     Code = "C"
)

// Codes lists every shift code in matching order.
var Codes = []Code{Morning, Afternoon, Night}

// ParseCode maps "A", "B" or "C" to a Code.
func ParseCode(s string) (Code, error) {
	for _, c := range Codes {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown shift code %q (want A, B or C)", s)
}

// Validation errors returned (wrapped) by Rules.Validate.
var (
	ErrMissingShift    = errors.New("shift not configured")
	ErrDisplayName     = errors.New("display name is empty")
	ErrEmptyRange      = errors.New("range start equals end")
	ErrBreakRangeWraps = errors.New("break search range must not cross midnight")
	ErrOutsideBreak    = errors.New("checkpoint outside break search range")
	ErrCutoffOrder     = errors.New("late threshold must be one second after on-time cutoff")
	ErrNonPositive     = errors.New("duration must be positive")
	ErrDuplicateShift  = errors.New("shift configured twice")
)

// Cutoff splits arrivals into on time (at or before OnTime) and late (at or
// after Late). Late is exactly one second after OnTime, so every clock falls
// on one side. Either may sit just past midnight; arrivals are judged within
// twelve hours of the cutoff.
type Cutoff struct {
	OnTime timecalc.Clock
	Late   timecalc.Clock
}

// NewCutoff derives a cutoff from a start time and a grace period.
func NewCutoff(start timecalc.Clock, grace time.Duration) Cutoff {
	onTime := start.Add(grace)
	return Cutoff{OnTime: onTime, Late: onTime.Add(time.Second)}
}

// Validate checks that Late directly follows OnTime.
func (c Cutoff) Validate() error {
	if c.Late != c.OnTime.Add(time.Second) {
		return fmt.Errorf("cutoff %s / %s: %w", c.OnTime, c.Late, ErrCutoffOrder)
	}
	return nil
}

// Window holds the search ranges and cutoffs for one shift.
type Window struct {
	Code        Code
	DisplayName string

	CheckIn     timecalc.Range
	CheckOut    timecalc.Range
	BreakSearch timecalc.Range

	// BreakCheckpoint is the expected break start; gap selection picks the
	// break-out nearest to it.
	BreakCheckpoint timecalc.Clock
	// BreakMidpoint splits break swipes when no gap qualifies.
	BreakMidpoint timecalc.Clock

	CheckInCutoff Cutoff
	BreakInCutoff Cutoff

	MinBreakGap time.Duration
}

// CrossesMidnight reports whether the shift ends on the day after it starts,
// i.e. its check-out range lies before its check-in range on the clock.
func (w Window) CrossesMidnight() bool {
	return w.CheckOut.End < w.CheckIn.Start
}

// ActivityEnd is the last instant a swipe may belong to an instance of this
// shift that started on date.
func (w Window) ActivityEnd(date time.Time) time.Time {
	if w.CrossesMidnight() {
		date = timecalc.NextDay(date)
	}
	return w.CheckOut.End.On(date)
}

// Validate checks one window in isolation.
func (w Window) Validate() error {
	if w.DisplayName == "" {
		return ErrDisplayName
	}
	ranges := []struct {
		name string
		r    timecalc.Range
	}{
		{"check-in", w.CheckIn},
		{"check-out", w.CheckOut},
		{"break search", w.BreakSearch},
	}
	for _, nr := range ranges {
		if nr.r.Start == nr.r.End {
			return fmt.Errorf("%s range %s: %w", nr.name, nr.r, ErrEmptyRange)
		}
	}
	if w.BreakSearch.Wraps() {
		return fmt.Errorf("break search range %s: %w", w.BreakSearch, ErrBreakRangeWraps)
	}
	if !w.BreakSearch.Contains(w.BreakCheckpoint) {
		return fmt.Errorf("break checkpoint %s: %w", w.BreakCheckpoint, ErrOutsideBreak)
	}
	if !w.BreakSearch.Contains(w.BreakMidpoint) {
		return fmt.Errorf("break midpoint %s: %w", w.BreakMidpoint, ErrOutsideBreak)
	}
	if err := w.CheckInCutoff.Validate(); err != nil {
		return fmt.Errorf("check-in %w", err)
	}
	if err := w.BreakInCutoff.Validate(); err != nil {
		return fmt.Errorf("break-in %w", err)
	}
	if w.MinBreakGap <= 0 {
		return fmt.Errorf("minimum break gap %v: %w", w.MinBreakGap, ErrNonPositive)
	}
	return nil
}

// Rules is the complete, validated rule set for a processing run.
type Rules struct {
	BurstThreshold time.Duration
	// Windows are kept in Codes order.
	Windows []Window
}

// Window returns the window for c.
func (r Rules) Window(c Code) (Window, bool) {
	for _, w := range r.Windows {
		if w.Code == c {
			return w, true
		}
	}
	return Window{}, false
}

// Validate checks every window and that each code appears exactly once.
func (r Rules) Validate() error {
	if r.BurstThreshold <= 0 {
		return fmt.Errorf("burst threshold %v: %w", r.BurstThreshold, ErrNonPositive)
	}
	seen := map[Code]bool{}
	for _, w := range r.Windows {
		if seen[w.Code] {
			return fmt.Errorf("shift %s: %w", w.Code, ErrDuplicateShift)
		}
		seen[w.Code] = true
		if err := w.Validate(); err != nil {
			return fmt.Errorf("shift %s: %w", w.Code, err)
		}
	}
	for _, c := range Codes {
		if !seen[c] {
			return fmt.Errorf("shift %s: %w", c, ErrMissingShift)
		}
	}
	return nil
}

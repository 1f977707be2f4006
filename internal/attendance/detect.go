package attendance

import (
	"time"

	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

type detectState int

const (
	seeking detectState = iota
	inside
)

// detector walks an ordered burst slice with a single cursor. Instances refer
// to contiguous index ranges of that slice, so no burst can belong to two.
type detector struct {
	rules  shift.Rules
	bursts []model.Burst
	pos    int
	state  detectState

	// open instance, valid while state == inside
	first     int
	code      shift.Code
	window    shift.Window
	date      time.Time
	windowEnd time.Time

	instances []model.ShiftInstance
	orphans   int
}

// DetectInstances partitions bursts (ordered by person, then start) into
// shift instances. Bursts that open no instance and fall in no open instance
// are counted as orphans and dropped.
func DetectInstances(bursts []model.Burst, rules shift.Rules) ([]model.ShiftInstance, int) {
	d := &detector{rules: rules, bursts: bursts}
	for d.pos < len(d.bursts) {
		switch d.state {
		case seeking:
			d.seek()
		case inside:
			d.extend()
		}
	}
	if d.state == inside {
		d.close()
	}
	return d.instances, d.orphans
}

// matchCheckIn returns the first window, in code order, whose check-in range
// contains c.
func (d *detector) matchCheckIn(c timecalc.Clock) (shift.Window, bool) {
	for _, w := range d.rules.Windows {
		if w.CheckIn.Contains(c) {
			return w, true
		}
	}
	return shift.Window{}, false
}

func (d *detector) seek() {
	b := d.bursts[d.pos]
	w, ok := d.matchCheckIn(timecalc.ClockOf(b.Start))
	if !ok {
		d.orphans++
		d.pos++
		return
	}
	d.first = d.pos
	d.code = w.Code
	d.window = w
	d.date = timecalc.StartOfDay(b.Start)
	d.windowEnd = w.ActivityEnd(d.date)
	d.state = inside
	d.pos++
}

func (d *detector) extend() {
	b := d.bursts[d.pos]
	owner := d.bursts[d.first]
	if b.PersonID != owner.PersonID || b.Start.After(d.windowEnd) || d.startsOtherShift(b) {
		d.close()
		return
	}
	d.pos++
}

// startsOtherShift reports whether b looks like the check-in of a different
// shift. A swipe inside the open shift's own check-out range never does, so
// late check-outs are not mistaken for the next shift's arrival.
func (d *detector) startsOtherShift(b model.Burst) bool {
	c := timecalc.ClockOf(b.Start)
	if d.window.CheckOut.Contains(c) {
		return false
	}
	for _, w := range d.rules.Windows {
		if w.Code != d.code && w.CheckIn.Contains(c) {
			return true
		}
	}
	return false
}

func (d *detector) close() {
	owner := d.bursts[d.first]
	d.instances = append(d.instances, model.ShiftInstance{
		ID:         len(d.instances),
		PersonID:   owner.PersonID,
		PersonName: owner.PersonName,
		Code:       d.code,
		Date:       d.date,
		Bursts:     d.bursts[d.first:d.pos:d.pos],
	})
	d.state = seeking
}

package attendance

import (
	"time"

	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
)

// ExtractCheckIn returns the earliest burst start inside the check-in range.
func ExtractCheckIn(bursts []model.Burst, w shift.Window) *time.Time {
	var in *time.Time
	for _, b := range bursts {
		if !w.CheckIn.ContainsTime(b.Start) {
			continue
		}
		if in == nil || b.Start.Before(*in) {
			start := b.Start
			in = &start
		}
	}
	return in
}

// ExtractCheckOut returns the latest burst end inside the check-out range.
func ExtractCheckOut(bursts []model.Burst, w shift.Window) *time.Time {
	var out *time.Time
	for _, b := range bursts {
		if !w.CheckOut.ContainsTime(b.End) {
			continue
		}
		if out == nil || b.End.After(*out) {
			end := b.End
			out = &end
		}
	}
	return out
}

package attendance

import (
	"time"

	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

// Evaluate classifies t against cut: nil is absent, the half day starting at
// the late threshold is late, the half day before it is on time. Comparing
// around the clock keeps cutoffs next to midnight working.
func Evaluate(t *time.Time, cut shift.Cutoff) model.Status {
	if t == nil {
		return model.StatusAbsent
	}
	if timecalc.ClockOf(*t).Since(cut.Late) < 12*time.Hour {
		return model.StatusLate
	}
	return model.StatusOnTime
}

package attendance

import (
	"time"

	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

// DetectBreak finds the break departure and return of one shift instance.
//
// Bursts touching the break search range are the candidates. If any two
// consecutive candidates are separated by at least the minimum gap, the
// departure is the gap-opening burst end nearest the break checkpoint and the
// return is the gap-closing burst start nearest the break-in cutoff; the two
// are chosen independently and may come from different gaps. Otherwise the
// candidates are split at the midpoint: the latest end at or before it is
// the departure, the earliest start after it the return. Either result may
// be nil.
func DetectBreak(bursts []model.Burst, w shift.Window) (breakOut, breakIn *time.Time) {
	var candidates []model.Burst
	for _, b := range bursts {
		if w.BreakSearch.ContainsTime(b.Start) || w.BreakSearch.ContainsTime(b.End) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if out, in, ok := breakByGap(candidates, w); ok {
		return out, in
	}
	return breakByMidpoint(candidates, w.BreakMidpoint)
}

func breakByGap(candidates []model.Burst, w shift.Window) (breakOut, breakIn *time.Time, ok bool) {
	bestOut, bestIn := -1, -1
	var outDist, inDist int
	for i := 0; i+1 < len(candidates); i++ {
		prev, next := candidates[i], candidates[i+1]
		if next.Start.Sub(prev.End) < w.MinBreakGap {
			continue
		}
		if d := timecalc.ClockOf(prev.End).Distance(w.BreakCheckpoint); bestOut < 0 || d < outDist {
			bestOut, outDist = i, d
		}
		if d := timecalc.ClockOf(next.Start).Distance(w.BreakInCutoff.OnTime); bestIn < 0 || d < inDist {
			bestIn, inDist = i+1, d
		}
	}
	if bestOut < 0 {
		return nil, nil, false
	}
	out := candidates[bestOut].End
	in := candidates[bestIn].Start
	return &out, &in, true
}

func breakByMidpoint(candidates []model.Burst, midpoint timecalc.Clock) (breakOut, breakIn *time.Time) {
	for _, b := range candidates {
		if timecalc.ClockOf(b.End) <= midpoint {
			if breakOut == nil || b.End.After(*breakOut) {
				end := b.End
				breakOut = &end
			}
		}
		if timecalc.ClockOf(b.Start) > midpoint {
			if breakIn == nil || b.Start.Before(*breakIn) {
				start := b.Start
				breakIn = &start
			}
		}
	}
	return breakOut, breakIn
}

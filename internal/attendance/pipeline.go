package attendance

import (
	"cmp"
	"slices"

	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
)

// Stats are the informational counters of a run.
type Stats struct {
	Swipes    int
	Bursts    int
	Merged    int
	Orphans   int
	Instances int
}

// Result holds one record per shift instance plus run diagnostics.
type Result struct {
	Records []model.AttendanceRecord
	Stats   Stats
}

// Process runs the whole pipeline. events may arrive in any order; a sorted
// copy (by person, then timestamp) is processed and the caller's slice is
// left untouched. rules must already be validated.
func Process(events []model.SwipeEvent, rules shift.Rules) Result {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b model.SwipeEvent) int {
		if c := cmp.Compare(a.PersonID, b.PersonID); c != 0 {
			return c
		}
		return a.Timestamp.Compare(b.Timestamp)
	})

	bursts, merged := Consolidate(sorted, rules.BurstThreshold)
	instances, orphans := DetectInstances(bursts, rules)

	records := make([]model.AttendanceRecord, 0, len(instances))
	for _, inst := range instances {
		w, ok := rules.Window(inst.Code)
		if !ok {
			continue
		}
		records = append(records, BuildRecord(inst, w))
	}
	slices.SortStableFunc(records, compareRecords)

	return Result{
		Records: records,
		Stats: Stats{
			Swipes:    len(events),
			Bursts:    len(bursts),
			Merged:    merged,
			Orphans:   orphans,
			Instances: len(instances),
		},
	}
}

// BuildRecord extracts every event of one shift instance.
func BuildRecord(inst model.ShiftInstance, w shift.Window) model.AttendanceRecord {
	checkIn := ExtractCheckIn(inst.Bursts, w)
	breakOut, breakIn := DetectBreak(inst.Bursts, w)
	return model.AttendanceRecord{
		Date:          inst.Date.Format("2006-01-02"),
		PersonID:      inst.PersonID,
		PersonName:    inst.PersonName,
		Shift:         w.DisplayName,
		ShiftCode:     w.Code,
		CheckIn:       checkIn,
		CheckInStatus: Evaluate(checkIn, w.CheckInCutoff),
		BreakOut:      breakOut,
		BreakIn:       breakIn,
		BreakInStatus: Evaluate(breakIn, w.BreakInCutoff),
		CheckOut:      ExtractCheckOut(inst.Bursts, w),
	}
}

func compareRecords(a, b model.AttendanceRecord) int {
	if c := cmp.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.PersonID, b.PersonID); c != 0 {
		return c
	}
	return cmp.Compare(a.ShiftCode, b.ShiftCode)
}

package attendance_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/shiftlog/internal/attendance"
	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

func TestEvaluate(t *testing.T) {
	rules := shift.Default()
	morning, _ := rules.Window(shift.Morning)
	night, _ := rules.Window(shift.Night)

	tests := []struct {
		name  string
		clock string
		cut   shift.Cutoff
		want  model.Status
	}{
		{"early arrival", "05:30:00", morning.CheckInCutoff, model.StatusOnTime},
		{"last on-time second", "06:04:59", morning.CheckInCutoff, model.StatusOnTime},
		{"first late second", "06:05:00", morning.CheckInCutoff, model.StatusLate},
		{"well late", "06:30:00", morning.CheckInCutoff, model.StatusLate},
		{"break return on time", "10:34:59", morning.BreakInCutoff, model.StatusOnTime},
		{"break return late", "10:35:00", morning.BreakInCutoff, model.StatusLate},
		{"night break return", "02:44:51", night.BreakInCutoff, model.StatusOnTime},
		{"night break return late", "02:50:00", night.BreakInCutoff, model.StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := at(t, "2025-11-04", tt.clock)
			if got := attendance.Evaluate(&ts, tt.cut); got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.clock, got, tt.want)
			}
		})
	}
}

func TestEvaluateAcrossMidnight(t *testing.T) {
	lastSecond := shift.Cutoff{OnTime: timecalc.MustParseClock("23:59:59"), Late: timecalc.MustParseClock("00:00:00")}
	pastMidnight := shift.NewCutoff(timecalc.MustParseClock("23:58"), shift.Grace)

	tests := []struct {
		name  string
		clock string
		cut   shift.Cutoff
		want  model.Status
	}{
		{"before midnight cutoff", "23:58:00", lastSecond, model.StatusOnTime},
		{"on the cutoff", "23:59:59", lastSecond, model.StatusOnTime},
		{"at midnight", "00:00:00", lastSecond, model.StatusLate},
		{"after midnight", "00:10:00", lastSecond, model.StatusLate},
		{"start before midnight", "23:57:00", pastMidnight, model.StatusOnTime},
		{"grace after midnight", "00:02:59", pastMidnight, model.StatusOnTime},
		{"late after midnight", "00:03:00", pastMidnight, model.StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := at(t, "2025-11-04", tt.clock)
			if got := attendance.Evaluate(&ts, tt.cut); got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.clock, got, tt.want)
			}
		})
	}
}

func TestEvaluateAbsent(t *testing.T) {
	var missing *time.Time
	if got := attendance.Evaluate(missing, shift.NewCutoff(0, shift.Grace)); got != model.StatusAbsent {
		t.Errorf("Evaluate(nil) = %v, want absent", got)
	}
}

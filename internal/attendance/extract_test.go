package attendance_test

import (
	"testing"

	"github.com/Tiliavir/shiftlog/internal/attendance"
	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
)

func TestExtract(t *testing.T) {
	morning, _ := shift.Default().Window(shift.Morning)
	night, _ := shift.Default().Window(shift.Night)

	tests := []struct {
		name    string
		window  shift.Window
		bursts  []model.Burst
		wantIn  string
		wantOut string
	}{
		{
			name:   "earliest in, latest out",
			window: morning,
			bursts: []model.Burst{
				burst(t, "2025-11-04", "05:55", "05:56"),
				burst(t, "2025-11-04", "06:10", "06:10"),
				burst(t, "2025-11-04", "13:45", "13:45"),
				burst(t, "2025-11-04", "14:02", "14:03"),
			},
			wantIn:  "05:55:00",
			wantOut: "14:03:00",
		},
		{
			name:   "check-out uses burst end",
			window: morning,
			bursts: []model.Burst{
				burst(t, "2025-11-04", "06:00", "06:00"),
				burst(t, "2025-11-04", "13:29", "13:31"),
			},
			wantIn:  "06:00:00",
			wantOut: "13:31:00",
		},
		{
			name:   "range bounds inclusive",
			window: morning,
			bursts: []model.Burst{
				burst(t, "2025-11-04", "05:30", "05:30"),
				burst(t, "2025-11-04", "14:35", "14:35"),
			},
			wantIn:  "05:30:00",
			wantOut: "14:35:00",
		},
		{
			name:   "nothing in either range",
			window: morning,
			bursts: []model.Burst{
				burst(t, "2025-11-04", "10:00", "10:00"),
			},
		},
		{
			name:   "night ranges across midnight",
			window: night,
			bursts: []model.Burst{
				burst(t, "2025-11-03", "21:58", "21:58"),
				burst(t, "2025-11-04", "02:00", "02:00"),
				burst(t, "2025-11-04", "06:01", "06:01"),
			},
			wantIn:  "21:58:00",
			wantOut: "06:01:00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clockOf(attendance.ExtractCheckIn(tt.bursts, tt.window)); got != tt.wantIn {
				t.Errorf("check-in = %q, want %q", got, tt.wantIn)
			}
			if got := clockOf(attendance.ExtractCheckOut(tt.bursts, tt.window)); got != tt.wantOut {
				t.Errorf("check-out = %q, want %q", got, tt.wantOut)
			}
		})
	}
}

package shift

import (
	"time"

	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

// Grace is the default time after a shift or break start that still counts
// as on time; the late threshold follows one second later.
const Grace = 4*time.Minute + 59*time.Second

// DefaultBurstThreshold merges swipes up to two minutes apart.
const DefaultBurstThreshold = 2 * time.Minute

func clock(s string) timecalc.Clock { return timecalc.MustParseClock(s) }

func rng(a, b string) timecalc.Range { return timecalc.Range{Start: clock(a), End: clock(b)} }

func window(code Code, name string, checkIn, checkOut, breakSearch [2]string, shiftStart, checkpoint, midpoint, breakEnd string) Window {
	return Window{
		Code:            code,
		DisplayName:     name,
		CheckIn:         rng(checkIn[0], checkIn[1]),
		CheckOut:        rng(checkOut[0], checkOut[1]),
		BreakSearch:     rng(breakSearch[0], breakSearch[1]),
		BreakCheckpoint: clock(checkpoint),
		BreakMidpoint:   clock(midpoint),
		CheckInCutoff:   NewCutoff(clock(shiftStart), Grace),
		BreakInCutoff:   NewCutoff(clock(breakEnd), Grace),
		MinBreakGap:     5 * time.Minute,
	}
}

// Default returns the standard three-shift roster: Morning 06:00-14:00,
// Afternoon 14:00-22:00 and Night 22:00-06:00 with one break each.
func Default() Rules {
	return Rules{
		BurstThreshold: DefaultBurstThreshold,
		Windows: []Window{
			window(Morning, "Morning",
				[2]string{"05:30", "06:35"}, [2]string{"13:30", "14:35"}, [2]string{"09:50", "10:35"},
				"06:00", "10:00", "10:15", "10:30"),
			window(Afternoon, "Afternoon",
				[2]string{"13:30", "14:35"}, [2]string{"21:30", "22:35"}, [2]string{"17:50", "18:35"},
				"14:00", "18:00", "18:15", "18:30"),
			window(Night, "Night",
				[2]string{"21:30", "22:35"}, [2]string{"05:30", "06:35"}, [2]string{"01:50", "02:50"},
				"22:00", "02:00", "02:22:30", "02:45"),
		},
	}
}

package attendance_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/shiftlog/internal/model"
)

// at parses "2006-01-02" plus "15:04" or "15:04:05" in UTC.
func at(t *testing.T, day, clock string) time.Time {
	t.Helper()
	if len(clock) == 5 {
		clock += ":00"
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", day+" "+clock, time.UTC)
	if err != nil {
		t.Fatalf("bad timestamp %s %s: %v", day, clock, err)
	}
	return ts
}

// swipes builds events for one person on one day.
func swipes(t *testing.T, person, day string, clocks ...string) []model.SwipeEvent {
	t.Helper()
	events := make([]model.SwipeEvent, 0, len(clocks))
	for _, c := range clocks {
		events = append(events, model.SwipeEvent{PersonID: person, PersonName: person, Timestamp: at(t, day, c)})
	}
	return events
}

// burst builds a burst for one person on one day.
func burst(t *testing.T, day, start, end string) model.Burst {
	t.Helper()
	return model.Burst{PersonID: "TPL0001", Start: at(t, day, start), End: at(t, day, end), Swipes: 1}
}

func clockOf(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format("15:04:05")
}

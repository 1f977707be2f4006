package cmd

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/Tiliavir/shiftlog/internal/attendance"
	"github.com/Tiliavir/shiftlog/internal/ingest"
	"github.com/Tiliavir/shiftlog/internal/model"
)

var (
	bold   = color.New(color.Bold)
	warn   = color.New(color.FgYellow)
	bad    = color.New(color.FgRed)
	good   = color.New(color.FgGreen)
	subtle = color.New(color.FgHiBlack)
)

// formatElapsed formats a run time as "1h 2m 3s", "2m 5s", "4s" or "350ms".
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// statusText colours a status label: green on time, red late, grey absent.
func statusText(s model.Status) string {
	switch s {
	case model.StatusOnTime:
		return good.Sprint(s)
	case model.StatusLate:
		return bad.Sprint(s)
	default:
		return subtle.Sprint("-")
	}
}

// tally counts attendance problems for one person.
type tally struct {
	PersonID         string `json:"person_id"`
	PersonName       string `json:"person_name"`
	Shifts           int    `json:"shifts"`
	LateCheckIns     int    `json:"late_check_ins"`
	LateBreakReturns int    `json:"late_break_returns"`
	MissingCheckOuts int    `json:"missing_check_outs"`
	WorkedSeconds    int64  `json:"worked_seconds"`
}

func (t *tally) add(r model.AttendanceRecord) {
	t.Shifts++
	if r.CheckInStatus == model.StatusLate {
		t.LateCheckIns++
	}
	if r.BreakInStatus == model.StatusLate {
		t.LateBreakReturns++
	}
	if r.CheckOut == nil {
		t.MissingCheckOuts++
	}
	if r.CheckIn != nil && r.CheckOut != nil {
		t.WorkedSeconds += int64(r.CheckOut.Sub(*r.CheckIn).Seconds())
	}
}

// tallyByPerson aggregates records per person, ordered by person ID.
func tallyByPerson(records []model.AttendanceRecord) []tally {
	byID := map[string]*tally{}
	var order []string
	for _, r := range records {
		t, ok := byID[r.PersonID]
		if !ok {
			t = &tally{PersonID: r.PersonID, PersonName: r.PersonName}
			byID[r.PersonID] = t
			order = append(order, r.PersonID)
		}
		t.add(r)
	}
	sort.Strings(order)

	out := make([]tally, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

// printSummary writes the diagnostics of one process run.
func printSummary(w io.Writer, input string, b ingest.Batch, res attendance.Result, elapsed time.Duration) {
	var total tally
	for _, r := range res.Records {
		total.add(r)
	}
	s := res.Stats

	bold.Fprintf(w, "Processed %s in %s\n", input, formatElapsed(elapsed))
	fmt.Fprintf(w, "  %-22s%d\n", "Rows read", b.Rows)
	fmt.Fprintf(w, "  %-22s%d\n", "Filtered (status)", b.FilteredStatus)
	fmt.Fprintf(w, "  %-22s%d\n", "Filtered (user)", b.FilteredUsers)
	count(w, "Invalid timestamps", b.InvalidTimestamps, warn)
	fmt.Fprintf(w, "  %-22s%d\n", "Swipes", s.Swipes)
	fmt.Fprintf(w, "  %-22s%d (%d merged)\n", "Bursts", s.Bursts, s.Merged)
	count(w, "Orphan bursts", s.Orphans, warn)
	fmt.Fprintf(w, "  %-22s%d\n", "Shift records", len(res.Records))
	count(w, "Late check-ins", total.LateCheckIns, bad)
	count(w, "Late break returns", total.LateBreakReturns, bad)
	count(w, "Missing check-outs", total.MissingCheckOuts, warn)
}

// count prints a labelled number, coloured when non-zero.
func count(w io.Writer, label string, n int, c *color.Color) {
	if n == 0 {
		fmt.Fprintf(w, "  %-22s%d\n", label, n)
		return
	}
	fmt.Fprintf(w, "  %-22s%s\n", label, c.Sprint(n))
}

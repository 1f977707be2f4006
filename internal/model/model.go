package model

import (
	"fmt"
	"time"

	"github.com/Tiliavir/shiftlog/internal/shift"
)

// SwipeEvent is one successful scan by a known person.
type SwipeEvent struct {
	PersonID   string    `json:"person_id"`
	PersonName string    `json:"person_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// Burst is a run of swipes by one person, each at most the burst threshold
// after the previous one.
type Burst struct {
	PersonID   string
	PersonName string
	Start      time.Time
	End        time.Time
	Swipes     int
}

// ShiftInstance is one work session attributed to a shift and the calendar
// date of its check-in.
type ShiftInstance struct {
	ID         int
	PersonID   string
	PersonName string
	Code       shift.Code
	Date       time.Time
	Bursts     []Burst
}

// Status classifies a check-in or break return.
type Status int

const (
	StatusAbsent Status = iota
	StatusOnTime
	StatusLate
)

func (s Status) String() string {
	switch s {
	case StatusOnTime:
		return "On Time"
	case StatusLate:
		return "Late"
	default:
		return ""
	}
}

// MarshalText renders the status label so JSON day files stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the labels produced by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "On Time":
		*s = StatusOnTime
	case "Late":
		*s = StatusLate
	case "":
		*s = StatusAbsent
	default:
		return fmt.Errorf("unknown status %q", string(b))
	}
	return nil
}

// AttendanceRecord is the cleaned result for one shift instance. Missing
// events are nil.
type AttendanceRecord struct {
	Date          string     `json:"date"`
	PersonID      string     `json:"person_id"`
	PersonName    string     `json:"person_name"`
	Shift         string     `json:"shift"`
	ShiftCode     shift.Code `json:"shift_code"`
	CheckIn       *time.Time `json:"check_in"`
	CheckInStatus Status     `json:"check_in_status"`
	BreakOut      *time.Time `json:"break_out"`
	BreakIn       *time.Time `json:"break_in"`
	BreakInStatus Status     `json:"break_in_status"`
	CheckOut      *time.Time `json:"check_out"`
}

// DayFile is the top-level structure stored in each daily archive file.
type DayFile struct {
	Date    string             `json:"date"`
	Records []AttendanceRecord `json:"records"`
}

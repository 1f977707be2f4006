package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/shiftlog/internal/dbstore"
	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/storage"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

// period is a resolved --date / --from / --to / --week selection.
type period struct {
	From, To time.Time
	Label    string
}

// resolvePeriod turns the date flags into an inclusive day range. With no
// flags it falls back to the current week or, if weekDefault is false, today.
func resolvePeriod(date, from, to string, week, weekDefault bool, now time.Time) (period, error) {
	loc := now.Location()
	switch {
	case date != "":
		if from != "" || to != "" || week {
			return period{}, errors.New("--date cannot be combined with --from, --to or --week")
		}
		d, err := timecalc.ParseDate(date, loc)
		if err != nil {
			return period{}, err
		}
		return period{From: d, To: timecalc.EndOfDay(d), Label: date}, nil
	case from != "" || to != "":
		if week {
			return period{}, errors.New("--week cannot be combined with --from or --to")
		}
		if from == "" {
			return period{}, errors.New("--to needs --from")
		}
		f, err := timecalc.ParseDate(from, loc)
		if err != nil {
			return period{}, err
		}
		t := f
		if to != "" {
			if t, err = timecalc.ParseDate(to, loc); err != nil {
				return period{}, err
			}
		}
		if t.Before(f) {
			return period{}, fmt.Errorf("--to %s is before --from %s", to, from)
		}
		p := period{From: f, To: timecalc.EndOfDay(t), Label: fmt.Sprintf("%s – %s", f.Format("2006-01-02"), t.Format("2006-01-02"))}
		if timecalc.SameDay(f, t) {
			p.Label = f.Format("2006-01-02")
		}
		return p, nil
	case week || weekDefault:
		f, t := timecalc.WeekRange(now)
		return period{From: f, To: t, Label: "Week " + timecalc.ISOWeekLabel(now)}, nil
	default:
		return period{From: timecalc.StartOfDay(now), To: timecalc.EndOfDay(now), Label: now.Format("2006-01-02")}, nil
	}
}

// loadPeriod reads archived records from the day files or, when dbPath is
// set, from a SQLite database.
func loadPeriod(ctx context.Context, dbPath string, p period) ([]model.AttendanceRecord, error) {
	if dbPath == "" {
		base, err := storage.BaseDir()
		if err != nil {
			return nil, err
		}
		return storage.LoadRange(base, p.From, p.To)
	}
	store, err := dbstore.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Range(ctx, p.From, p.To)
}

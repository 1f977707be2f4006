// Package storage archives attendance records as one JSON file per day.
package storage

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Tiliavir/shiftlog/internal/config"
	"github.com/Tiliavir/shiftlog/internal/model"
)

const dateLayout = "2006-01-02"

// BaseDir returns the archive root (~/.shiftlog/records).
func BaseDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "records"), nil
}

// dayFilePath returns the path for the given date's JSON file.
func dayFilePath(base string, t time.Time) string {
	return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// LoadDay loads the DayFile for the given date. Returns an empty DayFile if not found.
func LoadDay(base string, t time.Time) (model.DayFile, error) {
	path := dayFilePath(base, t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: t.Format(dateLayout), Records: []model.AttendanceRecord{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the given date.
func SaveDay(base string, t time.Time, df model.DayFile) error {
	path := dayFilePath(base, t)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// SaveRecords upserts records into their day files: a record replaces the
// one of the same person and shift on its date, or is appended. Each day file
// is read and written once.
func SaveRecords(base string, records []model.AttendanceRecord) error {
	byDay := map[string][]model.AttendanceRecord{}
	var days []string
	for _, r := range records {
		if _, seen := byDay[r.Date]; !seen {
			days = append(days, r.Date)
		}
		byDay[r.Date] = append(byDay[r.Date], r)
	}
	slices.Sort(days)

	for _, d := range days {
		day, err := time.Parse(dateLayout, d)
		if err != nil {
			return fmt.Errorf("storage error: record date %q: %w", d, err)
		}
		df, err := LoadDay(base, day)
		if err != nil {
			return err
		}
		for _, rec := range byDay[d] {
			df.Records = upsert(df.Records, rec)
		}
		slices.SortStableFunc(df.Records, func(a, b model.AttendanceRecord) int {
			if c := cmp.Compare(a.PersonID, b.PersonID); c != 0 {
				return c
			}
			return cmp.Compare(a.ShiftCode, b.ShiftCode)
		})
		if err := SaveDay(base, day, df); err != nil {
			return err
		}
	}
	return nil
}

func upsert(records []model.AttendanceRecord, rec model.AttendanceRecord) []model.AttendanceRecord {
	for i, r := range records {
		if r.PersonID == rec.PersonID && r.ShiftCode == rec.ShiftCode {
			records[i] = rec
			return records
		}
	}
	return append(records, rec)
}

// LoadRange loads all records in [from, to] inclusive, day by day.
func LoadRange(base string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		df, err := LoadDay(base, d)
		if err != nil {
			return nil, err
		}
		records = append(records, df.Records...)
	}
	return records, nil
}

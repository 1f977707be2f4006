// Package dbstore keeps attendance records in a SQLite database so they can
// be queried alongside other tools.
package dbstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
)

// recordRow is the table layout of one AttendanceRecord. A record is keyed by
// date, person and shift code.
type recordRow struct {
	ID            uint       `gorm:"primaryKey"`
	Date          string     `gorm:"uniqueIndex:idx_record_key;not null"`
	PersonID      string     `gorm:"uniqueIndex:idx_record_key;not null"`
	ShiftCode     string     `gorm:"uniqueIndex:idx_record_key;not null"`
	PersonName    string
	Shift         string
	CheckIn       *time.Time
	CheckInStatus string
	BreakOut      *time.Time
	BreakIn       *time.Time
	BreakInStatus string
	CheckOut      *time.Time
	UpdatedAt     time.Time
}

func (recordRow) TableName() string { return "attendance_records" }

func toRow(r model.AttendanceRecord) recordRow {
	return recordRow{
		Date:          r.Date,
		PersonID:      r.PersonID,
		ShiftCode:     string(r.ShiftCode),
		PersonName:    r.PersonName,
		Shift:         r.Shift,
		CheckIn:       r.CheckIn,
		CheckInStatus: r.CheckInStatus.String(),
		BreakOut:      r.BreakOut,
		BreakIn:       r.BreakIn,
		BreakInStatus: r.BreakInStatus.String(),
		CheckOut:      r.CheckOut,
	}
}

func (row recordRow) record() (model.AttendanceRecord, error) {
	r := model.AttendanceRecord{
		Date:       row.Date,
		PersonID:   row.PersonID,
		PersonName: row.PersonName,
		Shift:      row.Shift,
		ShiftCode:  shift.Code(row.ShiftCode),
		CheckIn:    row.CheckIn,
		BreakOut:   row.BreakOut,
		BreakIn:    row.BreakIn,
		CheckOut:   row.CheckOut,
	}
	if err := r.CheckInStatus.UnmarshalText([]byte(row.CheckInStatus)); err != nil {
		return r, err
	}
	if err := r.BreakInStatus.UnmarshalText([]byte(row.BreakInStatus)); err != nil {
		return r, err
	}
	return r, nil
}

// Store is a SQLite-backed record archive.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
// Use "file::memory:?cache=shared" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("migrating database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts records in a single transaction. Saving the same records twice
// leaves one row per (date, person, shift).
func (s *Store) Save(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]recordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, toRow(r))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "person_id"}, {Name: "shift_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"person_name", "shift",
				"check_in", "check_in_status",
				"break_out", "break_in", "break_in_status",
				"check_out", "updated_at",
			}),
		}).CreateInBatches(rows, 500).Error
	})
}

// Range returns the records dated from..to inclusive, ordered by date, person
// and shift code.
func (s *Store) Range(ctx context.Context, from, to time.Time) ([]model.AttendanceRecord, error) {
	var rows []recordRow
	err := s.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date, person_id, shift_code").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	records := make([]model.AttendanceRecord, 0, len(rows))
	var errs []error
	for _, row := range rows {
		r, err := row.record()
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s/%s/%s: %w", row.Date, row.PersonID, row.ShiftCode, err))
			continue
		}
		records = append(records, r)
	}
	return records, errors.Join(errs...)
}

package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/shiftlog/internal/config"
	"github.com/Tiliavir/shiftlog/internal/ingest"
)

const sampleCSV = `ID,Name,Date,Time,Type,Status
101,Silver_Bong,2025.11.04,05:55:12,F1,Success
101,Silver_Bong,2025.11.04,09:55:40,F1,Failed
102,Capone,2025-11-04,06:01:00,F1,Success
103,Stranger,2025.11.04,06:02:00,F1,Success
101,Silver_Bong,not-a-date,10:25:00,F1,Success
101,Silver_Bong,04/11/2025,14:05,F1,Success
,,,,,
`

func newReader(t *testing.T, users map[string]config.User) *ingest.Reader {
	t.Helper()
	cfg := config.Default()
	cfg.Timezone = "UTC"
	cfg.Users = users
	r, err := ingest.NewReader(cfg, nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return r
}

func roster() map[string]config.User {
	return map[string]config.User{
		"Silver_Bong": {OutputName: "Bui Duc Toan", OutputID: "TPL0001"},
		"Capone":      {OutputName: "Pham Van Nam", OutputID: "TPL0002"},
	}
}

func TestReadCSVFilters(t *testing.T) {
	b, err := newReader(t, roster()).ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if b.Rows != 6 {
		t.Errorf("rows = %d, want 6", b.Rows)
	}
	if b.FilteredStatus != 1 {
		t.Errorf("filtered status = %d, want 1", b.FilteredStatus)
	}
	if b.FilteredUsers != 1 {
		t.Errorf("filtered users = %d, want 1", b.FilteredUsers)
	}
	if b.InvalidTimestamps != 1 {
		t.Errorf("invalid timestamps = %d, want 1", b.InvalidTimestamps)
	}
	if len(b.Events) != 3 {
		t.Fatalf("events = %d, want 3", len(b.Events))
	}

	first := b.Events[0]
	if first.PersonID != "TPL0001" || first.PersonName != "Bui Duc Toan" {
		t.Errorf("first event identity = %s/%s, want roster mapping", first.PersonID, first.PersonName)
	}
	if want := time.Date(2025, 11, 4, 5, 55, 12, 0, time.UTC); !first.Timestamp.Equal(want) {
		t.Errorf("first timestamp = %v, want %v", first.Timestamp, want)
	}
	if want := time.Date(2025, 11, 4, 14, 5, 0, 0, time.UTC); !b.Events[2].Timestamp.Equal(want) {
		t.Errorf("day-first timestamp = %v, want %v", b.Events[2].Timestamp, want)
	}
}

func TestReadCSVWithoutRoster(t *testing.T) {
	b, err := newReader(t, nil).ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if b.FilteredUsers != 0 {
		t.Errorf("filtered users = %d, want 0", b.FilteredUsers)
	}
	if len(b.Events) != 4 {
		t.Fatalf("events = %d, want 4", len(b.Events))
	}
	if b.Events[2].PersonID != "103" || b.Events[2].PersonName != "Stranger" {
		t.Errorf("unmapped identity = %s/%s, want raw columns", b.Events[2].PersonID, b.Events[2].PersonName)
	}
}

func TestReadCSVHeaderCaseAndBOM(t *testing.T) {
	in := "\ufeff id , NAME,date,TIME,status\n101,Silver_Bong,2025.11.04,05:55:12,Success\n"
	b, err := newReader(t, roster()).ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(b.Events) != 1 {
		t.Errorf("events = %d, want 1", len(b.Events))
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := newReader(t, nil).ReadCSV(strings.NewReader("ID,Name,Date\n1,a,2025.11.04\n"))
	if !errors.Is(err, ingest.ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns", err)
	}
	if !strings.Contains(err.Error(), "Time, Status") {
		t.Errorf("err = %v, want the missing column names", err)
	}
}

func TestReadFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swipes.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"ID", "Name", "Date", "Time", "Type", "Status"},
		{"101", "Silver_Bong", "2025.11.04", "05:55:12", "F1", "Success"},
		{"102", "Capone", "2025.11.04", "14:01:00", "F1", "Success"},
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	b, err := newReader(t, roster()).ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(b.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(b.Events))
	}
	if b.Events[1].PersonID != "TPL0002" {
		t.Errorf("second event = %s, want TPL0002", b.Events[1].PersonID)
	}
}

func TestReadXLSXNativeDateCells(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"ID", "Name", "Date", "Time", "Type", "Status"},
		// 05:55:12 as a day fraction.
		{"101", "Silver_Bong", time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC), 21312.0 / 86400, "F1", "Success"},
		{"102", "Capone", "2025.11.04", "14:01:00", "F1", "Success"},
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	b, err := newReader(t, roster()).ReadXLSX(&buf)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if b.InvalidTimestamps != 0 {
		t.Errorf("invalid timestamps = %d, want 0", b.InvalidTimestamps)
	}
	if len(b.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(b.Events))
	}
	if want := time.Date(2025, 11, 4, 5, 55, 12, 0, time.UTC); !b.Events[0].Timestamp.Equal(want) {
		t.Errorf("native cell timestamp = %v, want %v", b.Events[0].Timestamp, want)
	}
	if want := time.Date(2025, 11, 4, 14, 1, 0, 0, time.UTC); !b.Events[1].Timestamp.Equal(want) {
		t.Errorf("text cell timestamp = %v, want %v", b.Events[1].Timestamp, want)
	}
}

func TestReadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swipes.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := newReader(t, roster()).ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(b.Events) != 3 {
		t.Errorf("events = %d, want 3", len(b.Events))
	}
}

func TestReadFileMissingFailsFast(t *testing.T) {
	r := newReader(t, nil)
	r.Delay = time.Hour
	_, err := r.ReadFile(context.Background(), filepath.Join(t.TempDir(), "gone.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestReadFileUnsupported(t *testing.T) {
	_, err := newReader(t, nil).ReadFile(context.Background(), "swipes.txt")
	if !errors.Is(err, ingest.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

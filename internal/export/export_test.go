package export_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/shiftlog/internal/config"
	"github.com/Tiliavir/shiftlog/internal/export"
	"github.com/Tiliavir/shiftlog/internal/ingest"
	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/shift"
)

func ptr(t time.Time) *time.Time { return &t }

func sampleRecords() []model.AttendanceRecord {
	day := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	return []model.AttendanceRecord{
		{
			Date:          "2025-11-04",
			PersonID:      "TPL0001",
			PersonName:    "Bui Duc Toan",
			Shift:         "Morning",
			ShiftCode:     shift.Morning,
			CheckIn:       ptr(day.Add(5*time.Hour + 55*time.Minute)),
			CheckInStatus: model.StatusOnTime,
			BreakOut:      ptr(day.Add(9*time.Hour + 55*time.Minute)),
			BreakIn:       ptr(day.Add(10*time.Hour + 35*time.Minute)),
			BreakInStatus: model.StatusLate,
			CheckOut:      ptr(day.Add(14*time.Hour + 5*time.Minute)),
		},
		{
			Date:          "2025-11-04",
			PersonID:      "TPL0002",
			PersonName:    "Pham | Nam",
			Shift:         "Afternoon",
			ShiftCode:     shift.Afternoon,
			CheckIn:       ptr(day.Add(14*time.Hour + 10*time.Minute)),
			CheckInStatus: model.StatusLate,
		},
	}
}

func TestRow(t *testing.T) {
	got := export.Row(sampleRecords()[1])
	want := []string{"2025-11-04", "TPL0002", "Pham | Nam", "Afternoon", "14:10:00", "Late", "", "", "", ""}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Row = %q, want %q", got, want)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0] != strings.Join(export.Columns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2025-11-04,TPL0001,Bui Duc Toan,Morning,05:55:00,On Time,09:55:00,10:35:00,Late,14:05:00" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteMarkdownEscapesPipes(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteMarkdown(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "| Date | ID | Name |") {
		t.Errorf("markdown header missing: %q", out)
	}
	if !strings.Contains(out, `Pham \| Nam`) {
		t.Errorf("pipe not escaped: %q", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	var got []model.AttendanceRecord
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[1].BreakIn != nil || got[0].BreakInStatus != model.StatusLate {
		t.Errorf("decoded = %+v", got)
	}

	buf.Reset()
	if err := export.WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty JSON = %q, want []", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != export.SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][9] != "Check Out Record" || rows[1][4] != "05:55:00" || rows[2][5] != "Late" {
		t.Errorf("unexpected cells: %q", rows)
	}
}

func TestConvertCSVFeedsIngest(t *testing.T) {
	raw := "No,Name,Date,Time,Type,Device,Status,Extra\n" +
		"101,Silver_Bong,2025.11.04,05:55:12,F1,Gate 1,Success,x\n" +
		"101,Silver_Bong,2025.11.04,14:05:00,F1,Gate 1,Success,x\n"
	var buf bytes.Buffer
	n, err := export.ConvertCSV(strings.NewReader(raw), &buf)
	if err != nil {
		t.Fatalf("ConvertCSV: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	cfg := config.Default()
	cfg.Timezone = "UTC"
	r, err := ingest.NewReader(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.ReadXLSX(&buf)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(b.Events) != 2 || b.Events[0].PersonID != "101" {
		t.Errorf("events = %+v", b.Events)
	}
}

func TestConvertCSVTooNarrow(t *testing.T) {
	_, err := export.ConvertCSV(strings.NewReader("a,b,c\n1,2,3\n"), &bytes.Buffer{})
	if !errors.Is(err, export.ErrTooFewColumns) {
		t.Errorf("err = %v, want ErrTooFewColumns", err)
	}
}

func TestAvailablePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	now := time.Date(2025, 11, 4, 15, 4, 5, 0, time.UTC)

	if got := export.AvailablePath(path, now); got != path {
		t.Errorf("free path = %s, want %s", got, path)
	}
	touch(t, path)
	stamped := filepath.Join(dir, "out_20251104_150405.xlsx")
	if got := export.AvailablePath(path, now); got != stamped {
		t.Errorf("taken path = %s, want %s", got, stamped)
	}
	touch(t, stamped)
	if got, want := export.AvailablePath(path, now), filepath.Join(dir, "out_1.xlsx"); got != want {
		t.Errorf("second collision = %s, want %s", got, want)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]export.Format{
		"a.xlsx": export.XLSX,
		"a.CSV":  export.CSV,
		"a.json": export.JSON,
		"a.md":   export.Markdown,
		"a.txt":  export.XLSX,
	}
	for path, want := range tests {
		if got := export.FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%s) = %s, want %s", path, got, want)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
}

package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/shiftlog/internal/model"
)

// SheetName is the worksheet holding exported records.
const SheetName = "Attendance"

var columnWidths = []float64{12, 10, 24, 12, 10, 16, 15, 15, 20, 17}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

// WriteXLSX writes the records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []model.AttendanceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row(r))
	}
	return writeSheet(w, SheetName, Columns, columnWidths, rows)
}

func writeSheet(w io.Writer, sheet string, header []string, widths []float64, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	// Column widths must be set before the first row is streamed.
	for i, width := range widths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	if err := sw.SetRow("A1", cellValues(header), excelize.RowOpts{StyleID: style}); err != nil {
		return err
	}
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, cellValues(row)); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

func cellValues(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// convertColumns are the raw clock-software columns kept by ConvertCSV, and
// convertNames their headers in the workbook.
var (
	convertColumns = []int{0, 1, 2, 3, 4, 6}
	convertNames   = []string{"ID", "Name", "Date", "Time", "Type", "Status"}
)

// ErrTooFewColumns is returned by ConvertCSV for exports narrower than seven
// columns.
var ErrTooFewColumns = errors.New("CSV has too few columns")

// ConvertCSV turns a raw clock-software CSV export into a workbook that the
// ingest reader accepts. The first input row is treated as a header and
// replaced. It returns the number of data rows written.
func ConvertCSV(in io.Reader, out io.Writer) (int, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("reading CSV: %w", err)
	}
	need := convertColumns[len(convertColumns)-1] + 1
	if len(records) == 0 || len(records[0]) < need {
		width := 0
		if len(records) > 0 {
			width = len(records[0])
		}
		return 0, fmt.Errorf("%w: got %d, need at least %d", ErrTooFewColumns, width, need)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(convertColumns))
		for i, col := range convertColumns {
			if col < len(rec) {
				row[i] = rec[col]
			}
		}
		rows = append(rows, row)
	}
	widths := []float64{10, 24, 12, 10, 10, 12}
	if err := writeSheet(out, "Data", convertNames, widths, rows); err != nil {
		return 0, fmt.Errorf("writing workbook: %w", err)
	}
	return len(rows), nil
}

// ConvertCSVFile is ConvertCSV between two paths.
func ConvertCSVFile(inPath, outPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	n, err := ConvertCSV(in, out)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return 0, err
	}
	return n, out.Close()
}

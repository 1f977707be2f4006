// Package export renders attendance records as spreadsheets and text tables.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tiliavir/shiftlog/internal/model"
)

// Format names an output encoding.
type Format string

const (
	XLSX     Format = "xlsx"
	CSV      Format = "csv"
	JSON     Format = "json"
	Markdown Format = "md"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case XLSX, CSV, JSON, Markdown:
		return f, nil
	case "markdown":
		return Markdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want xlsx, csv, json or md)", s)
}

// FormatFromPath picks the format from a file extension, defaulting to XLSX.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return XLSX
}

// Columns is the header of every tabular output.
var Columns = []string{
	"Date", "ID", "Name", "Shift",
	"Check-in", "Check-in Status",
	"Break Time Out", "Break Time In", "Break Time In Status",
	"Check Out Record",
}

const clockLayout = "15:04:05"

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(clockLayout)
}

// Row returns the cells of one record in Columns order. Missing events are
// empty cells.
func Row(r model.AttendanceRecord) []string {
	return []string{
		r.Date,
		r.PersonID,
		r.PersonName,
		r.Shift,
		clock(r.CheckIn),
		r.CheckInStatus.String(),
		clock(r.BreakOut),
		clock(r.BreakIn),
		r.BreakInStatus.String(),
		clock(r.CheckOut),
	}
}

// Write encodes records to w.
func Write(w io.Writer, f Format, records []model.AttendanceRecord) error {
	switch f {
	case XLSX:
		return WriteXLSX(w, records)
	case CSV:
		return WriteCSV(w, records)
	case JSON:
		return WriteJSON(w, records)
	case Markdown:
		return WriteMarkdown(w, records)
	}
	return fmt.Errorf("unknown format %q", f)
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, f Format, records []model.AttendanceRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(out, f, records); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

// WriteCSV writes a header line and one line per record.
func WriteCSV(w io.Writer, records []model.AttendanceRecord) error {
	if err := writeCSVLine(w, Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeCSVLine(w, Row(r)); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVLine(w io.Writer, cells []string) error {
	_, err := io.WriteString(w, CSVLine(cells)+"\n")
	return err
}

// CSVLine joins cells into one CSV line without the trailing newline.
func CSVLine(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = csvEscape(c)
	}
	return strings.Join(escaped, ",")
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, records []model.AttendanceRecord) error {
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteMarkdown writes a GitHub-flavoured table.
func WriteMarkdown(w io.Writer, records []model.AttendanceRecord) error {
	var b strings.Builder
	b.WriteString("| " + strings.Join(Columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(Columns)) + "\n")
	for _, r := range records {
		cells := Row(r)
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// AvailablePath returns path if nothing exists there. Otherwise it appends a
// timestamp (name_YYYYMMDD_HHMMSS.ext) and, if that is taken too, a counter
// (name_1.ext, name_2.ext, ...).
func AvailablePath(path string, now time.Time) string {
	if !exists(path) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	stamped := fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext)
	if !exists(stamped) {
		return stamped
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

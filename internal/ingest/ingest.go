// Package ingest reads raw swipe logs exported by the clock software.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/shiftlog/internal/config"
	"github.com/Tiliavir/shiftlog/internal/model"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

// Columns every swipe log must carry. Others, such as Type, are ignored.
const (
	ColID     = "ID"
	ColName   = "Name"
	ColDate   = "Date"
	ColTime   = "Time"
	ColStatus = "Status"
)

var requiredColumns = []string{ColID, ColName, ColDate, ColTime, ColStatus}

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrUnsupported    = errors.New("unsupported input format")
)

// dateLayouts are tried in order; the first is the clock software's own.
var dateLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02", "02/01/2006"}

// Batch is the outcome of reading one swipe log.
type Batch struct {
	Events []model.SwipeEvent
	// Rows counts non-empty data rows.
	Rows              int
	InvalidTimestamps int
	FilteredStatus    int
	FilteredUsers     int
}

// Reader turns swipe log rows into SwipeEvents. A Reader memoizes parsed
// dates, so reuse it across files of the same run.
type Reader struct {
	loc          *time.Location
	statusFilter string
	users        map[string]config.User
	logger       *slog.Logger
	dates        *otter.Cache[string, time.Time]

	// Attempts and Delay control how long a locked file is retried.
	Attempts uint
	Delay    time.Duration
}

// NewReader builds a Reader from a config. cfg.Rules should have been
// checked first; an unknown timezone is still reported here.
func NewReader(cfg config.Config, logger *slog.Logger) (*Reader, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		loc:          loc,
		statusFilter: cfg.StatusFilter,
		users:        cfg.Users,
		logger:       logger,
		dates: otter.Must(&otter.Options[string, time.Time]{
			MaximumSize:     4_096,
			InitialCapacity: 64,
		}),
		Attempts: 5,
		Delay:    500 * time.Millisecond,
	}, nil
}

// ReadFile reads a .csv or .xlsx swipe log. Opening is retried while the file
// is held by another process; a missing file fails at once.
func (r *Reader) ReadFile(ctx context.Context, path string) (Batch, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" && ext != ".xlsm" {
		return Batch{}, fmt.Errorf("%w %q (want .csv or .xlsx)", ErrUnsupported, ext)
	}

	var f *os.File
	err := retry.Do(
		func() error {
			var err error
			f, err = os.Open(path)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.Attempts),
		retry.Delay(r.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying open", "attempt", n+1, "path", path, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, fs.ErrNotExist)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Batch{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if ext == ".csv" {
		return r.ReadCSV(f)
	}
	return r.ReadXLSX(f)
}

// ReadCSV reads a comma-separated swipe log with a header row.
func (r *Reader) ReadCSV(in io.Reader) (Batch, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Batch{}, fmt.Errorf("reading CSV: %w", err)
	}
	return r.ReadRows(rows)
}

// ReadXLSX reads the first sheet of a workbook.
func (r *Reader) ReadXLSX(in io.Reader) (Batch, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return Batch{}, fmt.Errorf("reading workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Batch{}, errors.New("workbook has no sheets")
	}
	// Raw values keep native date cells as serials instead of their
	// locale-formatted text.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Batch{}, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) > 0 {
		if idx, err := columnIndex(rows[0]); err == nil {
			for _, row := range rows[1:] {
				normalizeSerials(row, idx[ColDate], idx[ColTime])
			}
		}
	}
	return r.ReadRows(rows)
}

// normalizeSerials rewrites numeric Excel date and time cells as the text
// layouts ReadRows parses. Text cells are left alone.
func normalizeSerials(row []string, dateCol, timeCol int) {
	if dateCol < len(row) {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[dateCol]), 64); err == nil && v >= 1 {
			if d, err := excelize.ExcelDateToTime(math.Floor(v), false); err == nil {
				row[dateCol] = d.Format("2006-01-02")
			}
		}
	}
	if timeCol < len(row) {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[timeCol]), 64); err == nil && v >= 0 {
			secs := int(math.Round((v-math.Floor(v))*86400)) % 86400
			row[timeCol] = timecalc.Clock(secs).String()
		}
	}
}

// ReadRows converts a header row plus data rows.
func (r *Reader) ReadRows(rows [][]string) (Batch, error) {
	if len(rows) == 0 {
		return Batch{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(requiredColumns, ", "))
	}
	idx, err := columnIndex(rows[0])
	if err != nil {
		return Batch{}, err
	}

	var b Batch
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		b.Rows++

		if cell(row, idx[ColStatus]) != r.statusFilter {
			b.FilteredStatus++
			continue
		}

		id, name := cell(row, idx[ColID]), cell(row, idx[ColName])
		if len(r.users) > 0 {
			u, ok := r.users[name]
			if !ok {
				b.FilteredUsers++
				continue
			}
			id, name = u.OutputID, u.OutputName
		}

		ts, err := r.timestamp(cell(row, idx[ColDate]), cell(row, idx[ColTime]))
		if err != nil {
			b.InvalidTimestamps++
			r.logger.Debug("skipping row", "row", n+2, "error", err)
			continue
		}
		b.Events = append(b.Events, model.SwipeEvent{PersonID: id, PersonName: name, Timestamp: ts})
	}
	return b, nil
}

func (r *Reader) timestamp(date, clock string) (time.Time, error) {
	day, err := r.parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := timecalc.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return c.On(day), nil
}

func (r *Reader) parseDate(s string) (time.Time, error) {
	if d, ok := r.dates.GetIfPresent(s); ok {
		return d, nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			r.dates.Set(s, d)
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func columnIndex(header []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, want := range requiredColumns {
			if _, seen := idx[want]; !seen && strings.EqualFold(h, want) {
				idx[want] = i
			}
		}
	}
	var missing []string
	for _, want := range requiredColumns {
		if _, ok := idx[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

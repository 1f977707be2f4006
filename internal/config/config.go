package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Tiliavir/shiftlog/internal/shift"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

// Config is the root configuration for shiftlog, stored in
// ~/.shiftlog/config.json. The file supports single-line // comments for
// documentation purposes.
type Config struct {
	BurstThresholdMinutes int `json:"burst_threshold_minutes"`
	// StatusFilter keeps only swipe rows whose Status column equals it.
	StatusFilter string `json:"status_filter"`
	// Timezone is the IANA timezone the swipe log is recorded in. Empty = local.
	Timezone string `json:"timezone"`
	// Users maps the Name column of the swipe log to the identity written to
	// reports. An empty roster keeps every person as-is.
	Users  map[string]User        `json:"users"`
	Shifts map[string]ShiftConfig `json:"shifts"`
}

// User is one roster entry.
type User struct {
	OutputName string `json:"output_name"`
	OutputID   string `json:"output_id"`
}

// ShiftConfig describes one shift in the rules file. Times are "HH:MM" or
// "HH:MM:SS", ranges "HH:MM-HH:MM".
type ShiftConfig struct {
	DisplayName string         `json:"display_name"`
	CheckIn     CheckInConfig  `json:"check_in"`
	CheckOut    CheckOutConfig `json:"check_out"`
	Break       BreakConfig    `json:"break"`
}

type CheckInConfig struct {
	SearchRange   string `json:"search_range"`
	ShiftStart    string `json:"shift_start"`
	OnTimeCutoff  string `json:"on_time_cutoff,omitempty"`
	LateThreshold string `json:"late_threshold,omitempty"`
}

type CheckOutConfig struct {
	SearchRange string `json:"search_range"`
}

type BreakConfig struct {
	SearchRange string `json:"search_range"`
	// Checkpoint is the expected break start. Defaults to the range start.
	Checkpoint string `json:"checkpoint,omitempty"`
	// Midpoint splits break swipes when no gap is long enough. Defaults to
	// the checkpoint.
	Midpoint          string `json:"midpoint,omitempty"`
	BreakEndTime      string `json:"break_end_time"`
	OnTimeCutoff      string `json:"on_time_cutoff,omitempty"`
	LateThreshold     string `json:"late_threshold,omitempty"`
	MinimumGapMinutes int    `json:"minimum_break_gap_minutes"`
}

// DefaultStatusFilter is the Status value of accepted swipes.
const DefaultStatusFilter = "Success"

var (
	ErrNoRoster    = errors.New("roster entry has no output_id")
	ErrBadTimeZone = errors.New("unknown timezone")
)

// Default returns a Config pre-filled with the standard three-shift roster.
func Default() Config {
	cfg := Config{
		BurstThresholdMinutes: int(shift.DefaultBurstThreshold / time.Minute),
		StatusFilter:          DefaultStatusFilter,
		Users:                 map[string]User{},
		Shifts:                map[string]ShiftConfig{},
	}
	for _, w := range shift.Default().Windows {
		cfg.Shifts[string(w.Code)] = fromWindow(w)
	}
	return cfg
}

func fromWindow(w shift.Window) ShiftConfig {
	return ShiftConfig{
		DisplayName: w.DisplayName,
		CheckIn: CheckInConfig{
			SearchRange: w.CheckIn.String(),
			ShiftStart:  w.CheckInCutoff.OnTime.Add(-shift.Grace).String(),
		},
		CheckOut: CheckOutConfig{SearchRange: w.CheckOut.String()},
		Break: BreakConfig{
			SearchRange:       w.BreakSearch.String(),
			Checkpoint:        w.BreakCheckpoint.String(),
			Midpoint:          w.BreakMidpoint.String(),
			BreakEndTime:      w.BreakInCutoff.OnTime.Add(-shift.Grace).String(),
			MinimumGapMinutes: int(w.MinBreakGap / time.Minute),
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// shiftlog configuration – ~/.shiftlog/config.json
//
// All settings are optional; omitted values fall back to the built-in
// three-shift roster shown below.
{
  // Swipes of one person at most this many minutes apart form one burst.
  "burst_threshold_minutes": 2,

  // Only rows whose Status column equals this value are processed.
  "status_filter": "Success",

  // IANA timezone the clock software records in, e.g. "Asia/Ho_Chi_Minh".
  // Leave empty to use the local timezone.
  "timezone": "",

  // Swipe log Name -> identity used in reports. Leave empty to keep
  // every person under their raw ID and Name.
  "users": {
    // "Silver_Bong": { "output_name": "Bui Duc Toan", "output_id": "TPL0001" }
  },

  // Shift rules. Ranges are "HH:MM-HH:MM" and may cross midnight, except
  // the break search range. On-time cutoffs default to start + 4:59 and
  // late thresholds to start + 5:00.
  "shifts": {
    "A": {
      "display_name": "Morning",
      "check_in":  { "search_range": "05:30-06:35", "shift_start": "06:00" },
      "check_out": { "search_range": "13:30-14:35" },
      "break": {
        "search_range": "09:50-10:35",
        "checkpoint": "10:00",
        "midpoint": "10:15",
        "break_end_time": "10:30",
        "minimum_break_gap_minutes": 5
      }
    },
    "B": {
      "display_name": "Afternoon",
      "check_in":  { "search_range": "13:30-14:35", "shift_start": "14:00" },
      "check_out": { "search_range": "21:30-22:35" },
      "break": {
        "search_range": "17:50-18:35",
        "checkpoint": "18:00",
        "midpoint": "18:15",
        "break_end_time": "18:30",
        "minimum_break_gap_minutes": 5
      }
    },
    "C": {
      "display_name": "Night",
      "check_in":  { "search_range": "21:30-22:35", "shift_start": "22:00" },
      "check_out": { "search_range": "05:30-06:35" },
      "break": {
        "search_range": "01:50-02:50",
        "checkpoint": "02:00",
        "midpoint": "02:22:30",
        "break_end_time": "02:45",
        "minimum_break_gap_minutes": 5
      }
    }
  }
}
`

// Dir returns the shiftlog home directory (~/.shiftlog).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".shiftlog"), nil
}

// DefaultPath returns the path to ~/.shiftlog/config.json.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.shiftlog/config.json, creating it with annotated defaults on
// first run.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := WriteDefault(path); writeErr != nil {
			return Default(), fmt.Errorf("could not create config file %s: %w", path, writeErr)
		}
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Unlike Load, a missing file is an error.
// Fields left out of the file keep their built-in defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return cfg, nil
}

// Parse decodes a config document and back-fills zero fields with defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return Config{}, err
	}

	def := Default()
	if cfg.BurstThresholdMinutes == 0 {
		cfg.BurstThresholdMinutes = def.BurstThresholdMinutes
	}
	if cfg.StatusFilter == "" {
		cfg.StatusFilter = def.StatusFilter
	}
	if cfg.Users == nil {
		cfg.Users = map[string]User{}
	}
	if cfg.Shifts == nil {
		cfg.Shifts = map[string]ShiftConfig{}
	}
	for code, d := range def.Shifts {
		sc, ok := cfg.Shifts[code]
		if !ok {
			cfg.Shifts[code] = d
			continue
		}
		cfg.Shifts[code] = backfill(sc, d)
	}
	return cfg, nil
}

// backfill fills the empty fields of sc from d. Checkpoint and midpoint are
// only inherited along with the break range they lie in; otherwise they
// follow the range start. Explicit cutoffs are never inherited since they
// derive from shift_start and break_end_time.
func backfill(sc, d ShiftConfig) ShiftConfig {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&sc.DisplayName, d.DisplayName)
	fill(&sc.CheckIn.SearchRange, d.CheckIn.SearchRange)
	fill(&sc.CheckIn.ShiftStart, d.CheckIn.ShiftStart)
	fill(&sc.CheckOut.SearchRange, d.CheckOut.SearchRange)
	fill(&sc.Break.BreakEndTime, d.Break.BreakEndTime)

	if sc.Break.SearchRange == "" {
		sc.Break.SearchRange = d.Break.SearchRange
		if sc.Break.Checkpoint == "" {
			sc.Break.Checkpoint = d.Break.Checkpoint
			fill(&sc.Break.Midpoint, d.Break.Midpoint)
		}
	}
	if sc.Break.MinimumGapMinutes == 0 {
		sc.Break.MinimumGapMinutes = d.Break.MinimumGapMinutes
	}
	return sc
}

// WriteDefault creates the config directory and writes the annotated default
// config template.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// Location resolves Timezone. An empty value is the local timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadTimeZone, c.Timezone, err)
	}
	return loc, nil
}

// Rules converts the config into a validated rule set. The roster and
// timezone are checked too, so a nil error means the config is usable.
func (c Config) Rules() (shift.Rules, error) {
	rules := shift.Rules{BurstThreshold: time.Duration(c.BurstThresholdMinutes) * time.Minute}

	var unknown []string
	for code := range c.Shifts {
		if _, err := shift.ParseCode(code); err != nil {
			unknown = append(unknown, code)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return shift.Rules{}, fmt.Errorf("unknown shift codes %v (want A, B or C)", unknown)
	}

	for _, code := range shift.Codes {
		sc, ok := c.Shifts[string(code)]
		if !ok {
			return shift.Rules{}, fmt.Errorf("shift %s: %w", code, shift.ErrMissingShift)
		}
		w, err := sc.window(code)
		if err != nil {
			return shift.Rules{}, fmt.Errorf("shift %s: %w", code, err)
		}
		rules.Windows = append(rules.Windows, w)
	}
	if err := rules.Validate(); err != nil {
		return shift.Rules{}, err
	}

	names := make([]string, 0, len(c.Users))
	for name := range c.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if c.Users[name].OutputID == "" {
			return shift.Rules{}, fmt.Errorf("user %q: %w", name, ErrNoRoster)
		}
	}

	if _, err := c.Location(); err != nil {
		return shift.Rules{}, err
	}
	return rules, nil
}

func (sc ShiftConfig) window(code shift.Code) (shift.Window, error) {
	w := shift.Window{
		Code:        code,
		DisplayName: sc.DisplayName,
		MinBreakGap: time.Duration(sc.Break.MinimumGapMinutes) * time.Minute,
	}
	var err error
	if w.CheckIn, err = timecalc.ParseRange(sc.CheckIn.SearchRange); err != nil {
		return w, fmt.Errorf("check_in.search_range: %w", err)
	}
	if w.CheckOut, err = timecalc.ParseRange(sc.CheckOut.SearchRange); err != nil {
		return w, fmt.Errorf("check_out.search_range: %w", err)
	}
	if w.BreakSearch, err = timecalc.ParseRange(sc.Break.SearchRange); err != nil {
		return w, fmt.Errorf("break.search_range: %w", err)
	}

	w.BreakCheckpoint = w.BreakSearch.Start
	if sc.Break.Checkpoint != "" {
		if w.BreakCheckpoint, err = timecalc.ParseClock(sc.Break.Checkpoint); err != nil {
			return w, fmt.Errorf("break.checkpoint: %w", err)
		}
	}
	w.BreakMidpoint = w.BreakCheckpoint
	if sc.Break.Midpoint != "" {
		if w.BreakMidpoint, err = timecalc.ParseClock(sc.Break.Midpoint); err != nil {
			return w, fmt.Errorf("break.midpoint: %w", err)
		}
	}

	if w.CheckInCutoff, err = cutoff(sc.CheckIn.ShiftStart, sc.CheckIn.OnTimeCutoff, sc.CheckIn.LateThreshold); err != nil {
		return w, fmt.Errorf("check_in: %w", err)
	}
	if w.BreakInCutoff, err = cutoff(sc.Break.BreakEndTime, sc.Break.OnTimeCutoff, sc.Break.LateThreshold); err != nil {
		return w, fmt.Errorf("break: %w", err)
	}
	return w, nil
}

// cutoff builds a Cutoff from a start time plus optional explicit cutoffs.
// Omitted cutoffs follow from start and the default grace period.
func cutoff(start, onTime, late string) (shift.Cutoff, error) {
	s, err := timecalc.ParseClock(start)
	if err != nil {
		return shift.Cutoff{}, fmt.Errorf("start time: %w", err)
	}
	c := shift.NewCutoff(s, shift.Grace)
	if onTime != "" {
		if c.OnTime, err = timecalc.ParseClock(onTime); err != nil {
			return c, fmt.Errorf("on_time_cutoff: %w", err)
		}
		if late == "" {
			c.Late = c.OnTime.Add(time.Second)
		}
	}
	if late != "" {
		if c.Late, err = timecalc.ParseClock(late); err != nil {
			return c, fmt.Errorf("late_threshold: %w", err)
		}
		if onTime == "" {
			c.OnTime = c.Late.Add(-time.Second)
		}
	}
	return c, nil
}

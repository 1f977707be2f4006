package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftlog/internal/export"
	"github.com/Tiliavir/shiftlog/internal/timecalc"
)

var (
	reportWeek   bool
	reportFrom   string
	reportTo     string
	reportFormat string
	reportDB     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise lateness and missing check-outs per person",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report for this week (default)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day (YYYY-MM-DD, default --from)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
	reportCmd.Flags().StringVar(&reportDB, "db", "", "Read from this SQLite database instead of the day files")
}

func runReport(cmd *cobra.Command, args []string) error {
	p, err := resolvePeriod("", reportFrom, reportTo, reportWeek, true, time.Now())
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(reportFormat)
	if err != nil || format == export.XLSX {
		return fmt.Errorf("unknown report format %q (want md, csv or json)", reportFormat)
	}

	records, err := loadPeriod(cmd.Context(), reportDB, p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return writeReport(os.Stdout, format, p.Label, tallyByPerson(records))
}

func writeReport(w io.Writer, format export.Format, label string, people []tally) error {
	switch format {
	case export.CSV:
		fmt.Fprintln(w, export.CSVLine([]string{"person_id", "name", "shifts", "late_check_ins", "late_break_returns", "missing_check_outs", "worked_minutes"}))
		for _, t := range people {
			fmt.Fprintln(w, export.CSVLine([]string{
				t.PersonID, t.PersonName,
				strconv.Itoa(t.Shifts),
				strconv.Itoa(t.LateCheckIns),
				strconv.Itoa(t.LateBreakReturns),
				strconv.Itoa(t.MissingCheckOuts),
				strconv.FormatInt(t.WorkedSeconds/60, 10),
			}))
		}
	case export.JSON:
		if people == nil {
			people = []tally{}
		}
		data, err := json.MarshalIndent(struct {
			Period string  `json:"period"`
			People []tally `json:"people"`
		}{label, people}, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	default: // md
		fmt.Fprintln(w, label)
		fmt.Fprintln(w, "------------------------------------------------------------------------")
		fmt.Fprintf(w, "%-10s%-22s%7s%7s%8s%9s%10s\n", "ID", "Name", "Shifts", "Late", "LateBrk", "NoCheck", "Worked")
		var total tally
		for _, t := range people {
			fmt.Fprintf(w, "%-10s%-22s%7d%7d%8d%9d%10s\n",
				t.PersonID, t.PersonName, t.Shifts, t.LateCheckIns, t.LateBreakReturns, t.MissingCheckOuts,
				timecalc.FormatDuration(t.WorkedSeconds))
			total.Shifts += t.Shifts
			total.LateCheckIns += t.LateCheckIns
			total.LateBreakReturns += t.LateBreakReturns
			total.MissingCheckOuts += t.MissingCheckOuts
			total.WorkedSeconds += t.WorkedSeconds
		}
		fmt.Fprintln(w, "------------------------------------------------------------------------")
		fmt.Fprintf(w, "%-32s%7d%7d%8d%9d%10s\n", "Total",
			total.Shifts, total.LateCheckIns, total.LateBreakReturns, total.MissingCheckOuts,
			timecalc.FormatDuration(total.WorkedSeconds))
	}
	return nil
}

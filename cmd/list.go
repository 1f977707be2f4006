package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftlog/internal/model"
)

var (
	listDate string
	listFrom string
	listTo   string
	listWeek bool
	listDB   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived attendance records",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Show one day (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listFrom, "from", "", "First day (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Last day (YYYY-MM-DD, default --from)")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's records")
	listCmd.Flags().StringVar(&listDB, "db", "", "Read from this SQLite database instead of the day files")
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := resolvePeriod(listDate, listFrom, listTo, listWeek, false, time.Now())
	if err != nil {
		return err
	}

	records, err := loadPeriod(cmd.Context(), listDB, p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	printList(os.Stdout, records)
	return nil
}

// printList groups records by date and prints them.
func printList(w io.Writer, records []model.AttendanceRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	var currentDay string
	for _, r := range records {
		if r.Date != currentDay {
			bold.Fprintln(w, r.Date)
			currentDay = r.Date
		}

		breakStr := subtle.Sprint("no break")
		if r.BreakOut != nil || r.BreakIn != nil {
			breakStr = fmt.Sprintf("break %s–%s %s", clockOrDash(r.BreakOut), clockOrDash(r.BreakIn), statusText(r.BreakInStatus))
		}
		fmt.Fprintf(w, "  %-10s %-20s %-10s in %s %s  %s  out %s\n",
			r.PersonID, r.PersonName, r.Shift,
			clockOrDash(r.CheckIn), statusText(r.CheckInStatus),
			breakStr, clockOrDash(r.CheckOut))
	}
}

func clockOrDash(t *time.Time) string {
	if t == nil {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftlog/internal/export"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.csv> [output.xlsx]",
	Short: "Convert a raw clock CSV export into a swipe log workbook",
	Long: `Keeps the ID, Name, Date, Time, Type and Status columns (0-4 and 6) of a
raw CSV export and writes them to a workbook that "shiftlog process" reads.
The output defaults to the input name with an .xlsx extension.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	if !strings.EqualFold(filepath.Ext(input), ".csv") {
		return fmt.Errorf("input %s is not a .csv file", input)
	}
	output := strings.TrimSuffix(input, filepath.Ext(input)) + ".xlsx"
	if len(args) == 2 {
		output = args[1]
	}
	output = export.AvailablePath(output, time.Now())

	n, err := export.ConvertCSVFile(input, output)
	if errors.Is(err, export.ErrTooFewColumns) {
		return err
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Converted %d rows to %s\n", n, output)
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftlog/internal/attendance"
	"github.com/Tiliavir/shiftlog/internal/dbstore"
	"github.com/Tiliavir/shiftlog/internal/export"
	"github.com/Tiliavir/shiftlog/internal/ingest"
	"github.com/Tiliavir/shiftlog/internal/storage"
)

var (
	processFormat    string
	processArchive   bool
	processDB        string
	processOverwrite bool
)

var processCmd = &cobra.Command{
	Use:   "process <input> [output]",
	Short: "Extract shift attendance from a swipe log",
	Long: `Reads a .csv or .xlsx swipe log and writes one row per shift worked.
Without an output file the records are printed as a Markdown table.
An existing output file is never overwritten unless --overwrite is given;
a timestamped name is chosen instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processFormat, "format", "", "Output format: xlsx, csv, json, md (default from output extension)")
	processCmd.Flags().BoolVar(&processArchive, "archive", false, "Also store records in ~/.shiftlog/records")
	processCmd.Flags().StringVar(&processDB, "db", "", "Also upsert records into this SQLite database")
	processCmd.Flags().BoolVar(&processOverwrite, "overwrite", false, "Replace an existing output file")
}

func runProcess(cmd *cobra.Command, args []string) error {
	input := args[0]
	started := time.Now()

	cfg, rules, err := loadRules()
	if err != nil {
		return err
	}

	format, err := resolveFormat(args)
	if err != nil {
		return err
	}

	reader, err := ingest.NewReader(cfg, slog.Default())
	if err != nil {
		return err
	}
	batch, err := reader.ReadFile(cmd.Context(), input)
	if err != nil {
		if errors.Is(err, ingest.ErrMissingColumns) || errors.Is(err, ingest.ErrUnsupported) {
			return err
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if batch.InvalidTimestamps > 0 {
		slog.Warn("rows with unparsable timestamps skipped", "count", batch.InvalidTimestamps)
	}
	if len(batch.Events) == 0 {
		slog.Warn("no swipes left after filtering", "rows", batch.Rows,
			"filtered_status", batch.FilteredStatus, "filtered_users", batch.FilteredUsers)
	}

	res := attendance.Process(batch.Events, rules)
	slog.Info("pipeline finished", "swipes", res.Stats.Swipes, "bursts", res.Stats.Bursts,
		"merged", res.Stats.Merged, "instances", res.Stats.Instances)
	if res.Stats.Orphans > 0 {
		slog.Warn("bursts outside any shift dropped", "count", res.Stats.Orphans)
	}

	// The summary goes to stderr when stdout carries the records.
	var summary io.Writer = os.Stdout
	var written string
	if len(args) == 2 {
		out := args[1]
		if !processOverwrite {
			out = export.AvailablePath(out, time.Now())
			if out != args[1] {
				warn.Fprintf(os.Stderr, "%s exists, writing %s instead\n", args[1], out)
			}
		}
		if err := export.WriteFile(out, format, res.Records); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		written = out
	} else {
		summary = os.Stderr
		if err := export.Write(os.Stdout, format, res.Records); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	if processArchive {
		base, err := storage.BaseDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := storage.SaveRecords(base, res.Records); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		slog.Info("records archived", "dir", base, "count", len(res.Records))
	}
	if processDB != "" {
		if err := saveToDB(cmd, processDB, res); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	printSummary(summary, input, batch, res, time.Since(started))
	if written != "" {
		fmt.Printf("Wrote %d records to %s\n", len(res.Records), written)
	}
	return nil
}

func saveToDB(cmd *cobra.Command, path string, res attendance.Result) error {
	store, err := dbstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(cmd.Context(), res.Records); err != nil {
		return fmt.Errorf("saving to %s: %w", path, err)
	}
	slog.Info("records saved", "db", path, "count", len(res.Records))
	return nil
}

// resolveFormat picks the --format value, else the output extension, else
// Markdown for stdout.
func resolveFormat(args []string) (export.Format, error) {
	if processFormat != "" {
		f, err := export.ParseFormat(processFormat)
		if err != nil {
			return "", err
		}
		if f == export.XLSX && len(args) < 2 {
			return "", errors.New("xlsx output needs an output file")
		}
		return f, nil
	}
	if len(args) == 2 {
		return export.FormatFromPath(args[1]), nil
	}
	return export.Markdown, nil
}

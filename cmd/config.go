package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftlog/internal/config"
	"github.com/Tiliavir/shiftlog/internal/shift"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate the rules file and show the shift table",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, rules, err := loadRules()
	if err != nil {
		return err
	}

	path := configPath
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	good.Printf("%s is valid\n", path)
	printRules(os.Stdout, cfg, rules)
	return nil
}

func printRules(w io.Writer, cfg config.Config, rules shift.Rules) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "local"
	}
	fmt.Fprintf(w, "Burst threshold %s, status filter %q, timezone %s, %d users\n\n",
		rules.BurstThreshold, cfg.StatusFilter, tz, len(cfg.Users))

	fmt.Fprintf(w, "%-4s%-11s%-23s%-23s%-23s%-10s%-10s%-20s%-20s%s\n",
		"", "Shift", "Check-in", "Check-out", "Break search", "Break at", "Midpoint", "Check-in late", "Break-in late", "Min gap")
	for _, win := range rules.Windows {
		fmt.Fprintf(w, "%-4s%-11s%-23s%-23s%-23s%-10s%-10s%-20s%-20s%s\n",
			win.Code, win.DisplayName,
			win.CheckIn, win.CheckOut, win.BreakSearch,
			win.BreakCheckpoint, win.BreakMidpoint,
			"from "+win.CheckInCutoff.Late.String(),
			"from "+win.BreakInCutoff.Late.String(),
			win.MinBreakGap)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftlog/internal/config"
	"github.com/Tiliavir/shiftlog/internal/shift"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "shiftlog",
	Short: "shiftlog – turn raw badge swipes into shift attendance",
	Long: `shiftlog reads swipe logs exported by the time clock, groups the swipes
into Morning, Afternoon and Night shifts and reports check-in, break and
check-out times with on-time/late status.
Rules live in ~/.shiftlog/config.json; processed records can be archived
to ~/.shiftlog/records/ or a SQLite database.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Rules file (default ~/.shiftlog/config.json)")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configCmd)
}

// loadRules reads the config named by --config (or the default file) and
// validates it. Validation problems are returned for exit code 1; a config
// file that cannot be read exits with 2.
func loadRules() (config.Config, shift.Rules, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return cfg, shift.Rules{}, err
	}

	rules, err := cfg.Rules()
	if err != nil {
		return cfg, shift.Rules{}, fmt.Errorf("invalid configuration: %w", err)
	}
	slog.Debug("rules loaded", "burst_threshold", rules.BurstThreshold, "users", len(cfg.Users))
	return cfg, rules, nil
}

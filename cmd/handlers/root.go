// Package handlers implements the wardsweep command line.
package handlers

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TrevorS/wardsweep/internal/config"
	"github.com/TrevorS/wardsweep/internal/logging"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfgFile  string
	logLevel string

	cfg *config.Config
	log *zap.Logger
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	log, err := logging.New(level)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "wardsweep",
		Short: "Pick a cluster count for connectivity-constrained Ward clustering",
		Long: `wardsweep clusters a feature table with Ward linkage restricted to a
k-nearest-neighbor graph, once per candidate cluster count, and reports WCSS,
silhouette, Calinski-Harabasz and Davies-Bouldin scores for each count.

It can also plot those curves, sweep NMF component counts, and reformat raw
Raman spectra exports into the CSV layout the other commands read.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./.wardsweep.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newSweepCmd(a))
	rootCmd.AddCommand(newPlotCmd(a))
	rootCmd.AddCommand(newNMFCmd(a))
	rootCmd.AddCommand(newReformatCmd(a))
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

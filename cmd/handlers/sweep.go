package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TrevorS/wardsweep"
)

// sweepFlags are the clustering options shared by sweep and plot. Zero
// values fall back to the loaded configuration.
type sweepFlags struct {
	input     inputFlags
	min, max  int
	counts    []int
	neighbors int
	workers   int
	policy    string
	algorithm string
}

func (f *sweepFlags) register(cmd *cobra.Command) {
	f.input.register(cmd)
	cmd.Flags().IntVar(&f.min, "min", 0, "smallest cluster count (default sweep.min_clusters)")
	cmd.Flags().IntVar(&f.max, "max", 0, "largest cluster count (default sweep.max_clusters)")
	cmd.Flags().IntSliceVar(&f.counts, "counts", nil, "explicit cluster counts, in output order; overrides --min/--max")
	cmd.Flags().IntVar(&f.neighbors, "neighbors", 0, "neighbors per sample in the connectivity graph")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "cluster counts evaluated concurrently")
	cmd.Flags().StringVar(&f.policy, "disconnect", "", "disconnected graph policy: bridge or fail")
	cmd.Flags().StringVar(&f.algorithm, "neighbor-algorithm", "", "neighbor search: auto, brute, kdtree or balltree")
}

func (f *sweepFlags) run(a *app) (*wardsweep.SweepResult, error) {
	data, err := f.input.features()
	if err != nil {
		return nil, err
	}

	s := a.cfg.Sweep
	counts := f.counts
	if len(counts) == 0 {
		lo, hi := s.MinClusters, s.MaxClusters
		if f.min > 0 {
			lo = f.min
		}
		if f.max > 0 {
			hi = f.max
		}
		counts = intRange(lo, hi)
		if len(counts) == 0 {
			return nil, fmt.Errorf("empty cluster range [%d, %d]", lo, hi)
		}
	}

	cfg := wardsweep.DefaultConfig()
	cfg.Neighbors = pick(f.neighbors, s.Neighbors)
	cfg.Workers = pick(f.workers, s.Workers)
	cfg.Disconnect = wardsweep.DisconnectPolicy(pick(f.policy, s.DisconnectPolicy))
	cfg.NeighborAlgorithm = wardsweep.NeighborAlgorithm(pick(f.algorithm, s.NeighborAlgorithm))
	cfg.Logger = a.log

	return wardsweep.Sweep(data, counts, cfg)
}

// pick returns flag unless it is the zero value.
func pick[T comparable](flag, fallback T) T {
	var zero T
	if flag != zero {
		return flag
	}
	return fallback
}

func newSweepCmd(a *app) *cobra.Command {
	var (
		flags  sweepFlags
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Score every candidate cluster count",
		Example: `  wardsweep sweep --input spectra.csv
  wardsweep sweep --input spectra.csv --counts 5,2,8 --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			res, err := flags.run(a)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return writeSweep(w, res, format)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, csv or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results to a file instead of stdout")
	return cmd
}

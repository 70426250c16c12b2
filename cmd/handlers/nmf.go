package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TrevorS/wardsweep/nmf"
	"github.com/TrevorS/wardsweep/render"
)

func newNMFCmd(a *app) *cobra.Command {
	var (
		input         inputFlags
		image         plotFlags
		minComponents int
		maxComponents int
		workers       int
		marker        int
		format        string
	)
	cmd := &cobra.Command{
		Use:     "nmf",
		Short:   "Sweep NMF component counts and report the residual norm",
		Example: `  wardsweep nmf --input spectra.csv --min 1 --max 8 --out residuals.png --marker 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, drop, err := input.load()
			if err != nil {
				return err
			}
			X, err := tbl.Matrix(drop...)
			if err != nil {
				return err
			}

			c := a.cfg.NMF
			components := intRange(pick(minComponents, c.MinComponents), pick(maxComponents, c.MaxComponents))
			if len(components) == 0 {
				return fmt.Errorf("empty component range")
			}
			opts := nmf.Options{
				Tolerance: c.Tolerance,
				MaxIter:   c.MaxIter,
				Workers:   pick(workers, a.cfg.Sweep.Workers),
				Logger:    a.log,
			}
			residuals, err := nmf.Residuals(X, components, opts)
			if err != nil {
				return err
			}

			if err := writeResiduals(cmd.OutOrStdout(), components, residuals, format); err != nil {
				return err
			}
			if image.out == "" {
				return nil
			}
			return image.write(func(f *os.File) error {
				return render.ResidualCurve(f, components, residuals, marker, image.options(a))
			})
		},
	}
	input.register(cmd)
	image.register(cmd, false)
	cmd.Flags().IntVar(&minComponents, "min", 0, "fewest components (default nmf.min_components)")
	cmd.Flags().IntVar(&maxComponents, "max", 0, "most components (default nmf.max_components)")
	cmd.Flags().IntVar(&workers, "workers", 0, "component counts fitted concurrently")
	cmd.Flags().IntVar(&marker, "marker", 0, "component count to mark on the plot")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, csv or yaml")
	return cmd
}

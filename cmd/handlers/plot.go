package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TrevorS/wardsweep"
	"github.com/TrevorS/wardsweep/render"
)

// plotFlags are the image options shared by plot and nmf.
type plotFlags struct {
	out    string
	width  float64
	height float64
	format string
}

func (f *plotFlags) register(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVar(&f.out, "out", "", "image file to write")
	cmd.Flags().Float64Var(&f.width, "width", 0, "image width in inches (default plot.width)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "image height in inches (default plot.height)")
	cmd.Flags().StringVar(&f.format, "image-format", "", "png or svg (default plot.format)")
	if required {
		_ = cmd.MarkFlagRequired("out")
	}
}

func (f *plotFlags) options(a *app) render.Options {
	return render.Options{
		Width:  pick(f.width, a.cfg.Plot.Width),
		Height: pick(f.height, a.cfg.Plot.Height),
		Format: render.Format(pick(f.format, a.cfg.Plot.Format)),
	}
}

// write renders into f.out, removing a partial file on failure.
func (f *plotFlags) write(draw func(*os.File) error) error {
	file, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if err := draw(file); err != nil {
		file.Close()
		os.Remove(f.out)
		return err
	}
	return file.Close()
}

func newPlotCmd(a *app) *cobra.Command {
	var (
		flags     sweepFlags
		image     plotFlags
		highlight int
	)
	cmd := &cobra.Command{
		Use:     "plot",
		Short:   "Draw the four sweep curves with a marker at the chosen cluster count",
		Example: `  wardsweep plot --input spectra.csv --highlight 3 --out curves.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.run(a)
			if err != nil {
				return err
			}

			marker := highlight
			if marker == 0 {
				if k, ok := res.Best(wardsweep.MetricSilhouette); ok {
					marker = k
				}
			}
			err = image.write(func(f *os.File) error {
				return render.SweepCurves(f, res, marker, image.options(a))
			})
			if err != nil {
				return err
			}
			a.log.Info("plot written", zap.String("path", image.out), zap.Int("highlight", marker))
			return nil
		},
	}
	flags.register(cmd)
	image.register(cmd, true)
	cmd.Flags().IntVar(&highlight, "highlight", 0, "cluster count to mark (default: best silhouette)")
	return cmd
}

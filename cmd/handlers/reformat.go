package handlers

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TrevorS/wardsweep/internal/spectra"
)

func newReformatCmd(a *app) *cobra.Command {
	var (
		input    string
		output   string
		interval float64
	)
	cmd := &cobra.Command{
		Use:     "reformat",
		Short:   "Convert a raw Raman export into a timestamped CSV, one spectrum per row",
		Example: `  wardsweep reformat --input Raman_spectra_data.txt --output spectra.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer in.Close()

			tbl, err := spectra.LoadSpectra(in)
			if err != nil {
				return err
			}
			tbl.AddTimestamps(pick(interval, a.cfg.Spectra.Interval))

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				out, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer out.Close()
				w = out
			}
			if err := tbl.WriteCSV(w); err != nil {
				return err
			}

			a.log.Info("spectra reformatted",
				zap.String("input", input),
				zap.String("output", output),
				zap.Int("spectra", len(tbl.Rows)),
				zap.Int("shifts", len(tbl.Columns)-1))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "whitespace-separated export, one Raman shift per line")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file to write (default stdout)")
	cmd.Flags().Float64Var(&interval, "interval", 0, "seconds between spectra (default spectra.interval)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

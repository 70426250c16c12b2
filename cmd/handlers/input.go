package handlers

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/TrevorS/wardsweep/internal/spectra"
)

// inputFlags selects the feature table shared by sweep, plot and nmf.
type inputFlags struct {
	path string
	drop []string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "input", "i", "", "CSV feature table with a header row")
	cmd.Flags().StringSliceVar(&f.drop, "drop", nil, "columns to exclude from the features (time is always excluded)")
	_ = cmd.MarkFlagRequired("input")
}

// load reads the table and returns it without the excluded columns.
func (f *inputFlags) load() (*spectra.Table, []string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	tbl, err := spectra.ReadCSV(file)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	drop := slices.Clone(f.drop)
	if tbl.HasColumn(spectra.TimeColumn) && !slices.Contains(drop, spectra.TimeColumn) {
		drop = append(drop, spectra.TimeColumn)
	}
	return tbl, drop, nil
}

func (f *inputFlags) features() ([][]float64, error) {
	tbl, drop, err := f.load()
	if err != nil {
		return nil, err
	}
	return tbl.Features(drop...)
}

// intRange returns lo..hi inclusive.
func intRange(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		out = append(out, k)
	}
	return out
}

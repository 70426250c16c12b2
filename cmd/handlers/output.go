package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/wardsweep"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	bestStyle   = cellStyle.Foreground(lipgloss.Color("10")).Bold(true)
)

var sweepMetrics = []string{
	wardsweep.MetricWCSS,
	wardsweep.MetricSilhouette,
	wardsweep.MetricCalinskiHarabasz,
	wardsweep.MetricDaviesBouldin,
}

func formatValue(v float64) string {
	if wardsweep.IsUndefined(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// optional maps the undefined sentinel to nil so YAML shows null.
func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// checkFormat rejects an unknown sweep output format.
func checkFormat(format string) error {
	switch format {
	case formatTable, formatCSV, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeSweep(w io.Writer, res *wardsweep.SweepResult, format string) error {
	switch format {
	case formatTable:
		return writeSweepTable(w, res)
	case formatCSV:
		return writeSweepCSV(w, res)
	case formatYAML:
		return writeSweepYAML(w, res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeSweepTable(w io.Writer, res *wardsweep.SweepResult) error {
	// best[col] is the row holding the best value of that column's metric.
	best := map[int]int{}
	for m, metric := range sweepMetrics {
		k, ok := res.Best(metric)
		if !ok {
			continue
		}
		for i, c := range res.Counts {
			if c == k {
				best[m+2] = i
				break
			}
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("k", "clusters", "WCSS", "silhouette", "calinski-harabasz", "davies-bouldin").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if r, ok := best[col]; ok && r == row {
				return bestStyle
			}
			return cellStyle
		})
	for i, k := range res.Counts {
		t.Row(
			strconv.Itoa(k),
			strconv.Itoa(res.Clusters[i]),
			formatValue(res.WCSS[i]),
			formatValue(res.Silhouette[i]),
			formatValue(res.CalinskiHarabasz[i]),
			formatValue(res.DaviesBouldin[i]),
		)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	if res.Components > 1 {
		fmt.Fprintf(w, "connectivity graph has %d components\n", res.Components)
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "omitted %s\n", d)
	}
	return nil
}

func writeSweepCSV(w io.Writer, res *wardsweep.SweepResult) error {
	cw := csv.NewWriter(w)
	header := append([]string{"k", "clusters"}, sweepMetrics...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, k := range res.Counts {
		record := []string{strconv.Itoa(k), strconv.Itoa(res.Clusters[i])}
		for _, m := range sweepMetrics {
			record = append(record, strconv.FormatFloat(res.Series(m)[i], 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type sweepRow struct {
	K                int      `yaml:"k"`
	Clusters         int      `yaml:"clusters"`
	WCSS             *float64 `yaml:"wcss"`
	Silhouette       *float64 `yaml:"silhouette"`
	CalinskiHarabasz *float64 `yaml:"calinski_harabasz"`
	DaviesBouldin    *float64 `yaml:"davies_bouldin"`
}

type sweepReport struct {
	Components int            `yaml:"components"`
	Rows       []sweepRow     `yaml:"rows"`
	Best       map[string]int `yaml:"best,omitempty"`
	Omitted    []string       `yaml:"omitted,omitempty"`
}

func writeSweepYAML(w io.Writer, res *wardsweep.SweepResult) error {
	report := sweepReport{Components: res.Components, Best: map[string]int{}}
	for i, k := range res.Counts {
		report.Rows = append(report.Rows, sweepRow{
			K:                k,
			Clusters:         res.Clusters[i],
			WCSS:             optional(res.WCSS[i]),
			Silhouette:       optional(res.Silhouette[i]),
			CalinskiHarabasz: optional(res.CalinskiHarabasz[i]),
			DaviesBouldin:    optional(res.DaviesBouldin[i]),
		})
	}
	for _, m := range sweepMetrics {
		if k, ok := res.Best(m); ok {
			report.Best[m] = k
		}
	}
	for _, d := range res.Diagnostics {
		report.Omitted = append(report.Omitted, d.String())
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

type residualRow struct {
	Components int     `yaml:"components"`
	Residual   float64 `yaml:"residual"`
}

func writeResiduals(w io.Writer, components []int, residuals []float64, format string) error {
	switch format {
	case formatTable:
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("components", "residual norm").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		for i, c := range components {
			t.Row(strconv.Itoa(c), formatValue(residuals[i]))
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err
	case formatCSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"components", "residual"})
		for i, c := range components {
			_ = cw.Write([]string{strconv.Itoa(c), strconv.FormatFloat(residuals[i], 'g', -1, 64)})
		}
		cw.Flush()
		return cw.Error()
	case formatYAML:
		rows := make([]residualRow, len(components))
		for i, c := range components {
			rows[i] = residualRow{Components: c, Residual: residuals[i]}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ResidualCurve draws the norm of the factorization residual against the
// number of components, with a marker line at marker when it is positive.
// components and residuals must have the same length.
func ResidualCurve(w io.Writer, components []int, residuals []float64, marker int, opts Options) error {
	if len(components) == 0 {
		return ErrNoData
	}
	if len(components) != len(residuals) {
		return fmt.Errorf("render: %d component counts but %d residuals", len(components), len(residuals))
	}
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = "Norm of Residuals vs Number of Components"
	p.X.Label.Text = "Number of Components"
	p.Y.Label.Text = "Norm of Residuals"
	p.X.Tick.Marker = integerTicks(components, true)
	p.Add(plotterGrid())

	style := series{color: blue, glyph: draw.CircleGlyph{}, dash: true}
	if err := addCurve(p, components, residuals, style); err != nil {
		return fmt.Errorf("render: residuals: %w", err)
	}
	if marker > 0 {
		p.Add(NewVLine(float64(marker), red))
	}
	p.X.Min, p.X.Max = xRange(components, marker)

	c, err := opts.canvas()
	if err != nil {
		return err
	}
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("render: writing image: %w", err)
	}
	return nil
}

func plotterGrid() *plotter.Grid {
	g := plotter.NewGrid()
	g.Vertical.Width = vg.Points(0.25)
	g.Horizontal.Width = vg.Points(0.25)
	return g
}

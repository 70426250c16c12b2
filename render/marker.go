package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// VLine is a plotter that draws a vertical line across the whole data area
// at X.
type VLine struct {
	X float64
	draw.LineStyle
}

// NewVLine returns a thin dashed vertical line at x.
func NewVLine(x float64, c color.Color) *VLine {
	return &VLine{
		X: x,
		LineStyle: draw.LineStyle{
			Color:  c,
			Width:  vg.Points(1),
			Dashes: []vg.Length{vg.Points(5), vg.Points(3)},
		},
	}
}

// Plot implements the plot.Plotter interface.
func (v *VLine) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	x := trX(v.X)
	if !c.ContainsX(x) {
		return
	}
	c.StrokeLine2(v.LineStyle, x, c.Min.Y, x, c.Max.Y)
}

// DataRange implements the plot.DataRanger interface. The line claims only
// its x position; the inverted y range leaves the y axis to the other
// plotters.
func (v *VLine) DataRange() (xmin, xmax, ymin, ymax float64) {
	return v.X, v.X, math.Inf(1), math.Inf(-1)
}

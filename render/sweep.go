package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/TrevorS/wardsweep"
)

var (
	red        = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	blue       = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	green      = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	darkViolet = color.RGBA{R: 0x94, G: 0x00, B: 0xd3, A: 0xff}
	black      = color.Black
)

// panel is one of the stacked sweep charts.
type panel struct {
	metric string
	label  string
	style  series
	// weight is the panel's share of the image height.
	weight float64
}

var sweepPanels = []panel{
	{wardsweep.MetricWCSS, "WCSS", series{color: red, glyph: draw.CrossGlyph{}}, 3},
	{wardsweep.MetricSilhouette, "Silhouette", series{color: blue, glyph: draw.CircleGlyph{}}, 2},
	{wardsweep.MetricCalinskiHarabasz, "Calinski-Harabasz", series{color: green, glyph: draw.SquareGlyph{}}, 2},
	{wardsweep.MetricDaviesBouldin, "Davies-Bouldin", series{color: darkViolet, glyph: draw.PlusGlyph{}}, 2},
}

// SweepCurves draws the four sweep metrics as vertically stacked charts that
// share the cluster-count axis, and writes the image to w. A dashed vertical
// marker is drawn at highlight when it is positive. Undefined metric values
// leave a gap in their curve.
func SweepCurves(w io.Writer, res *wardsweep.SweepResult, highlight int, opts Options) error {
	if res == nil || len(res.Counts) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()

	lo, hi := xRange(res.Counts, highlight)
	plots := make([]*plot.Plot, len(sweepPanels))
	weights := make([]float64, len(sweepPanels))
	for i, pn := range sweepPanels {
		p := plot.New()
		p.Y.Label.Text = pn.label
		p.Y.Label.TextStyle.Color = pn.style.color
		last := i == len(sweepPanels)-1
		if last {
			p.X.Label.Text = "Number of Clusters"
		}
		p.X.Tick.Marker = integerTicks(res.Counts, last)
		p.Add(plotterGrid())

		if err := addCurve(p, res.Counts, res.Series(pn.metric), pn.style); err != nil {
			return fmt.Errorf("render: %s: %w", pn.metric, err)
		}
		if highlight > 0 {
			p.Add(NewVLine(float64(highlight), black))
		}
		p.X.Min, p.X.Max = lo, hi
		plots[i] = p
		weights[i] = pn.weight
	}

	c, err := opts.canvas()
	if err != nil {
		return err
	}
	canvases := stack(plots, weights, draw.New(c))
	for i, p := range plots {
		p.Draw(canvases[i])
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("render: writing image: %w", err)
	}
	return nil
}

// stack splits dc into vertically stacked canvases, top first, with heights
// proportional to weights. Each canvas is then cropped so that the data areas
// of all plots share their left and right edges.
func stack(plots []*plot.Plot, weights []float64, dc draw.Canvas) []draw.Canvas {
	var (
		padTop    = vg.Points(4)
		padBottom = vg.Points(4)
		padLeft   = vg.Points(4)
		padRight  = vg.Points(8)
		padY      = vg.Millimeter
	)
	var total float64
	for _, w := range weights {
		total += w
	}
	avail := dc.Max.Y - dc.Min.Y - padTop - padBottom - padY*vg.Length(len(plots)-1)

	out := make([]draw.Canvas, len(plots))
	top := dc.Max.Y - padTop
	var left, right vg.Length
	for i, p := range plots {
		h := avail * vg.Length(weights[i]/total)
		c := draw.Crop(dc, padLeft, -padRight, top-h-dc.Min.Y, top-dc.Max.Y)
		top -= h + padY

		data := p.DataCanvas(c)
		left = max(left, data.Min.X-c.Min.X)
		right = max(right, c.Max.X-data.Max.X)
		out[i] = c
	}
	for i, p := range plots {
		c := out[i]
		data := p.DataCanvas(c)
		out[i] = draw.Crop(c, left-(data.Min.X-c.Min.X), (c.Max.X-data.Max.X)-right, 0, 0)
	}
	return out
}

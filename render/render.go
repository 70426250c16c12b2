// Package render draws sweep results as stacked line charts.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("render: no data to plot")

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Options controls the output image.
type Options struct {
	// Width and Height are in inches.
	Width  float64
	Height float64
	Format Format
}

// DefaultOptions returns an 8x6 inch PNG.
func DefaultOptions() Options {
	return Options{Width: 8, Height: 6, Format: FormatPNG}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	return o
}

// canvas creates the backing image for o.
func (o Options) canvas() (vg.CanvasWriterTo, error) {
	w, h := vg.Length(o.Width)*vg.Inch, vg.Length(o.Height)*vg.Inch
	switch o.Format {
	case FormatPNG:
		return vgimg.PngCanvas{Canvas: vgimg.New(w, h)}, nil
	case FormatSVG:
		return vgsvg.New(w, h), nil
	default:
		return nil, fmt.Errorf("render: unsupported format %q", o.Format)
	}
}

// series is one styled curve.
type series struct {
	color color.Color
	glyph draw.GlyphDrawer
	dash  bool
}

// addCurve adds the points (xs[i], ys[i]) to p as connected line segments.
// NaN values break the curve; an isolated defined point is drawn as a glyph
// only.
func addCurve(p *plot.Plot, xs []int, ys []float64, s series) error {
	for _, seg := range segments(xs, ys) {
		line, points, err := plotter.NewLinePoints(seg)
		if err != nil {
			return err
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		if s.dash {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		}
		points.Color = s.color
		points.Shape = s.glyph
		points.Radius = vg.Points(3)
		if len(seg) > 1 {
			p.Add(line)
		}
		p.Add(points)
	}
	return nil
}

// segments splits the curve into maximal runs of defined values.
func segments(xs []int, ys []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(xs[i]), Y: y})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// integerTicks labels every x in xs. With labels false the tick marks stay
// but the text is dropped, for panels that share the x axis of the panel
// below.
func integerTicks(xs []int, labels bool) plot.ConstantTicks {
	ticks := make([]plot.Tick, 0, len(xs))
	seen := make(map[int]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			continue
		}
		seen[x] = true
		t := plot.Tick{Value: float64(x)}
		if labels {
			t.Label = strconv.Itoa(x)
		}
		ticks = append(ticks, t)
	}
	return plot.ConstantTicks(ticks)
}

// xRange returns the padded x extent covering xs and the marker.
func xRange(xs []int, marker int) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, float64(x))
		hi = math.Max(hi, float64(x))
	}
	if marker > 0 {
		lo = math.Min(lo, float64(marker))
		hi = math.Max(hi, float64(marker))
	}
	return lo - 0.5, hi + 0.5
}

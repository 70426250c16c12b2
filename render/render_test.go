package render

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/TrevorS/wardsweep"
)

func sampleResult() *wardsweep.SweepResult {
	nan := wardsweep.Undefined()
	return &wardsweep.SweepResult{
		Counts:           []int{2, 3, 4, 5, 6},
		WCSS:             []float64{90, 40, 30, 25, 21},
		Silhouette:       []float64{0.5, 0.7, nan, 0.4, 0.3},
		CalinskiHarabasz: []float64{120, 300, 250, nan, 180},
		DaviesBouldin:    []float64{nan, nan, nan, nan, nan},
		Clusters:         []int{2, 3, 4, 5, 6},
	}
}

func TestSweepCurves_PNG(t *testing.T) {
	var buf bytes.Buffer
	err := SweepCurves(&buf, sampleResult(), 3, Options{Width: 4, Height: 5})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, 4*vgimg.DefaultDPI, b.Dx())
	assert.Equal(t, 5*vgimg.DefaultDPI, b.Dy())
}

func TestSweepCurves_SVG(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatSVG
	require.NoError(t, SweepCurves(&buf, sampleResult(), 0, opts))
	assert.True(t, strings.Contains(buf.String(), "<svg"), "output is not SVG")
}

func TestSweepCurves_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, SweepCurves(&buf, nil, 3, DefaultOptions()), ErrNoData)
	assert.ErrorIs(t, SweepCurves(&buf, &wardsweep.SweepResult{}, 3, DefaultOptions()), ErrNoData)
	assert.Error(t, SweepCurves(&buf, sampleResult(), 3, Options{Format: "bmp"}))
}

func TestStack_WeightedHeights(t *testing.T) {
	plots := make([]*plot.Plot, 4)
	for i := range plots {
		p := plot.New()
		p.Y.Label.Text = "y"
		p.X.Min, p.X.Max = 0, 10
		p.Y.Min, p.Y.Max = 0, math.Pow(1000, float64(i))
		plots[i] = p
	}
	dc := draw.New(vgimg.New(4*vg.Inch, 6*vg.Inch))
	canvases := stack(plots, []float64{3, 2, 2, 2}, dc)
	require.Len(t, canvases, 4)

	height := func(c draw.Canvas) float64 { return float64(c.Max.Y - c.Min.Y) }
	assert.InDelta(t, 1.5, height(canvases[0])/height(canvases[1]), 1e-9)
	assert.InDelta(t, height(canvases[1]), height(canvases[3]), 1e-9)
	for i := 1; i < len(canvases); i++ {
		assert.Greater(t, canvases[i-1].Min.Y, canvases[i].Max.Y, "panel %d not below panel %d", i, i-1)
	}

	left := plots[0].DataCanvas(canvases[0]).Min.X
	right := plots[0].DataCanvas(canvases[0]).Max.X
	for i := 1; i < len(plots); i++ {
		data := plots[i].DataCanvas(canvases[i])
		assert.InDelta(t, float64(left), float64(data.Min.X), 1e-6, "panel %d left edge", i)
		assert.InDelta(t, float64(right), float64(data.Max.X), 1e-6, "panel %d right edge", i)
	}
}

func TestResidualCurve(t *testing.T) {
	var buf bytes.Buffer
	err := ResidualCurve(&buf, []int{1, 2, 3, 4}, []float64{10, 4, 1.5, 1.4}, 3, DefaultOptions())
	require.NoError(t, err)
	_, err = png.Decode(&buf)
	require.NoError(t, err)

	assert.ErrorIs(t, ResidualCurve(&buf, nil, nil, 0, DefaultOptions()), ErrNoData)
	assert.Error(t, ResidualCurve(&buf, []int{1, 2}, []float64{1}, 0, DefaultOptions()))
}

func TestSegments(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		ys   []float64
		want []plotter.XYs
	}{
		{"all defined", []float64{1, 2, 3}, []plotter.XYs{{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}}},
		{"gap in the middle", []float64{1, nan, 3}, []plotter.XYs{{{X: 1, Y: 1}}, {{X: 3, Y: 3}}}},
		{"leading and trailing gaps", []float64{nan, 2, 3, nan}, []plotter.XYs{{{X: 2, Y: 2}, {X: 3, Y: 3}}}},
		{"infinite values break too", []float64{1, math.Inf(1), 3}, []plotter.XYs{{{X: 1, Y: 1}}, {{X: 3, Y: 3}}}},
		{"nothing defined", []float64{nan, nan}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs := make([]int, len(tt.ys))
			for i := range xs {
				xs[i] = i + 1
			}
			assert.Equal(t, tt.want, segments(xs, tt.ys))
		})
	}
}

func TestIntegerTicks(t *testing.T) {
	ticks := integerTicks([]int{5, 2, 5, 8}, true).Ticks(0, 10)
	require.Len(t, ticks, 3)
	assert.Equal(t, plot.Tick{Value: 5, Label: "5"}, ticks[0])
	assert.Equal(t, plot.Tick{Value: 2, Label: "2"}, ticks[1])

	for _, tk := range integerTicks([]int{1, 2}, false).Ticks(0, 3) {
		assert.Empty(t, tk.Label)
	}
}

func TestVLine_DataRangeLeavesYAlone(t *testing.T) {
	p := plot.New()
	line, err := plotter.NewLine(plotter.XYs{{X: 1, Y: -2}, {X: 4, Y: 7}})
	require.NoError(t, err)
	p.Add(line, NewVLine(6, red))

	assert.Equal(t, 1.0, p.X.Min)
	assert.Equal(t, 6.0, p.X.Max)
	assert.Equal(t, -2.0, p.Y.Min)
	assert.Equal(t, 7.0, p.Y.Max)
}

func TestXRange(t *testing.T) {
	lo, hi := xRange([]int{2, 3, 9}, 0)
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 9.5, hi)

	lo, hi = xRange([]int{2, 3}, 7)
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 7.5, hi)
}

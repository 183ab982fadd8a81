// Package plot renders a list of eigenvalues as a PNG chart.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	stdio "io"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Kind is the chart type.
type Kind string

const (
	Violin Kind = "violin"
	Hist   Kind = "hist"
	Dens   Kind = "dens"
	Box    Kind = "box"
)

var (
	// ErrUnsupportedKind is returned for an unknown chart type.
	ErrUnsupportedKind = errors.New("plot: unsupported plot type")
	// ErrNoData is returned when there is no finite value to plot.
	ErrNoData = errors.New("plot: no data")
)

// Charts are 8x6 inches at 100 dpi, i.e. 800x600 pixels.
const (
	width  = 8 * vg.Inch
	height = 6 * vg.Inch
	dpi    = 100
)

var (
	cyan     = color.RGBA{0, 191, 191, 255}
	magenta  = color.RGBA{191, 0, 191, 255}
	magentaA = color.NRGBA{191, 0, 191, 77}
	green    = color.RGBA{0, 128, 0, 255}
	orange   = color.RGBA{255, 127, 14, 255}
	blue     = color.RGBA{31, 119, 180, 255}
	blueA    = color.NRGBA{31, 119, 180, 77}
)

// ParseKind converts a flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Violin, Hist, Dens, Box:
		return k, nil
	}
	return "", fmt.Errorf("<%s>: %w", s, ErrUnsupportedKind)
}

// OutputName returns the PNG name for an eigenvalue file: ".txt" is removed
// and "-<kind>.png" appended.
func OutputName(input string, kind Kind) string {
	return strings.ReplaceAll(input, ".txt", "") + "-" + string(kind) + ".png"
}

// Render builds a chart of the given kind. Non-finite values are ignored.
func Render(values []float64, kind Kind) (*plot.Plot, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	data := finite(values)
	if len(data) == 0 {
		return nil, ErrNoData
	}
	sort.Float64s(data)

	p := plot.New()
	p.X.Label.Text = "Eigenvalue"

	var err error
	switch kind {
	case Hist:
		err = histogram(p, data)
	case Dens:
		err = density(p, data)
	case Box:
		err = boxPlot(p, data)
	default:
		err = violin(p, data)
	}
	if err != nil {
		return nil, fmt.Errorf("plot: %s: %w", kind, err)
	}
	return p, nil
}

// WritePNG draws p on an 800x600 canvas and encodes it as PNG.
func WritePNG(w stdio.Writer, p *plot.Plot) error {
	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	png := vgimg.PngCanvas{Canvas: c}
	_, err := png.WriteTo(w)
	return err
}

func histogram(p *plot.Plot, data []float64) error {
	h, err := plotter.NewHist(plotter.Values(data), 10)
	if err != nil {
		return err
	}
	h.FillColor = cyan

	p.Add(h)
	p.Title.Text = "Histogram of Eigenvalues"
	p.Y.Label.Text = "Frequency"
	return nil
}

func density(p *plot.Plot, data []float64) error {
	h, err := plotter.NewHist(plotter.Values(data), 30)
	if err != nil {
		return err
	}
	h.Normalize(1)

	curve := make(plotter.XYs, len(h.Bins))
	for i, b := range h.Bins {
		curve[i] = plotter.XY{X: (b.Min + b.Max) / 2, Y: b.Weight}
	}

	area := make(plotter.XYs, 0, len(curve)+2)
	area = append(area, plotter.XY{X: curve[0].X})
	area = append(area, curve...)
	area = append(area, plotter.XY{X: curve[len(curve)-1].X})

	fill, err := plotter.NewPolygon(area)
	if err != nil {
		return err
	}
	fill.Color = magentaA
	fill.LineStyle.Width = 0

	line, err := plotter.NewLine(curve)
	if err != nil {
		return err
	}
	line.LineStyle.Color = magenta
	line.LineStyle.Width = vg.Points(1.5)

	p.Add(fill, line)
	p.Title.Text = "Density Plot of Eigenvalues"
	p.Y.Label.Text = "Density"
	return nil
}

func boxPlot(p *plot.Plot, data []float64) error {
	b, err := plotter.NewBoxPlot(vg.Points(60), 0, plotter.Values(data))
	if err != nil {
		return err
	}
	b.Horizontal = true
	b.FillColor = green
	b.MedianStyle.Color = orange

	p.Add(b)
	p.HideY()
	p.Title.Text = "Box Plot of Eigenvalues"
	return nil
}

// violin mirrors the kernel density estimate around y = 0 with a narrow box
// plot on the axis.
func violin(p *plot.Plot, data []float64) error {
	const (
		points    = 100
		halfWidth = 0.4
	)

	bw := bandwidth(data)
	lo, hi := data[0]-2*bw, data[len(data)-1]+2*bw

	upper := make(plotter.XYs, points)
	top := 0.0
	for i := range upper {
		x := lo + (hi-lo)*float64(i)/float64(points-1)
		upper[i] = plotter.XY{X: x, Y: kde(data, x, bw)}
		if upper[i].Y > top {
			top = upper[i].Y
		}
	}

	outline := make(plotter.XYs, 0, 2*points)
	for _, pt := range upper {
		outline = append(outline, plotter.XY{X: pt.X, Y: pt.Y / top * halfWidth})
	}
	for i := points - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: upper[i].X, Y: -upper[i].Y / top * halfWidth})
	}

	body, err := plotter.NewPolygon(outline)
	if err != nil {
		return err
	}
	body.Color = blueA
	body.LineStyle.Color = blue

	inner, err := plotter.NewBoxPlot(vg.Points(8), 0, plotter.Values(data))
	if err != nil {
		return err
	}
	inner.Horizontal = true

	p.Add(body, inner)
	p.HideY()
	p.Title.Text = "Violin Plot of Eigenvalues"
	return nil
}

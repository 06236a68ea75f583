package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

const (
	dpi      = 72.0
	fontSize = 12.0

	// Border sizes in pixels around the plot area
	topBorder    = 30
	leftBorder   = 70
	bottomBorder = 40
	rightBorder  = 20

	gridLines = 4
)

var (
	chartBackground = color.RGBA{255, 255, 255, 255}
	gridColor       = color.RGBA{220, 220, 220, 255}
	axisColor       = color.RGBA{0, 0, 0, 255}
)

// Series is one plotted parameter over the session's ticks.
type Series struct {
	Label  string
	Color  color.RGBA
	Values []int
}

// ChartRenderer draws telemetry parameter series over tick count. Axis
// labels require a font; without one the chart is drawn unlabeled.
type ChartRenderer struct {
	width, height int
	context       *freetype.Context
}

// NewChartRenderer creates a renderer for the given plot size, loading the
// label font from fontPath when provided.
func NewChartRenderer(width, height int, fontPath string) (*ChartRenderer, error) {
	r := ChartRenderer{width: width, height: height}

	if fontPath == "" {
		return &r, nil
	}

	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetSrc(image.NewUniform(axisColor))
	ctx.SetHinting(font.HintingFull)
	r.context = ctx

	return &r, nil
}

// Render plots the series onto a fresh image. All series share the x axis
// (frame index); the y axis is scaled to the combined value range.
func (r *ChartRenderer) Render(series []Series) (*image.RGBA, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no series to plot")
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(chartBackground), image.Point{}, draw.Src)

	plot := image.Rect(leftBorder, topBorder, r.width-rightBorder, r.height-bottomBorder)

	lo, hi, maxLen := seriesBounds(series)
	if maxLen < 2 {
		return nil, fmt.Errorf("need at least 2 recorded frames to plot, got %d", maxLen)
	}
	if lo == hi {
		hi = lo + 1 // avoid a degenerate y scale for constant telemetry
	}

	r.drawGrid(img, plot, lo, hi)

	for _, s := range series {
		r.drawSeries(img, plot, s, lo, hi, maxLen)
	}

	r.drawLegend(img, plot, series)

	return img, nil
}

func seriesBounds(series []Series) (lo, hi, maxLen int) {
	lo, hi = series[0].Values[0], series[0].Values[0]
	for _, s := range series {
		maxLen = max(maxLen, len(s.Values))
		for _, v := range s.Values {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi, maxLen
}

func (r *ChartRenderer) drawGrid(img *image.RGBA, plot image.Rectangle, lo, hi int) {
	// Horizontal gridlines with value labels on the left border.
	for i := 0; i <= gridLines; i++ {
		y := plot.Max.Y - i*plot.Dy()/gridLines
		for x := plot.Min.X; x < plot.Max.X; x++ {
			img.Set(x, y, gridColor)
		}

		value := lo + i*(hi-lo)/gridLines
		r.drawString(img, humanize.Comma(int64(value)), 5, y+4)
	}

	// Axis lines.
	for x := plot.Min.X; x < plot.Max.X; x++ {
		img.Set(x, plot.Max.Y, axisColor)
	}
	for y := plot.Min.Y; y < plot.Max.Y; y++ {
		img.Set(plot.Min.X, y, axisColor)
	}
}

func (r *ChartRenderer) drawSeries(img *image.RGBA, plot image.Rectangle, s Series, lo, hi, maxLen int) {
	prevX, prevY := -1, -1
	for i, v := range s.Values {
		x := plot.Min.X + i*(plot.Dx()-1)/(maxLen-1)
		y := plot.Max.Y - (v-lo)*(plot.Dy()-1)/(hi-lo)

		if prevX >= 0 {
			drawLine(img, prevX, prevY, x, y, s.Color)
		}
		prevX, prevY = x, y
	}
}

func (r *ChartRenderer) drawLegend(img *image.RGBA, plot image.Rectangle, series []Series) {
	x := plot.Min.X
	for _, s := range series {
		for i := 0; i < 20; i++ {
			img.Set(x+i, plot.Min.Y-10, s.Color)
			img.Set(x+i, plot.Min.Y-9, s.Color)
		}
		r.drawString(img, s.Label, x+25, plot.Min.Y-5)
		x += 25 + 8*len(s.Label) + 20
	}
}

func (r *ChartRenderer) drawString(img *image.RGBA, s string, x, y int) {
	if r.context == nil {
		return
	}

	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)
	_, _ = r.context.DrawString(s, freetype.Pt(x, y))
}

// drawLine plots a straight segment using the Bresenham walk.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)

	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

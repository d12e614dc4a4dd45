package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var (
	gridColor        = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor       = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	rawColor         = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	oversampledColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	filteredColor    = color.RGBA{R: 100, G: 200, B: 255, A: 255}
)

// trendRenderer renders the trend widget.
type trendRenderer struct {
	trend      *TrendWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
	lastSize   fyne.Size
}

// plotArea is the part of the widget inside the axis margins.
type plotArea struct {
	x, y, w, h float32
	yMin, yMax float32
	xMin, xMax time.Time
}

func (a plotArea) pos(at time.Time, v float32) fyne.Position {
	span := a.xMax.Sub(a.xMin).Seconds()
	fx := float32(0)
	if span > 0 {
		fx = float32(at.Sub(a.xMin).Seconds() / span)
	}
	fy := (v - a.yMin) / (a.yMax - a.yMin)
	return fyne.NewPos(a.x+fx*a.w, a.y+a.h-fy*a.h)
}

// MinSize returns the minimum size of the widget.
func (r *trendRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 250)
}

// Layout arranges the widget components.
func (r *trendRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.trend.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the plot from the current display buffer.
func (r *trendRenderer) Refresh() {
	r.trend.mu.RLock()
	points := r.trend.display
	area := plotArea{
		yMin: r.trend.yMin,
		yMax: r.trend.yMax,
		xMin: r.trend.xMin,
		xMax: r.trend.xMax,
	}
	r.trend.mu.RUnlock()

	size := r.trend.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	const marginLeft, marginRight, marginTop, marginBottom = 60, 20, 20, 40
	area.x = marginLeft
	area.y = marginTop
	area.w = size.Width - marginLeft - marginRight
	area.h = size.Height - marginTop - marginBottom

	r.objects = []fyne.CanvasObject{r.background}
	r.drawGrid(area)
	r.drawSeries(area, points, rawColor, 1, func(p Point) float32 { return p.Raw })
	r.drawSeries(area, points, oversampledColor, 1.5, func(p Point) float32 { return p.Oversampled })
	r.drawSeries(area, points, filteredColor, 2.5, func(p Point) float32 { return p.Filtered })
	r.drawLegend(area)
}

func (r *trendRenderer) drawGrid(a plotArea) {
	const hLines, vLines = 8, 10

	for i := 0; i < hLines+1; i++ {
		y := a.y + float32(i)*a.h/hLines
		r.addLine(gridColor, 1, fyne.NewPos(a.x, y), fyne.NewPos(a.x+a.w, y))

		value := a.yMax - float32(i)*(a.yMax-a.yMin)/hLines
		r.addText(formatVolts(value), labelColor, 10, fyne.TextAlignTrailing, fyne.NewPos(a.x-5, y-6))
	}

	span := a.xMax.Sub(a.xMin)
	for i := 0; i < vLines+1; i++ {
		x := a.x + float32(i)*a.w/vLines
		r.addLine(gridColor, 1, fyne.NewPos(x, a.y), fyne.NewPos(x, a.y+a.h))

		offset := span * time.Duration(i) / vLines
		r.addText(formatOffset(offset), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-20, a.y+a.h+5))
	}
}

func (r *trendRenderer) drawSeries(a plotArea, points []Point, c color.Color, width float32, value func(Point) float32) {
	for i := 0; i < len(points)-1; i++ {
		r.addLine(c, width,
			a.pos(points[i].Time, value(points[i])),
			a.pos(points[i+1].Time, value(points[i+1])))
	}
}

func (r *trendRenderer) drawLegend(a plotArea) {
	entries := []struct {
		name string
		c    color.Color
	}{
		{"raw", rawColor},
		{"oversampled", oversampledColor},
		{"filtered", filteredColor},
	}
	for i, e := range entries {
		r.addText(e.name, e.c, 11, fyne.TextAlignLeading, fyne.NewPos(a.x+10+float32(i)*90, a.y+5))
	}
}

func (r *trendRenderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *trendRenderer) addText(s string, c color.Color, size float32, align fyne.TextAlign, at fyne.Position) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(at)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *trendRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *trendRenderer) Destroy() {}

func formatVolts(v float32) string {
	if v > -0.0005 && v < 0.0005 {
		return "0.000V"
	}
	return fmt.Sprintf("%.3fV", v)
}

func formatOffset(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

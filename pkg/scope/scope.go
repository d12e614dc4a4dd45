package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goadc/pkg/config"
	"github.com/itohio/goadc/pkg/report"
)

// TrendWidget is a custom Fyne widget that plots raw, oversampled and filtered voltages over time.
type TrendWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu      sync.RWMutex
	history *History
	display []Point

	yMin, yMax float32
	xMin, xMax time.Time

	window    time.Duration
	maxPoints int
}

// New creates a new TrendWidget instance.
func New(cfg *config.ViewConfig) *TrendWidget {
	t := &TrendWidget{
		history:   NewHistory(cfg.Window),
		display:   make([]Point, 0, cfg.MaxPoints),
		window:    cfg.Window,
		maxPoints: cfg.MaxPoints,
	}
	t.updateScale()
	t.ExtendBaseWidget(t)
	t.Refresh()
	return t
}

// Push adds a report to the plot.
// This should be called on the Fyne main thread using fyne.Do().
func (t *TrendWidget) Push(r report.Report) {
	t.mu.Lock()
	t.history.Push(PointFrom(r))
	t.display = Decimate(t.display, t.history.Points(), t.maxPoints)
	t.updateScale()
	t.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock
	t.Refresh()
}

func (t *TrendWidget) updateScale() {
	t.yMin, t.yMax = Bounds(t.display)
	t.xMin, t.xMax = TimeSpan(t.display, t.window)
}

// CreateRenderer creates the widget renderer.
func (t *TrendWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &trendRenderer{
		trend:      t,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}

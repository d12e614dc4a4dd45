// Package view shows the latest reports in a Fyne window.
package view

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goadc/pkg/config"
	"github.com/itohio/goadc/pkg/report"
	"github.com/itohio/goadc/pkg/scope"
)

var _ report.Reporter = (*View)(nil)

// View is a window with the three current readings above a trend plot.
// It is a report.Reporter and may be fed from any goroutine.
type View struct {
	window     fyne.Window
	cfg        *config.Config
	configPath string

	banner      *widget.Label
	raw         *widget.Label
	oversampled *widget.Label
	filtered    *widget.Label
	trend       *scope.TrendWidget
}

// New creates the window. Widgets must be created on the main goroutine.
// The settings dialog saves to configPath.
func New(app fyne.App, cfg *config.Config, configPath string) *View {
	v := &View{
		window:      app.NewWindow("ADC Monitor"),
		cfg:         cfg,
		configPath:  configPath,
		banner:      widget.NewLabel(""),
		raw:         widget.NewLabel("Raw        : -"),
		oversampled: widget.NewLabel("Oversample : -"),
		filtered:    widget.NewLabel("Filtered   : -"),
		trend:       scope.New(&cfg.View),
	}
	for _, l := range []*widget.Label{v.raw, v.oversampled, v.filtered} {
		l.TextStyle = fyne.TextStyle{Monospace: true}
	}

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), v.showSettingsDialog)
	toolbar := container.NewBorder(nil, nil, nil, settingsBtn, v.banner)

	readings := container.NewVBox(toolbar, widget.NewSeparator(), v.raw, v.oversampled, v.filtered)
	v.window.SetContent(container.NewBorder(readings, nil, nil, nil, v.trend))
	v.window.Resize(fyne.NewSize(900, 600))
	v.window.CenterOnScreen()
	return v
}

// Report schedules a display update on the main thread.
func (v *View) Report(r report.Report) error {
	lines := r.Lines()
	fyne.Do(func() {
		v.raw.SetText(lines[0])
		v.oversampled.SetText(lines[1])
		v.filtered.SetText(lines[2])
		v.trend.Push(r)
	})
	return nil
}

// Banner shows the calibration and sampling setup.
func (v *View) Banner(b report.Banner) {
	text := BannerText(b)
	fyne.Do(func() {
		v.banner.SetText(text)
	})
}

// SetOnClosed registers fn to run when the window closes.
func (v *View) SetOnClosed(fn func()) {
	v.window.SetOnClosed(fn)
}

// ShowAndRun shows the window and runs the event loop until it closes.
func (v *View) ShowAndRun() {
	v.window.ShowAndRun()
}

// BannerText formats the banner as a single status line.
func BannerText(b report.Banner) string {
	return fmt.Sprintf("Calibration: %s | Channel: %d | Oversamples: %d | Filter Size: %d",
		b.Source, b.Channel, b.Oversamples, b.FilterSize)
}

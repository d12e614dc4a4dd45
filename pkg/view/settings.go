package view

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/config"
)

// settingsInput is the text shown in the settings form.
type settingsInput struct {
	Port        string
	Channel     string
	Resolution  string
	Attenuation string
	Oversamples string
	FilterSize  string
	Interval    string
	Quantize    string
}

func settingsFrom(cfg *config.Config) settingsInput {
	return settingsInput{
		Port:        cfg.Serial.Port,
		Channel:     strconv.Itoa(cfg.Acquisition.Channel),
		Resolution:  strconv.Itoa(cfg.Acquisition.ResolutionBits),
		Attenuation: cfg.Acquisition.Attenuation,
		Oversamples: strconv.Itoa(cfg.Signal.Oversamples),
		FilterSize:  strconv.Itoa(cfg.Signal.FilterSize),
		Interval:    cfg.Report.Interval.String(),
		Quantize:    cfg.Signal.Quantize,
	}
}

// apply returns a copy of cfg with the form values applied. The copy is validated.
func (in settingsInput) apply(cfg *config.Config) (*config.Config, error) {
	next := *cfg

	ints := []struct {
		name string
		text string
		dst  *int
	}{
		{"channel", in.Channel, &next.Acquisition.Channel},
		{"resolution", in.Resolution, &next.Acquisition.ResolutionBits},
		{"oversamples", in.Oversamples, &next.Signal.Oversamples},
		{"filter size", in.FilterSize, &next.Signal.FilterSize},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(f.text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a number", config.ErrInvalidConfig, f.name, f.text)
		}
		*f.dst = v
	}

	interval, err := time.ParseDuration(in.Interval)
	if err != nil {
		return nil, fmt.Errorf("%w: interval: %w", config.ErrInvalidConfig, err)
	}
	if _, err := adc.ParseAttenuation(in.Attenuation); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	next.Serial.Port = in.Port
	next.Acquisition.Attenuation = in.Attenuation
	next.Report.Interval = interval
	next.Signal.Quantize = in.Quantize

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// showSettingsDialog edits the configuration file. Changes apply on the next start.
func (v *View) showSettingsDialog() {
	in := settingsFrom(v.cfg)

	ports := []string{}
	if list, err := adc.Ports(); err == nil {
		for _, p := range list {
			ports = append(ports, p.Name)
		}
	}
	port := widget.NewSelectEntry(ports)
	port.SetText(in.Port)

	channel := entryWithText(in.Channel)
	resolution := entryWithText(in.Resolution)
	attenuation := widget.NewSelect([]string{"0db", "2.5db", "6db", "11db"}, nil)
	attenuation.SetSelected(in.Attenuation)
	oversamples := entryWithText(in.Oversamples)
	filterSize := entryWithText(in.FilterSize)
	interval := entryWithText(in.Interval)
	quantize := widget.NewSelect([]string{"truncate", "round"}, nil)
	quantize.SetSelected(in.Quantize)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: port},
			{Text: "Channel", Widget: channel},
			{Text: "Resolution (bits)", Widget: resolution},
			{Text: "Attenuation", Widget: attenuation},
			{Text: "Oversamples", Widget: oversamples},
			{Text: "Filter Size", Widget: filterSize},
			{Text: "Report Interval", Widget: interval},
			{Text: "Quantize", Widget: quantize},
		},
		OnSubmit: func() {
			next, err := settingsInput{
				Port:        port.Text,
				Channel:     channel.Text,
				Resolution:  resolution.Text,
				Attenuation: attenuation.Selected,
				Oversamples: oversamples.Text,
				FilterSize:  filterSize.Text,
				Interval:    interval.Text,
				Quantize:    quantize.Selected,
			}.apply(v.cfg)
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			if err := next.Save(v.configPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), v.window)
				return
			}
			dialog.ShowInformation("Settings", "Saved to "+v.configPath+". Restart to apply.", v.window)
		},
	}

	content := container.NewVScroll(form)
	d := dialog.NewCustom("Settings", "Close", content, v.window)
	d.Resize(fyne.NewSize(500, 450))
	d.Show()
}

func entryWithText(text string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(text)
	return e
}

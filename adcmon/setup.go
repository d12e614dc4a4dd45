package main

import (
	"fmt"

	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/calib"
	"github.com/itohio/goadc/pkg/config"
	"github.com/itohio/goadc/pkg/report"
)

// fusesFromConfig exposes the calibration values from the config file as factory fuses.
func fusesFromConfig(c *config.CalibrationConfig) calib.StaticFuses {
	f := calib.StaticFuses{VrefMV: calib.Millivolts(c.EFuseVrefMV)}
	if c.TwoPoint != nil {
		f.HasTwoPoint = true
		f.Low = calib.Point{Raw: adc.RawSample(c.TwoPoint.Low.Raw), MV: calib.Millivolts(c.TwoPoint.Low.MV)}
		f.High = calib.Point{Raw: adc.RawSample(c.TwoPoint.High.Raw), MV: calib.Millivolts(c.TwoPoint.High.MV)}
	}
	return f
}

// buildCalibrator selects a lookup table when one is configured and a
// characterized linear profile otherwise.
func buildCalibrator(cfg *config.Config, fuses calib.Fuses) (calib.Calibrator, calib.Source, error) {
	if len(cfg.Calibration.Table) > 0 {
		points := make([]calib.Point, len(cfg.Calibration.Table))
		for i, p := range cfg.Calibration.Table {
			points[i] = calib.Point{Raw: adc.RawSample(p.Raw), MV: calib.Millivolts(p.MV)}
		}
		table, err := calib.NewTable(points)
		if err != nil {
			return nil, 0, fmt.Errorf("calibration table: %w", err)
		}
		return table, calib.SourceTable, nil
	}

	atten, err := adc.ParseAttenuation(cfg.Acquisition.Attenuation)
	if err != nil {
		return nil, 0, err
	}

	profile, src, err := calib.Characterize(
		adc.Unit(cfg.Acquisition.Unit),
		atten,
		adc.Resolution(cfg.Acquisition.ResolutionBits),
		calib.Millivolts(cfg.Calibration.DefaultVrefMV),
		fuses,
	)
	if err != nil {
		return nil, 0, err
	}
	return profile, src, nil
}

// openDevice creates and configures the acquisition device.
func openDevice(cfg *config.Config, useMock bool) (adc.Device, error) {
	atten, err := adc.ParseAttenuation(cfg.Acquisition.Attenuation)
	if err != nil {
		return nil, err
	}
	res := adc.Resolution(cfg.Acquisition.ResolutionBits)

	var dev adc.Device
	if useMock {
		dev = adc.NewMock(&cfg.Mock, adc.Channel(cfg.Acquisition.Channel))
	} else {
		s := adc.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, adc.DefaultBufferSize, cfg.Serial.ReadTimeout)
		if err := s.Connect(); err != nil {
			return nil, err
		}
		dev = s
	}

	if err := dev.Configure(res, atten); err != nil {
		dev.Close()
		return nil, fmt.Errorf("configure device: %w", err)
	}
	return dev, nil
}

func bannerFor(cfg *config.Config, fuses calib.Fuses, src calib.Source) report.Banner {
	atten, _ := adc.ParseAttenuation(cfg.Acquisition.Attenuation)
	_, _, hasTwoPoint := fuses.TwoPoint(adc.Unit(cfg.Acquisition.Unit), atten)
	_, hasVref := fuses.Vref()

	return report.Banner{
		TwoPointAvailable: hasTwoPoint,
		VrefAvailable:     hasVref,
		Source:            src,
		Channel:           adc.Channel(cfg.Acquisition.Channel),
		Oversamples:       cfg.Signal.Oversamples,
		FilterSize:        cfg.Signal.FilterSize,
	}
}

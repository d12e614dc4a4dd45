package view

import (
	"testing"
	"time"

	"github.com/itohio/goadc/pkg/calib"
	"github.com/itohio/goadc/pkg/config"
	"github.com/itohio/goadc/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannerText(t *testing.T) {
	got := BannerText(report.Banner{
		Source:      calib.SourceTwoPoint,
		Channel:     6,
		Oversamples: 100,
		FilterSize:  10,
	})
	assert.Equal(t, "Calibration: "+calib.SourceTwoPoint.String()+" | Channel: 6 | Oversamples: 100 | Filter Size: 10", got)
}

func TestSettings_RoundTrip(t *testing.T) {
	cfg := config.Default()
	next, err := settingsFrom(cfg).apply(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, next)
	assert.NotSame(t, cfg, next)
}

func TestSettings_Apply(t *testing.T) {
	cfg := config.Default()
	in := settingsFrom(cfg)
	in.Port = "/dev/ttyACM0"
	in.Channel = "3"
	in.Resolution = "10"
	in.Attenuation = "6db"
	in.Oversamples = "64"
	in.FilterSize = "5"
	in.Interval = "500ms"
	in.Quantize = "round"

	next, err := in.apply(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", next.Serial.Port)
	assert.Equal(t, 3, next.Acquisition.Channel)
	assert.Equal(t, 10, next.Acquisition.ResolutionBits)
	assert.Equal(t, "6db", next.Acquisition.Attenuation)
	assert.Equal(t, 64, next.Signal.Oversamples)
	assert.Equal(t, 5, next.Signal.FilterSize)
	assert.Equal(t, 500*time.Millisecond, next.Report.Interval)
	assert.Equal(t, "round", next.Signal.Quantize)

	// the running configuration is left alone
	assert.Equal(t, config.Default(), cfg)
}

func TestSettings_ApplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*settingsInput)
	}{
		{"not a number", func(in *settingsInput) { in.Oversamples = "many" }},
		{"zero filter", func(in *settingsInput) { in.FilterSize = "0" }},
		{"bad interval", func(in *settingsInput) { in.Interval = "soon" }},
		{"bad attenuation", func(in *settingsInput) { in.Attenuation = "20db" }},
		{"bad quantize", func(in *settingsInput) { in.Quantize = "ceil" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			in := settingsFrom(cfg)
			tt.modify(&in)

			next, err := in.apply(cfg)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Nil(t, next)
		})
	}
}

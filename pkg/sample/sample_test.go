package sample

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOversampler_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -5} {
		o, err := NewOversampler(adc.NewFake(1), 6, n, 0, &clock.Fake{})
		assert.ErrorIs(t, err, ErrInvalidSampleCount)
		assert.Nil(t, o)
	}
}

func TestNewOversampler_Defaults(t *testing.T) {
	o, err := NewOversampler(adc.NewFake(1), 6, 4, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, o.Count())
	assert.Equal(t, DefaultTick, o.tick)
	assert.Equal(t, clock.Real{}, o.sleeper)
}

func TestOversample_Scenario(t *testing.T) {
	dev := adc.NewFake(100, 102, 98, 100)
	sleeper := &clock.Fake{}

	o, err := NewOversampler(dev, 6, 4, time.Millisecond, sleeper)
	require.NoError(t, err)

	got, err := o.Oversample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float32(100), got)
	assert.Equal(t, 4, dev.Reads)
	assert.Equal(t, 4, sleeper.Count(time.Millisecond))
	assert.Equal(t, 4*time.Millisecond, sleeper.Elapsed())
}

func TestOversample_ExactMean(t *testing.T) {
	tests := []struct {
		name    string
		samples []adc.RawSample
	}{
		{"single", []adc.RawSample{4095}},
		{"fractional", []adc.RawSample{1, 2}},
		{"thirds", []adc.RawSample{10, 10, 11}},
		{"full scale", []adc.RawSample{4095, 4095, 4095, 4095, 4095, 4095, 4095, 4095}},
		{"mixed", []adc.RawSample{0, 4095, 2048, 17, 300, 1024, 3999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOversampler(adc.NewFake(tt.samples...), 6, len(tt.samples), time.Millisecond, &clock.Fake{})
			require.NoError(t, err)

			var sum uint64
			for _, s := range tt.samples {
				sum += uint64(s)
			}
			want := float32(sum) / float32(len(tt.samples))

			got, err := o.Oversample(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, want, Mean(tt.samples))
		})
	}
}

func TestOversample_WideAccumulator(t *testing.T) {
	// 16-bit full scale summed many times overflows 32 bits of total
	const n = 70000
	o, err := NewOversampler(adc.NewFake(65535), 0, n, time.Millisecond, &clock.Fake{})
	require.NoError(t, err)

	got, err := o.Oversample(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 65535, got, 0.01)
}

func TestOversample_AcquisitionError(t *testing.T) {
	boom := errors.New("conversion failed")
	dev := adc.NewFake(100, 100, 100, 100)
	dev.Err = boom
	dev.FailAfter = 2

	o, err := NewOversampler(dev, 6, 4, time.Millisecond, &clock.Fake{})
	require.NoError(t, err)

	got, err := o.Oversample(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, float32(0), got)
}

func TestOversample_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &clock.Fake{
		OnSleep: func(n int, _ time.Duration) {
			if n == 3 {
				cancel()
			}
		},
	}

	dev := adc.NewFake(100)
	o, err := NewOversampler(dev, 6, 100, time.Millisecond, sleeper)
	require.NoError(t, err)

	_, err = o.Oversample(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, dev.Reads)
}

func TestMean_Empty(t *testing.T) {
	assert.Equal(t, float32(0), Mean(nil))
}

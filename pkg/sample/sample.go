package sample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/clock"
)

// DefaultTick is the settling delay between consecutive conversions.
const DefaultTick = time.Millisecond

// ErrInvalidSampleCount is returned for an oversample count below one.
var ErrInvalidSampleCount = errors.New("sample: oversample count must be at least 1")

// Oversampler averages a fixed number of consecutive conversions of one channel.
type Oversampler struct {
	dev     adc.Device
	channel adc.Channel
	count   int
	tick    time.Duration
	sleeper clock.Sleeper
}

// NewOversampler creates an oversampler that reads count conversions per call,
// sleeping tick after each one. A zero tick selects DefaultTick.
func NewOversampler(dev adc.Device, ch adc.Channel, count int, tick time.Duration, sleeper clock.Sleeper) (*Oversampler, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, count)
	}
	if tick == 0 {
		tick = DefaultTick
	}
	if sleeper == nil {
		sleeper = clock.Real{}
	}

	return &Oversampler{
		dev:     dev,
		channel: ch,
		count:   count,
		tick:    tick,
		sleeper: sleeper,
	}, nil
}

// Count returns the number of conversions averaged per call.
func (o *Oversampler) Count() int {
	return o.count
}

// Oversample returns the mean of Count conversions. Any acquisition error or
// cancellation aborts the whole measurement.
func (o *Oversampler) Oversample(ctx context.Context) (float32, error) {
	var total uint64

	for i := 0; i < o.count; i++ {
		raw, err := o.dev.ReadRaw(o.channel)
		if err != nil {
			return 0, fmt.Errorf("oversample conversion %d/%d: %w", i+1, o.count, err)
		}
		total += uint64(raw)

		if err := o.sleeper.Sleep(ctx, o.tick); err != nil {
			return 0, err
		}
	}

	return float32(total) / float32(o.count), nil
}

// Mean returns the arithmetic mean of samples the same way Oversample does.
func Mean(samples []adc.RawSample) float32 {
	if len(samples) == 0 {
		return 0
	}

	var total uint64
	for _, s := range samples {
		total += uint64(s)
	}
	return float32(total) / float32(len(samples))
}

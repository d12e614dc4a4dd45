// Package filter implements a fixed-window moving average with O(1) updates.
package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned for a window smaller than one element.
var ErrInvalidSize = errors.New("filter: window size must be at least 1")

// MovingAverage keeps the last Size readings in a circular buffer together with
// their running sum. Not safe for concurrent use; the owner must serialize updates.
type MovingAverage struct {
	buffer      []float32
	index       int // next slot to overwrite, which also holds the oldest reading
	sum         float32
	initialized bool
}

// New creates an uninitialized filter with the given window size.
func New(size int) (*MovingAverage, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return &MovingAverage{
		buffer: make([]float32, size),
	}, nil
}

// Update adds a reading and returns the mean of the last Size readings.
// The first reading after creation or Reset fills every slot, so the output starts
// at that reading instead of ramping up from zero.
func (f *MovingAverage) Update(v float32) float32 {
	size := len(f.buffer)

	if !f.initialized {
		for i := range f.buffer {
			f.buffer[i] = v
		}
		f.sum = v * float32(size)
		f.index = 0
		f.initialized = true
		return v
	}

	f.sum = f.sum - f.buffer[f.index] + v
	f.buffer[f.index] = v
	f.index = (f.index + 1) % size

	return f.sum / float32(size)
}

// Size returns the window size.
func (f *MovingAverage) Size() int {
	return len(f.buffer)
}

// Sum returns the running sum of the window.
func (f *MovingAverage) Sum() float32 {
	return f.sum
}

// Initialized reports whether the filter has seen its first reading.
func (f *MovingAverage) Initialized() bool {
	return f.initialized
}

// Values returns a copy of the window, oldest reading first.
func (f *MovingAverage) Values() []float32 {
	out := make([]float32, 0, len(f.buffer))
	out = append(out, f.buffer[f.index:]...)
	out = append(out, f.buffer[:f.index]...)
	return out
}

// Reset returns the filter to the uninitialized state.
func (f *MovingAverage) Reset() {
	for i := range f.buffer {
		f.buffer[i] = 0
	}
	f.sum = 0
	f.index = 0
	f.initialized = false
}

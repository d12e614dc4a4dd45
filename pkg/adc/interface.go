package adc

import (
	"errors"
	"fmt"

	"github.com/itohio/goadc/pkg/config"
)

var (
	// ErrNotConfigured is returned by ReadRaw before Configure succeeded.
	ErrNotConfigured = errors.New("adc: device not configured")
	// ErrClosed is returned by a device after Close.
	ErrClosed = errors.New("adc: device closed")
	// ErrTimeout is returned when no sample arrives within the read timeout.
	ErrTimeout = errors.New("adc: read timeout")
	// ErrUnknownChannel is returned when reading a channel the device does not sample.
	ErrUnknownChannel = errors.New("adc: unknown channel")
	// ErrExhausted is returned by a Fake that has no samples scripted.
	ErrExhausted = errors.New("adc: no samples")
)

// RawSample is an unconverted reading in device counts, bounded by the resolution.
type RawSample uint32

// Channel identifies an analog input channel.
type Channel uint8

// Unit identifies a converter unit on devices that have more than one.
type Unit uint8

const (
	Unit1 Unit = 1
	Unit2 Unit = 2
)

// Resolution is the conversion width in bits.
type Resolution uint8

const (
	MinResolution Resolution = 8
	MaxResolution Resolution = 16
)

// Max returns the largest sample value representable at this resolution.
func (r Resolution) Max() RawSample {
	return RawSample(1)<<r - 1
}

// Validate checks that the resolution is supported.
func (r Resolution) Validate() error {
	if r < MinResolution || r > MaxResolution {
		return fmt.Errorf("adc: unsupported resolution %d bits", r)
	}
	return nil
}

// Attenuation selects the input range of the analog front end.
type Attenuation uint8

const (
	Atten0dB   Attenuation = iota // ~0.95 V full scale at 1100 mV reference
	Atten2_5dB                    // ~1.25 V
	Atten6dB                      // ~1.75 V
	Atten11dB                     // ~3.3 V
)

var attenuationNames = config.Attenuations

// String returns the configuration name of the attenuation level.
func (a Attenuation) String() string {
	if int(a) < len(attenuationNames) {
		return attenuationNames[a]
	}
	return fmt.Sprintf("atten(%d)", uint8(a))
}

// Validate checks that the attenuation level is known.
func (a Attenuation) Validate() error {
	if int(a) >= len(attenuationNames) {
		return fmt.Errorf("adc: unknown attenuation %d", uint8(a))
	}
	return nil
}

// ParseAttenuation converts a configuration name such as "11db" to an Attenuation.
func ParseAttenuation(s string) (Attenuation, error) {
	name := config.NormalizeAttenuation(s)
	for i, n := range attenuationNames {
		if n == name {
			return Attenuation(i), nil
		}
	}
	return 0, fmt.Errorf("adc: unknown attenuation %q", s)
}

// Device defines the acquisition interface for analog inputs (real or simulated).
type Device interface {
	// Configure sets the resolution and attenuation. It must be called before ReadRaw.
	Configure(res Resolution, atten Attenuation) error
	// ReadRaw performs a single conversion on the given channel.
	ReadRaw(ch Channel) (RawSample, error)
	// Close releases the device.
	Close() error
}

// Flusher is implemented by devices that queue conversions ahead of ReadRaw.
// Flush drops the queued conversions and returns how many were dropped.
type Flusher interface {
	Flush() int
}

var (
	_ Device  = (*Serial)(nil)
	_ Device  = (*Mock)(nil)
	_ Device  = (*Fake)(nil)
	_ Flusher = (*Serial)(nil)
	_ Flusher = (*Fake)(nil)
)

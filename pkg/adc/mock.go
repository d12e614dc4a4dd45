package adc

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"github.com/itohio/goadc/pkg/config"
)

// Mock simulates a single analog channel for testing and development.
// The signal is a DC level with sinusoidal ripple and deterministic pseudo-noise,
// so repeated runs produce the same sequence.
type Mock struct {
	cfg     *config.MockConfig
	channel Channel

	mu         sync.Mutex
	res        Resolution
	atten      Attenuation
	configured bool
	closed     bool

	// Simulation state
	n uint64 // conversions performed so far
}

// NewMock creates a new mocked device sampling the given channel.
func NewMock(cfg *config.MockConfig, ch Channel) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}

	return &Mock{
		cfg:     cfg,
		channel: ch,
	}
}

// Configure sets the simulated resolution and attenuation.
func (m *Mock) Configure(res Resolution, atten Attenuation) error {
	if err := res.Validate(); err != nil {
		return err
	}
	if err := atten.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.res = res
	m.atten = atten
	m.configured = true
	return nil
}

// ReadRaw returns the next simulated conversion.
func (m *Mock) ReadRaw(ch Channel) (RawSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.closed:
		return 0, ErrClosed
	case !m.configured:
		return 0, ErrNotConfigured
	case ch != m.channel:
		return 0, fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}

	sample := m.generateSample(m.n)
	m.n++
	return sample, nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// generateSample computes conversion n of the simulated waveform.
func (m *Mock) generateSample(n uint64) RawSample {
	full := float32(m.res.Max())
	x := float32(n)

	value := float32(m.cfg.Level) * full

	if m.cfg.Period > 0 {
		phase := 2 * math32.Pi * x / float32(m.cfg.Period)
		value += float32(m.cfg.Ripple) * full * math32.Sin(phase)
	}

	// Two incommensurate tones stand in for noise
	noise := (math32.Sin(x*1.7) + math32.Cos(x*0.37)) * 0.5
	value += noise * float32(m.cfg.Noise)

	// Convert to counts, clamping to the converter range
	if value < 0 {
		value = 0
	} else if value > full {
		value = full
	}
	return RawSample(math32.Round(value))
}

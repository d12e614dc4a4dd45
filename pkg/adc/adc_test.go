package adc

import (
	"errors"
	"testing"

	"github.com/itohio/goadc/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolution_Max(t *testing.T) {
	assert.Equal(t, RawSample(255), Resolution(8).Max())
	assert.Equal(t, RawSample(1023), Resolution(10).Max())
	assert.Equal(t, RawSample(4095), Resolution(12).Max())
	assert.Equal(t, RawSample(65535), Resolution(16).Max())
}

func TestResolution_Validate(t *testing.T) {
	assert.NoError(t, Resolution(8).Validate())
	assert.NoError(t, Resolution(16).Validate())
	assert.Error(t, Resolution(7).Validate())
	assert.Error(t, Resolution(17).Validate())
}

func TestParseAttenuation(t *testing.T) {
	tests := []struct {
		in      string
		want    Attenuation
		wantErr bool
	}{
		{in: "0db", want: Atten0dB},
		{in: "2.5db", want: Atten2_5dB},
		{in: "6dB", want: Atten6dB},
		{in: "11db", want: Atten11dB},
		{in: "11", want: Atten11dB},
		{in: " 11 dB ", want: Atten11dB},
		{in: "12db", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAttenuation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestAttenuation_String(t *testing.T) {
	assert.Equal(t, "11db", Atten11dB.String())
	assert.Equal(t, "2.5db", Atten2_5dB.String())
	assert.Equal(t, "atten(9)", Attenuation(9).String())
	assert.Error(t, Attenuation(9).Validate())
}

func TestFake_ReadRaw(t *testing.T) {
	f := NewFake(100, 102, 98)

	for _, want := range []RawSample{100, 102, 98, 98, 98} {
		got, err := f.ReadRaw(6)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 5, f.Reads)

	f.Reset()
	got, err := f.ReadRaw(6)
	require.NoError(t, err)
	assert.Equal(t, RawSample(100), got)
}

func TestFake_Flush(t *testing.T) {
	f := NewFake(100, 102)

	assert.Zero(t, f.Flush())
	assert.Equal(t, 1, f.Flushes)

	// the script is not consumed
	got, err := f.ReadRaw(6)
	require.NoError(t, err)
	assert.Equal(t, RawSample(100), got)

	f.Reset()
	assert.Zero(t, f.Flushes)
}

func TestFake_Errors(t *testing.T) {
	f := NewFake()
	_, err := f.ReadRaw(6)
	assert.ErrorIs(t, err, ErrExhausted)

	boom := errors.New("boom")
	f = NewFake(1, 2, 3)
	f.Err = boom
	f.FailAfter = 2

	_, err = f.ReadRaw(6)
	require.NoError(t, err)
	_, err = f.ReadRaw(6)
	require.NoError(t, err)
	_, err = f.ReadRaw(6)
	assert.ErrorIs(t, err, boom)

	require.NoError(t, f.Close())
	_, err = f.ReadRaw(6)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFake_NotConfigured(t *testing.T) {
	f := &Fake{Samples: []RawSample{1}}
	_, err := f.ReadRaw(0)
	assert.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, f.Configure(10, Atten0dB))
	assert.Equal(t, Resolution(10), f.Resolution)
	assert.Equal(t, Atten0dB, f.Attenuation)
	_, err = f.ReadRaw(0)
	assert.NoError(t, err)
}

func TestMock_RequiresConfigure(t *testing.T) {
	m := NewMock(nil, 6)
	_, err := m.ReadRaw(6)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.Error(t, m.Configure(4, Atten11dB))
	assert.Error(t, m.Configure(12, Attenuation(7)))
}

func TestMock_UnknownChannel(t *testing.T) {
	m := NewMock(nil, 6)
	require.NoError(t, m.Configure(12, Atten11dB))

	_, err := m.ReadRaw(5)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestMock_Deterministic(t *testing.T) {
	cfg := &config.MockConfig{Level: 0.5, Ripple: 0.02, Noise: 10, Period: 20}

	a := NewMock(cfg, 6)
	b := NewMock(cfg, 6)
	require.NoError(t, a.Configure(12, Atten11dB))
	require.NoError(t, b.Configure(12, Atten11dB))

	for i := 0; i < 100; i++ {
		va, err := a.ReadRaw(6)
		require.NoError(t, err)
		vb, err := b.ReadRaw(6)
		require.NoError(t, err)
		assert.Equal(t, va, vb, "sample %d", i)
	}
}

func TestMock_StaysInRange(t *testing.T) {
	cfg := &config.MockConfig{Level: 0.99, Ripple: 0.2, Noise: 200, Period: 7}
	m := NewMock(cfg, 0)
	require.NoError(t, m.Configure(10, Atten11dB))

	for i := 0; i < 200; i++ {
		v, err := m.ReadRaw(0)
		require.NoError(t, err)
		assert.LessOrEqual(t, v, Resolution(10).Max())
	}
}

func TestMock_CleanLevel(t *testing.T) {
	cfg := &config.MockConfig{Level: 0.5, Ripple: 0, Noise: 0, Period: 10}
	m := NewMock(cfg, 0)
	require.NoError(t, m.Configure(12, Atten11dB))

	for i := 0; i < 10; i++ {
		v, err := m.ReadRaw(0)
		require.NoError(t, err)
		assert.Equal(t, RawSample(2048), v) // round(0.5 * 4095)
	}
}

func TestMock_Close(t *testing.T) {
	m := NewMock(nil, 6)
	require.NoError(t, m.Configure(12, Atten11dB))
	require.NoError(t, m.Close())

	_, err := m.ReadRaw(6)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Configure(12, Atten11dB), ErrClosed)
}

package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/calib"
	"github.com/itohio/goadc/pkg/clock"
	"github.com/itohio/goadc/pkg/config"
	"github.com/itohio/goadc/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identity = calib.Func(func(raw adc.RawSample) calib.Millivolts {
	return calib.Millivolts(raw)
})

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Signal.Oversamples = 4
	cfg.Signal.FilterSize = 3
	cfg.Signal.OversampleTick = time.Millisecond
	cfg.Report.Interval = 2 * time.Second
	return cfg
}

type recorder struct {
	reports []report.Report
	err     error
}

func (r *recorder) Report(rep report.Report) error {
	r.reports = append(r.reports, rep)
	return r.err
}

// cancelAfterIntervals cancels ctx once n report intervals have been slept.
func cancelAfterIntervals(sleeper *clock.Fake, interval time.Duration, n int, cancel context.CancelFunc) {
	sleeper.OnSleep = func(int, time.Duration) {
		if sleeper.Count(interval) >= n {
			cancel()
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"zero filter size", func(c *config.Config) { c.Signal.FilterSize = 0 }},
		{"zero oversamples", func(c *config.Config) { c.Signal.Oversamples = 0 }},
		{"bad quantize", func(c *config.Config) { c.Signal.Quantize = "floor" }},
		{"bad resolution", func(c *config.Config) { c.Acquisition.ResolutionBits = 20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)

			m, err := New(cfg, adc.NewFake(1), identity, &clock.Fake{}, &recorder{})
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Nil(t, m)
		})
	}
}

func TestNew_MissingCollaborators(t *testing.T) {
	_, err := New(testConfig(), nil, identity, nil, &recorder{})
	assert.Error(t, err)
	_, err = New(testConfig(), adc.NewFake(1), nil, nil, &recorder{})
	assert.Error(t, err)
	_, err = New(testConfig(), adc.NewFake(1), identity, nil, nil)
	assert.Error(t, err)
}

func TestNew_StartsIdle(t *testing.T) {
	m, err := New(testConfig(), adc.NewFake(1), identity, nil, &recorder{})
	require.NoError(t, err)
	assert.Equal(t, Idle, m.State())
	assert.False(t, m.Filter().Initialized())
	assert.Equal(t, 3, m.Filter().Size())
}

func TestCycle_Pipeline(t *testing.T) {
	// cycle 1: raw 100, oversample 100,102,98,100
	// cycle 2: raw 400, oversample repeats 400
	dev := adc.NewFake(100, 100, 102, 98, 100, 400)
	sleeper := &clock.Fake{}
	rec := &recorder{}

	m, err := New(testConfig(), dev, identity, sleeper, rec)
	require.NoError(t, err)
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return stamp }

	r1, err := m.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Report{
		Timestamp:     stamp,
		Raw:           100,
		RawMV:         100,
		Oversampled:   100,
		OversampledMV: 100,
		Filtered:      100,
		FilteredMV:    100,
	}, r1)

	r2, err := m.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, adc.RawSample(400), r2.Raw)
	assert.Equal(t, float32(400), r2.Oversampled)
	assert.Equal(t, float32(200), r2.Filtered)
	assert.Equal(t, calib.Millivolts(200), r2.FilteredMV)

	assert.Equal(t, []report.Report{r1, r2}, rec.reports)
	assert.Equal(t, 10, dev.Reads)
	assert.Equal(t, 2, dev.Flushes)
	assert.Equal(t, 8, sleeper.Count(time.Millisecond))
	assert.Equal(t, uint64(2), m.Stats().Completed)
}

// queuedDevice serves stale conversions until it is flushed.
type queuedDevice struct {
	*adc.Fake
	stale []adc.RawSample
}

func (d *queuedDevice) ReadRaw(ch adc.Channel) (adc.RawSample, error) {
	if len(d.stale) > 0 {
		v := d.stale[0]
		d.stale = d.stale[1:]
		return v, nil
	}
	return d.Fake.ReadRaw(ch)
}

func (d *queuedDevice) Flush() int {
	n := len(d.stale)
	d.stale = nil
	d.Fake.Flush()
	return n
}

func TestCycle_FlushesBeforeRawRead(t *testing.T) {
	dev := &queuedDevice{Fake: adc.NewFake(500), stale: []adc.RawSample{1, 2, 3}}
	rec := &recorder{}

	m, err := New(testConfig(), dev, identity, &clock.Fake{}, rec)
	require.NoError(t, err)

	r, err := m.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, adc.RawSample(500), r.Raw)
	assert.Equal(t, float32(500), r.Oversampled)
	assert.Equal(t, 1, dev.Flushes)
}

func TestCycle_Quantization(t *testing.T) {
	tests := []struct {
		mode   string
		wantMV calib.Millivolts
	}{
		{"truncate", 1},
		{"round", 2},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := testConfig()
			cfg.Signal.Oversamples = 2
			cfg.Signal.Quantize = tt.mode

			m, err := New(cfg, adc.NewFake(1, 1, 2), identity, &clock.Fake{}, &recorder{})
			require.NoError(t, err)

			r, err := m.Cycle(context.Background())
			require.NoError(t, err)
			assert.Equal(t, float32(1.5), r.Oversampled)
			assert.Equal(t, tt.wantMV, r.OversampledMV)
			assert.Equal(t, tt.wantMV, r.FilteredMV)
		})
	}
}

func TestCycle_AbandonedLeavesFilterUntouched(t *testing.T) {
	boom := errors.New("conversion failed")
	dev := adc.NewFake(100)
	rec := &recorder{}

	m, err := New(testConfig(), dev, identity, &clock.Fake{}, rec)
	require.NoError(t, err)

	_, err = m.Cycle(context.Background())
	require.NoError(t, err)
	before := m.Filter().Values()
	sum := m.Filter().Sum()

	// fail midway through the oversample
	dev.Err = boom
	dev.FailAfter = dev.Reads + 3
	_, err = m.Cycle(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, m.Filter().Values())
	assert.Equal(t, sum, m.Filter().Sum())
	assert.Len(t, rec.reports, 1)

	// fail on the instantaneous read
	dev.FailAfter = dev.Reads
	_, err = m.Cycle(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, m.Filter().Values())

	dev.Err = nil
	_, err = m.Cycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, rec.reports, 2)
}

func TestCycle_ReporterError(t *testing.T) {
	boom := errors.New("sink down")
	m, err := New(testConfig(), adc.NewFake(7), identity, &clock.Fake{}, &recorder{err: boom})
	require.NoError(t, err)

	r, err := m.Cycle(context.Background())
	assert.ErrorIs(t, err, ErrReport)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, adc.RawSample(7), r.Raw)
	assert.Equal(t, Stats{Completed: 1, ReportErrors: 1}, m.Stats())
}

func TestCycle_StateWhileReporting(t *testing.T) {
	var m *Monitor
	var seen State
	rep := report.Func(func(report.Report) error {
		seen = m.State()
		return nil
	})

	m, err := New(testConfig(), adc.NewFake(1), identity, &clock.Fake{}, rep)
	require.NoError(t, err)

	_, err = m.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Reporting, seen)
}

func TestRun_CyclesUntilCancelled(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sleeper := &clock.Fake{}
	cancelAfterIntervals(sleeper, cfg.Report.Interval, 3, cancel)
	rec := &recorder{}

	m, err := New(cfg, adc.NewFake(2048), identity, sleeper, rec)
	require.NoError(t, err)

	assert.NoError(t, m.Run(ctx))
	assert.Len(t, rec.reports, 3)
	assert.Equal(t, 3, sleeper.Count(cfg.Report.Interval))
	assert.Equal(t, 12, sleeper.Count(cfg.Signal.OversampleTick))
	assert.Equal(t, Stats{Completed: 3}, m.Stats())
	assert.Equal(t, Idle, m.State())
}

func TestRun_RetriesAfterAcquisitionFailure(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := adc.NewFake(10)
	dev.Err = errors.New("conversion failed")

	sleeper := &clock.Fake{}
	sleeper.OnSleep = func(int, time.Duration) {
		switch sleeper.Count(cfg.Report.Interval) {
		case 2:
			dev.Err = nil
		case 4:
			cancel()
		}
	}
	rec := &recorder{}

	m, err := New(cfg, dev, identity, sleeper, rec)
	require.NoError(t, err)

	assert.NoError(t, m.Run(ctx))
	assert.Len(t, rec.reports, 2)
	assert.Equal(t, Stats{Completed: 2, Abandoned: 2}, m.Stats())
	assert.Equal(t, 4, sleeper.Count(cfg.Report.Interval))
}

func TestRun_ReporterErrorDoesNotStop(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sleeper := &clock.Fake{}
	cancelAfterIntervals(sleeper, cfg.Report.Interval, 2, cancel)
	rec := &recorder{err: errors.New("sink down")}

	m, err := New(cfg, adc.NewFake(1), identity, sleeper, rec)
	require.NoError(t, err)

	assert.NoError(t, m.Run(ctx))
	assert.Len(t, rec.reports, 2)
	assert.Equal(t, Stats{Completed: 2, ReportErrors: 2}, m.Stats())
}

func TestRun_CancelledDuringOversample(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &clock.Fake{
		OnSleep: func(n int, _ time.Duration) {
			if n == 2 {
				cancel()
			}
		},
	}
	rec := &recorder{}

	m, err := New(testConfig(), adc.NewFake(1), identity, sleeper, rec)
	require.NoError(t, err)

	assert.NoError(t, m.Run(ctx))
	assert.Empty(t, rec.reports)
	assert.Equal(t, Stats{}, m.Stats())
	assert.False(t, m.Filter().Initialized())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "sampling", Sampling.String())
	assert.Equal(t, "reporting", Reporting.String())
	assert.Equal(t, "sleeping", Sleeping.String())
	assert.Equal(t, "State(9)", State(9).String())
}

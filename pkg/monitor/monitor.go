// Package monitor runs the periodic acquire, filter, calibrate and report cycle.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/calib"
	"github.com/itohio/goadc/pkg/clock"
	"github.com/itohio/goadc/pkg/config"
	"github.com/itohio/goadc/pkg/filter"
	"github.com/itohio/goadc/pkg/report"
	"github.com/itohio/goadc/pkg/sample"
)

// ErrReport wraps errors returned by the reporter. The cycle itself completed.
var ErrReport = errors.New("monitor: report failed")

// State is the phase the monitor is currently in.
type State int32

const (
	Idle State = iota
	Sampling
	Reporting
	Sleeping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	case Reporting:
		return "reporting"
	case Sleeping:
		return "sleeping"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Stats counts cycle outcomes since the monitor was created.
type Stats struct {
	Completed    uint64 // acquisitions that reached the filter
	Abandoned    uint64 // cycles dropped because acquisition failed
	ReportErrors uint64
}

// Monitor owns the filter state and drives one channel through the pipeline.
type Monitor struct {
	dev      adc.Device
	channel  adc.Channel
	res      adc.Resolution
	cal      calib.Calibrator
	over     *sample.Oversampler
	filter   *filter.MovingAverage
	quantize Quantize
	interval time.Duration
	sleeper  clock.Sleeper
	reporter report.Reporter
	now      func() time.Time

	state        atomic.Int32
	completed    atomic.Uint64
	abandoned    atomic.Uint64
	reportErrors atomic.Uint64
}

// New validates cfg and builds a monitor around an already configured device.
// A nil sleeper sleeps on the wall clock.
func New(cfg *config.Config, dev adc.Device, cal calib.Calibrator, sleeper clock.Sleeper, reporter report.Reporter) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dev == nil || cal == nil || reporter == nil {
		return nil, errors.New("monitor: device, calibrator and reporter are required")
	}
	if sleeper == nil {
		sleeper = clock.Real{}
	}

	q, err := ParseQuantize(cfg.Signal.Quantize)
	if err != nil {
		return nil, err
	}

	res := adc.Resolution(cfg.Acquisition.ResolutionBits)
	ch := adc.Channel(cfg.Acquisition.Channel)

	over, err := sample.NewOversampler(dev, ch, cfg.Signal.Oversamples, cfg.Signal.OversampleTick, sleeper)
	if err != nil {
		return nil, err
	}
	f, err := filter.New(cfg.Signal.FilterSize)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		dev:      dev,
		channel:  ch,
		res:      res,
		cal:      cal,
		over:     over,
		filter:   f,
		quantize: q,
		interval: cfg.Report.Interval,
		sleeper:  sleeper,
		reporter: reporter,
		now:      time.Now,
	}, nil
}

// State returns the current phase. Safe to call from any goroutine.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Stats returns a snapshot of the cycle counters.
func (m *Monitor) Stats() Stats {
	return Stats{
		Completed:    m.completed.Load(),
		Abandoned:    m.abandoned.Load(),
		ReportErrors: m.reportErrors.Load(),
	}
}

// Filter exposes the filter owned by the monitor for inspection.
func (m *Monitor) Filter() *filter.MovingAverage {
	return m.filter
}

func (m *Monitor) setState(s State) {
	m.state.Store(int32(s))
}

// Cycle samples once, updates the filter and emits a report.
// If acquisition fails nothing is reported and the filter keeps its state.
func (m *Monitor) Cycle(ctx context.Context) (report.Report, error) {
	m.setState(Sampling)

	// Conversions queued during the sleep are stale
	if f, ok := m.dev.(adc.Flusher); ok {
		f.Flush()
	}

	raw, err := m.dev.ReadRaw(m.channel)
	if err != nil {
		return report.Report{}, fmt.Errorf("read raw: %w", err)
	}
	oversampled, err := m.over.Oversample(ctx)
	if err != nil {
		return report.Report{}, err
	}
	filtered := m.filter.Update(oversampled)
	m.completed.Add(1)

	m.setState(Reporting)

	r := report.Report{
		Timestamp:     m.now(),
		Raw:           raw,
		RawMV:         m.cal.ToMillivolts(raw),
		Oversampled:   oversampled,
		OversampledMV: m.cal.ToMillivolts(m.quantize.Apply(oversampled, m.res)),
		Filtered:      filtered,
		FilteredMV:    m.cal.ToMillivolts(m.quantize.Apply(filtered, m.res)),
	}

	if err := m.reporter.Report(r); err != nil {
		m.reportErrors.Add(1)
		return r, fmt.Errorf("%w: %w", ErrReport, err)
	}
	return r, nil
}

// Run repeats Cycle and sleeps for the report interval until ctx is cancelled.
// Failed cycles are logged and retried after the interval. Cancellation is not an error.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.setState(Idle)

	for {
		if _, err := m.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, ErrReport) {
				m.abandoned.Add(1)
			}
			log.Printf("monitor: cycle failed: %v", err)
		}

		m.setState(Sleeping)
		if err := m.sleeper.Sleep(ctx, m.interval); err != nil {
			return nil
		}
	}
}

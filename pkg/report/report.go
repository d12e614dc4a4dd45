// Package report defines the per-cycle comparison report and its emitters.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/calib"
)

// Report compares one instantaneous conversion with the oversampled and filtered readings.
type Report struct {
	Timestamp time.Time

	Raw   adc.RawSample
	RawMV calib.Millivolts

	Oversampled   float32
	OversampledMV calib.Millivolts

	Filtered   float32
	FilteredMV calib.Millivolts
}

// Lines formats the three value/voltage pairs.
func (r Report) Lines() []string {
	return []string{
		fmt.Sprintf("Raw        : %d (%.3fV)", r.Raw, r.RawMV.Volts()),
		fmt.Sprintf("Oversample : %.1f (%.3fV)", r.Oversampled, r.OversampledMV.Volts()),
		fmt.Sprintf("Filtered   : %.1f (%.3fV)", r.Filtered, r.FilteredMV.Volts()),
	}
}

// Reporter emits reports.
type Reporter interface {
	Report(r Report) error
}

// Func adapts a plain function to a Reporter.
type Func func(r Report) error

// Report calls f.
func (f Func) Report(r Report) error {
	return f(r)
}

// Multi fans a report out to several reporters. Every reporter is called even
// when an earlier one fails; the errors are joined.
type Multi []Reporter

// Report sends r to every reporter.
func (m Multi) Report(r Report) error {
	var errs []error
	for _, rep := range m {
		if err := rep.Report(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Banner describes the acquisition setup for the startup log.
type Banner struct {
	TwoPointAvailable bool
	VrefAvailable     bool
	Source            calib.Source
	Channel           adc.Channel
	Oversamples       int
	FilterSize        int
}

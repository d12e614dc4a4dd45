// Package calib maps raw converter counts to calibrated millivolts.
//
// The mapping is an opaque capability for the rest of the pipeline: anything that
// implements Calibrator can be plugged in. Characterize builds the usual linear
// profile from factory calibration data when it is available and from a nominal
// reference voltage otherwise.
package calib

import (
	"errors"
	"fmt"

	"github.com/itohio/goadc/pkg/adc"
)

var (
	// ErrInvalidPoints is returned for calibration points that cannot define a line.
	ErrInvalidPoints = errors.New("calib: invalid calibration points")
	// ErrNotMonotonic is returned for tables whose voltage decreases with raw counts.
	ErrNotMonotonic = errors.New("calib: table is not monotonic")
	// ErrInvalidVref is returned for a zero reference voltage.
	ErrInvalidVref = errors.New("calib: invalid reference voltage")
)

// Millivolts is a calibrated voltage.
type Millivolts uint32

// Volts converts to volts.
func (mv Millivolts) Volts() float32 {
	return float32(mv) / 1000
}

// Calibrator converts a raw sample to millivolts. Implementations must be
// monotonic non-decreasing in raw.
type Calibrator interface {
	ToMillivolts(raw adc.RawSample) Millivolts
}

// Func adapts a plain function to a Calibrator.
type Func func(raw adc.RawSample) Millivolts

// ToMillivolts calls f.
func (f Func) ToMillivolts(raw adc.RawSample) Millivolts {
	return f(raw)
}

// Source tells which calibration data a profile was built from.
type Source int

const (
	SourceDefaultVref Source = iota
	SourceVref
	SourceTwoPoint
	SourceTable
)

// String returns a human readable name of the source.
func (s Source) String() string {
	switch s {
	case SourceDefaultVref:
		return "Default Vref"
	case SourceVref:
		return "eFuse Vref"
	case SourceTwoPoint:
		return "Two Point"
	case SourceTable:
		return "Table"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Point is a single (raw, millivolts) calibration measurement.
type Point struct {
	Raw adc.RawSample
	MV  Millivolts
}

// Fuses provides factory calibration values burned into the device.
type Fuses interface {
	// TwoPoint returns two measurements in 12-bit counts for the given unit and attenuation.
	TwoPoint(unit adc.Unit, atten adc.Attenuation) (low, high Point, ok bool)
	// Vref returns the measured reference voltage.
	Vref() (Millivolts, bool)
}

// StaticFuses is a Fuses implementation backed by fixed values, typically read from configuration.
type StaticFuses struct {
	VrefMV      Millivolts // 0 = not available
	Low, High   Point
	HasTwoPoint bool
}

// TwoPoint returns the stored pair regardless of unit and attenuation.
func (f StaticFuses) TwoPoint(adc.Unit, adc.Attenuation) (Point, Point, bool) {
	return f.Low, f.High, f.HasTwoPoint
}

// Vref returns the stored reference voltage if set.
func (f StaticFuses) Vref() (Millivolts, bool) {
	return f.VrefMV, f.VrefMV > 0
}

package calib

import (
	"fmt"

	"github.com/itohio/goadc/pkg/adc"
)

const (
	coeffScale = 1 << 16 // Q16 fixed point
	coeffRound = coeffScale / 2
	fuseBits   = 12 // factory measurements are taken at 12 bits
)

// attenuationGain is the input scaling of each attenuation level in Q16.
// 11 dB with a 1100 mV reference gives ~3.3 V full scale.
var attenuationGain = [...]uint64{
	adc.Atten0dB:   57431,
	adc.Atten2_5dB: 76236,
	adc.Atten6dB:   105481,
	adc.Atten11dB:  196602,
}

// Profile is a linear calibration curve: mv = (CoeffA*raw + 0.5) / 2^16 + CoeffB.
type Profile struct {
	Unit        adc.Unit
	Attenuation adc.Attenuation
	Resolution  adc.Resolution
	Source      Source
	Vref        Millivolts

	CoeffA uint32 // Q16 millivolts per count at Resolution
	CoeffB int32  // millivolts
}

// Characterize builds a calibration profile, preferring factory two-point values,
// then a factory reference voltage, then defaultVref. A nil fuses is treated as
// a device without factory calibration.
func Characterize(unit adc.Unit, atten adc.Attenuation, res adc.Resolution, defaultVref Millivolts, fuses Fuses) (*Profile, Source, error) {
	if err := res.Validate(); err != nil {
		return nil, 0, err
	}
	if err := atten.Validate(); err != nil {
		return nil, 0, err
	}

	p := &Profile{
		Unit:        unit,
		Attenuation: atten,
		Resolution:  res,
	}

	if fuses != nil {
		if low, high, ok := fuses.TwoPoint(unit, atten); ok {
			if err := p.fromTwoPoint(low, high); err != nil {
				return nil, 0, err
			}
			return p, p.Source, nil
		}
		if vref, ok := fuses.Vref(); ok {
			p.fromVref(vref, SourceVref)
			return p, p.Source, nil
		}
	}

	if defaultVref == 0 {
		return nil, 0, ErrInvalidVref
	}
	p.fromVref(defaultVref, SourceDefaultVref)
	return p, p.Source, nil
}

func (p *Profile) fromVref(vref Millivolts, src Source) {
	p.Source = src
	p.Vref = vref
	p.CoeffA = uint32(uint64(vref) * attenuationGain[p.Attenuation] >> p.Resolution)
	p.CoeffB = 0
}

func (p *Profile) fromTwoPoint(low, high Point) error {
	if high.Raw <= low.Raw || high.MV <= low.MV {
		return fmt.Errorf("%w: low %+v, high %+v", ErrInvalidPoints, low, high)
	}

	dmv := uint64(high.MV - low.MV)
	draw := uint64(high.Raw - low.Raw)

	// Slope per 12-bit count, then rescaled to a count at the configured resolution.
	slope12 := dmv * coeffScale / draw
	p.CoeffA = uint32(slope12 << fuseBits >> p.Resolution)
	p.CoeffB = int32(low.MV) - int32((slope12*uint64(low.Raw)+coeffRound)/coeffScale)
	p.Source = SourceTwoPoint
	return nil
}

// ToMillivolts applies the linear curve. Results below zero are clamped to zero.
func (p *Profile) ToMillivolts(raw adc.RawSample) Millivolts {
	v := int64((uint64(p.CoeffA)*uint64(raw)+coeffRound)/coeffScale) + int64(p.CoeffB)
	if v < 0 {
		return 0
	}
	return Millivolts(v)
}

package monitor

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/itohio/goadc/pkg/adc"
	"github.com/itohio/goadc/pkg/config"
)

// Quantize selects how a fractional reading becomes a raw count before calibration.
type Quantize int

const (
	// Truncate drops the fractional part, so 2047.9 calibrates as 2047.
	Truncate Quantize = iota
	// Round rounds half away from zero.
	Round
)

// ParseQuantize parses the config spelling of a quantization mode.
func ParseQuantize(s string) (Quantize, error) {
	switch s {
	case "truncate", "":
		return Truncate, nil
	case "round":
		return Round, nil
	default:
		return 0, fmt.Errorf("%w: unknown quantize mode %q", config.ErrInvalidConfig, s)
	}
}

func (q Quantize) String() string {
	if q == Round {
		return "round"
	}
	return "truncate"
}

// Apply converts v to a raw count clamped to the range of res.
func (q Quantize) Apply(v float32, res adc.Resolution) adc.RawSample {
	if q == Round {
		v = math32.Round(v)
	} else {
		v = math32.Trunc(v)
	}

	if math32.IsNaN(v) || v <= 0 {
		return 0
	}
	if top := float32(res.Max()); v >= top {
		return res.Max()
	}
	return adc.RawSample(v)
}

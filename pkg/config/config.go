package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration.
// It is read once at startup and never changed while the monitor runs.
type Config struct {
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Signal      SignalConfig      `yaml:"signal"`
	Report      ReportConfig      `yaml:"report"`
	Serial      SerialConfig      `yaml:"serial"`
	Mock        MockConfig        `yaml:"mock"`
	View        ViewConfig        `yaml:"view"`
}

// AcquisitionConfig selects the sampled channel and the converter setup.
type AcquisitionConfig struct {
	Unit           int    `yaml:"unit"`
	Channel        int    `yaml:"channel"`
	ResolutionBits int    `yaml:"resolution_bits"`
	Attenuation    string `yaml:"attenuation"` // 0db, 2.5db, 6db or 11db
}

// CalibrationConfig holds the reference voltage and, optionally, factory calibration data.
type CalibrationConfig struct {
	DefaultVrefMV int                `yaml:"default_vref_mv"`
	EFuseVrefMV   int                `yaml:"efuse_vref_mv,omitempty"` // 0 = not burned
	TwoPoint      *TwoPointConfig    `yaml:"two_point,omitempty"`
	Table         []CalibrationPoint `yaml:"table,omitempty"`
}

// TwoPointConfig contains two factory measurements in 12-bit counts.
type TwoPointConfig struct {
	Low  CalibrationPoint `yaml:"low"`
	High CalibrationPoint `yaml:"high"`
}

// CalibrationPoint maps a raw reading to millivolts.
type CalibrationPoint struct {
	Raw uint32 `yaml:"raw"`
	MV  uint32 `yaml:"mv"`
}

// SignalConfig contains the signal conditioning parameters.
type SignalConfig struct {
	Oversamples    int           `yaml:"oversamples"`
	OversampleTick time.Duration `yaml:"oversample_tick"`
	FilterSize     int           `yaml:"filter_size"`
	Quantize       string        `yaml:"quantize"` // truncate or round
}

// ReportConfig controls the reporting cycle.
type ReportConfig struct {
	Interval time.Duration `yaml:"interval"`
	Tag      string        `yaml:"tag"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	Level  float64 `yaml:"level"`  // DC level as a fraction of full scale
	Ripple float64 `yaml:"ripple"` // Ripple amplitude as a fraction of full scale
	Noise  float64 `yaml:"noise"`  // Noise amplitude in counts
	Period int     `yaml:"period"` // Ripple period in samples
}

// ViewConfig contains live window settings.
type ViewConfig struct {
	Window    time.Duration `yaml:"window"`     // Time span shown by the trend plot
	MaxPoints int           `yaml:"max_points"` // Points drawn per series
}

// Attenuations lists the accepted attenuation names, lowest input range first.
var Attenuations = []string{"0db", "2.5db", "6db", "11db"}

// NormalizeAttenuation lowercases s and appends a missing "db" suffix,
// so "11", "11 dB" and "11db" all compare equal.
func NormalizeAttenuation(s string) string {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(name, " db")
	if !strings.HasSuffix(name, "db") {
		name += "db"
	}
	return name
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Acquisition: AcquisitionConfig{
			Unit:           1,
			Channel:        6, // GPIO34
			ResolutionBits: 12,
			Attenuation:    "11db",
		},
		Calibration: CalibrationConfig{
			DefaultVrefMV: 1100,
		},
		Signal: SignalConfig{
			Oversamples:    100,
			OversampleTick: time.Millisecond,
			FilterSize:     10,
			Quantize:       "truncate",
		},
		Report: ReportConfig{
			Interval: 2 * time.Second,
			Tag:      "ADC_ENHANCED",
		},
		Serial: SerialConfig{
			Port:        "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate:    115200,
			ReadTimeout: time.Second,
		},
		Mock: MockConfig{
			Level:  0.5,
			Ripple: 0.01,
			Noise:  8,
			Period: 50,
		},
		View: ViewConfig{
			Window:    2 * time.Minute,
			MaxPoints: 500,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first configuration error. It must pass before any cycle runs.
func (c *Config) Validate() error {
	switch {
	case c.Signal.FilterSize < 1:
		return fmt.Errorf("%w: filter_size must be at least 1, got %d", ErrInvalidConfig, c.Signal.FilterSize)
	case c.Signal.Oversamples < 1:
		return fmt.Errorf("%w: oversamples must be at least 1, got %d", ErrInvalidConfig, c.Signal.Oversamples)
	case c.Signal.OversampleTick < 0:
		return fmt.Errorf("%w: oversample_tick must not be negative", ErrInvalidConfig)
	case c.Signal.Quantize != "truncate" && c.Signal.Quantize != "round":
		return fmt.Errorf("%w: quantize must be truncate or round, got %q", ErrInvalidConfig, c.Signal.Quantize)
	case c.Acquisition.ResolutionBits < 8 || c.Acquisition.ResolutionBits > 16:
		return fmt.Errorf("%w: resolution_bits must be within 8..16, got %d", ErrInvalidConfig, c.Acquisition.ResolutionBits)
	case c.Acquisition.Channel < 0 || c.Acquisition.Channel > 255:
		return fmt.Errorf("%w: channel out of range: %d", ErrInvalidConfig, c.Acquisition.Channel)
	case c.Calibration.DefaultVrefMV <= 0:
		return fmt.Errorf("%w: default_vref_mv must be positive", ErrInvalidConfig)
	case c.Report.Interval <= 0:
		return fmt.Errorf("%w: report interval must be positive", ErrInvalidConfig)
	case !slices.Contains(Attenuations, NormalizeAttenuation(c.Acquisition.Attenuation)):
		return fmt.Errorf("%w: unknown attenuation %q", ErrInvalidConfig, c.Acquisition.Attenuation)
	}
	return c.Calibration.validate()
}

func (c *CalibrationConfig) validate() error {
	if tp := c.TwoPoint; tp != nil && (tp.High.Raw <= tp.Low.Raw || tp.High.MV <= tp.Low.MV) {
		return fmt.Errorf("%w: two_point high must be above low in raw and mv", ErrInvalidConfig)
	}

	if len(c.Table) == 1 {
		return fmt.Errorf("%w: calibration table needs at least 2 points", ErrInvalidConfig)
	}
	for i := 1; i < len(c.Table); i++ {
		prev, p := c.Table[i-1], c.Table[i]
		if p.Raw <= prev.Raw || p.MV < prev.MV {
			return fmt.Errorf("%w: calibration table point %d (%d, %d) is not above (%d, %d)",
				ErrInvalidConfig, i, p.Raw, p.MV, prev.Raw, prev.MV)
		}
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
// Signal parameters are left alone so that an explicit zero reaches Validate.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Acquisition.Unit == 0 {
		c.Acquisition.Unit = def.Acquisition.Unit
	}
	if c.Acquisition.ResolutionBits == 0 {
		c.Acquisition.ResolutionBits = def.Acquisition.ResolutionBits
	}
	if c.Acquisition.Attenuation == "" {
		c.Acquisition.Attenuation = def.Acquisition.Attenuation
	}

	if c.Calibration.DefaultVrefMV == 0 {
		c.Calibration.DefaultVrefMV = def.Calibration.DefaultVrefMV
	}

	if c.Signal.Quantize == "" {
		c.Signal.Quantize = def.Signal.Quantize
	}

	if c.Report.Interval == 0 {
		c.Report.Interval = def.Report.Interval
	}
	if c.Report.Tag == "" {
		c.Report.Tag = def.Report.Tag
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = def.Serial.ReadTimeout
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}

	if c.View.Window == 0 {
		c.View.Window = def.View.Window
	}
	if c.View.MaxPoints == 0 {
		c.View.MaxPoints = def.View.MaxPoints
	}
}

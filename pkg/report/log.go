package report

import (
	"io"
	"log"
)

// Log writes reports as tagged log lines.
type Log struct {
	logger *log.Logger
	tag    string
}

// NewLog creates a Log writing to w with the standard timestamp flags.
func NewLog(w io.Writer, tag string) *Log {
	return NewLogWithLogger(log.New(w, "", log.LstdFlags), tag)
}

// NewLogWithLogger creates a Log on an existing logger.
func NewLogWithLogger(logger *log.Logger, tag string) *Log {
	return &Log{logger: logger, tag: tag}
}

// Report writes the comparison block followed by a blank line.
func (l *Log) Report(r Report) error {
	l.printf("=== ADC Comparison ===")
	for _, line := range r.Lines() {
		l.printf("%s", line)
	}
	l.printf("")
	return nil
}

// Banner writes the calibration diagnostics and the sampling setup.
func (l *Log) Banner(b Banner) {
	l.printf("eFuse Two Point: %s", supported(b.TwoPointAvailable))
	l.printf("eFuse Vref: %s", supported(b.VrefAvailable))
	l.printf("Calibration: %s", b.Source)
	l.printf("ADC test: Oversampling + Moving Average Filter")
	l.printf("Channel: %d, Oversamples: %d, Filter Size: %d", b.Channel, b.Oversamples, b.FilterSize)
	l.printf("----------------------------------------")
}

func (l *Log) printf(format string, args ...any) {
	l.logger.Printf("%s: "+format, append([]any{l.tag}, args...)...)
}

func supported(ok bool) string {
	if ok {
		return "supported"
	}
	return "not supported"
}

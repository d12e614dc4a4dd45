//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_US = 1000 // One conversion per millisecond
	ADC_CHANNEL        = 6    // Channel number reported to the host

	// ADC configuration
	ADC_REFERENCE_MV   = 3300 // Reference voltage in millivolts (3.3V)
	DEFAULT_RESOLUTION = 12   // ADC resolution in bits (12-bit = 0-4095)
	MIN_RESOLUTION     = 8
	MAX_RESOLUTION     = 16

	// ADC pin
	PIN_ADC = machine.A1

	// Serial configuration
	// Format "unix_micros,channel,raw\n", e.g. "1234567890123456,6,4095\n" = ~24 bytes per line.
	// 1000 lines/sec * 24 bytes = 24,000 bytes/sec, above what a 115200 baud UART carries,
	// so samples go over USB CDC where the baud rate is nominal.
	SERIAL_BAUD_RATE = 115200
)

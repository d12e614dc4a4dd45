//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcInput   machine.ADC
	serial     = machine.Serial
	resolution = uint8(DEFAULT_RESOLUTION)

	// Timing
	lastADCRead time.Time

	// Serial buffer for reading command lines
	serialBuffer [8]byte
	serialPos    int
)

func main() {
	PIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	adcInput = machine.ADC{Pin: PIN_ADC}
	configureADC()

	serial.Configure(machine.UARTConfig{
		BaudRate: SERIAL_BAUD_RATE,
	})

	lastADCRead = time.Now()

	for {
		now := time.Now()

		// Check for commands (non-blocking)
		processSerial()

		if now.Sub(lastADCRead) >= SAMPLE_INTERVAL_US*time.Microsecond {
			outputSample(now, readADC())
			lastADCRead = now
		}

		time.Sleep(100 * time.Microsecond)
	}
}

func configureADC() {
	adcInput.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: uint32(resolution),
	})
}

// readADC returns the conversion scaled down to the configured resolution.
// Get always returns a left aligned 16-bit value.
func readADC() uint16 {
	return adcInput.Get() >> (16 - resolution)
}

func outputSample(now time.Time, raw uint16) {
	// Output format: "unix_micros,channel,raw\n"
	// Example: "1234567890123,6,2048\n"
	print(now.UnixNano() / 1000)
	print(",")
	print(ADC_CHANNEL)
	print(",")
	print(raw)
	print("\n")
}

// processSerial accepts "R<bits>\n" to change the resolution.
func processSerial() {
	for serial.Buffered() > 0 {
		data, err := serial.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if serialPos > 0 {
				handleCommand(serialBuffer[:serialPos])
			}
			serialPos = 0
			continue
		}

		if data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		} else {
			// Overlong line - drop it
			serialPos = 0
		}
	}
}

func handleCommand(cmd []byte) {
	if len(cmd) < 2 || cmd[0] != 'R' {
		return
	}

	bits := 0
	for _, c := range cmd[1:] {
		if c < '0' || c > '9' {
			return
		}
		bits = bits*10 + int(c-'0')
	}
	if bits < MIN_RESOLUTION || bits > MAX_RESOLUTION {
		return
	}

	resolution = uint8(bits)
	configureADC()
}

package adc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the firmware UART setting.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
	// DefaultReadTimeout bounds how long ReadRaw waits for the next sample.
	DefaultReadTimeout = time.Second
)

// Line is one parsed sample line sent by the MCU.
type Line struct {
	Timestamp time.Time
	Channel   Channel
	Raw       RawSample
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads conversions streamed by the sampling firmware over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	timeout  time.Duration

	conn       io.ReadWriteCloser
	samples    chan Line
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	connected  bool
	res        Resolution
	configured bool
}

// NewSerial creates a new Serial device with the specified port, baud rate, buffer size and read timeout.
func NewSerial(port string, baudRate int, bufSize int, timeout time.Duration) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if timeout == 0 {
		timeout = DefaultReadTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		timeout:  timeout,
		samples:  make(chan Line, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	if err := d.attach(port); err != nil {
		port.Close()
		return err
	}
	return nil
}

// attach starts reading samples from an already opened connection.
func (d *Serial) attach(conn io.ReadWriteCloser) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}
	if d.ctx.Err() != nil {
		return ErrClosed
	}

	d.conn = conn
	d.connected = true

	go d.readSamples(conn)

	return nil
}

// Configure asks the firmware to switch resolution.
// Attenuation is fixed by the analog front end of serial boards and is only recorded.
func (d *Serial) Configure(res Resolution, atten Attenuation) error {
	if err := res.Validate(); err != nil {
		return err
	}
	if err := atten.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	cmd := "R" + strconv.Itoa(int(res)) + "\n"
	if _, err := d.conn.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("failed to send resolution command: %w", err)
	}

	d.res = res
	d.configured = true
	return nil
}

// ReadRaw waits for the next sample of the given channel.
// Samples of other channels are discarded.
func (d *Serial) ReadRaw(ch Channel) (RawSample, error) {
	d.mu.RLock()
	connected, configured, res := d.connected, d.configured, d.res
	d.mu.RUnlock()

	if !connected {
		return 0, ErrClosed
	}
	if !configured {
		return 0, ErrNotConfigured
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	for {
		select {
		case line := <-d.samples:
			if line.Channel != ch {
				continue
			}
			if line.Raw > res.Max() {
				return 0, fmt.Errorf("sample %d out of range for %d-bit resolution", line.Raw, res)
			}
			return line.Raw, nil
		case <-timer.C:
			return 0, ErrTimeout
		case <-d.ctx.Done():
			return 0, ErrClosed
		}
	}
}

// Flush drops the samples queued since the last read, so the next ReadRaw
// waits for a conversion made after this call.
func (d *Serial) Flush() int {
	n := 0
	for {
		select {
		case <-d.samples:
			n++
		default:
			return n
		}
	}
}

// Close closes the connection and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Cancel context to stop reading goroutine
	d.cancel()

	if !d.connected {
		return nil
	}

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from the serial port and parses them into Lines.
func (d *Serial) readSamples(conn io.Reader) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readSamples: %v", r)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			line, err := parseLine(text)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", text, err)
				continue
			}

			// Send sample to channel (non-blocking)
			select {
			case d.samples <- line:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, drop the oldest so ReadRaw sees fresh conversions
				select {
				case <-d.samples:
				default:
				}
				select {
				case d.samples <- line:
				default:
				}
			}
		}
	}
}

// parseLine parses a line from the MCU into a Line.
// Format: unix_micros,channel,raw
// Example: 1234567890123,6,2048
func parseLine(text string) (Line, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 3 {
		return Line{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	// Parse timestamp (unix microseconds)
	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Line{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	channel, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Line{}, fmt.Errorf("invalid channel: %w", err)
	}

	// Raw fits the widest supported resolution; the configured width is checked by ReadRaw
	raw, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return Line{}, fmt.Errorf("invalid raw value: %w", err)
	}

	return Line{
		Timestamp: time.UnixMicro(timestampMicros),
		Channel:   Channel(channel),
		Raw:       RawSample(raw),
	}, nil
}

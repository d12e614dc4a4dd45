package adc

// Fake is a test double that returns scripted raw samples.
type Fake struct {
	// Samples contains scripted values to return.
	// Each call to ReadRaw consumes the next sample.
	Samples []RawSample

	// index tracks current position in Samples
	index int

	// Reads counts successful ReadRaw calls.
	Reads int

	// Err, if set, is returned by ReadRaw once FailAfter reads have succeeded.
	Err       error
	FailAfter int

	// Resolution and Attenuation record the last Configure call.
	Resolution  Resolution
	Attenuation Attenuation
	Configured  bool

	// Closed tracks if Close was called
	Closed bool

	// Flushes counts Flush calls
	Flushes int
}

// NewFake creates a configured Fake with the given samples.
func NewFake(samples ...RawSample) *Fake {
	return &Fake{
		Samples:     samples,
		Resolution:  12,
		Attenuation: Atten11dB,
		Configured:  true,
	}
}

// Configure records the requested setup.
func (f *Fake) Configure(res Resolution, atten Attenuation) error {
	if err := res.Validate(); err != nil {
		return err
	}
	f.Resolution = res
	f.Attenuation = atten
	f.Configured = true
	return nil
}

// ReadRaw returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *Fake) ReadRaw(ch Channel) (RawSample, error) {
	if f.Closed {
		return 0, ErrClosed
	}
	if !f.Configured {
		return 0, ErrNotConfigured
	}
	if f.Err != nil && f.Reads >= f.FailAfter {
		return 0, f.Err
	}
	if len(f.Samples) == 0 {
		return 0, ErrExhausted
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	f.Reads++

	return sample, nil
}

// Flush records the call. Scripted samples are never dropped.
func (f *Fake) Flush() int {
	f.Flushes++
	return 0
}

// Close marks the device as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script and clears the recorded state.
func (f *Fake) Reset() {
	f.index = 0
	f.Reads = 0
	f.Flushes = 0
	f.Closed = false
}

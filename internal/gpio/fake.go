package gpio

import (
	"errors"
	"fmt"
)

// Write is one recorded output change.
type Write struct {
	Index int
	On    bool
}

// FakeOutputs records output writes for test assertions.
type FakeOutputs struct {
	// Values holds the current state of each output.
	Values []bool

	// Writes contains every Set call in order.
	Writes []Write

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeOutputs creates n outputs, all off.
func NewFakeOutputs(n int) *FakeOutputs {
	return &FakeOutputs{Values: make([]bool, n)}
}

// Set records the write.
func (f *FakeOutputs) Set(index int, on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	if index < 0 || index >= len(f.Values) {
		return fmt.Errorf("output %d out of range", index)
	}
	f.Values[index] = on
	f.Writes = append(f.Writes, Write{Index: index, On: on})
	return nil
}

// Len returns the number of outputs.
func (f *FakeOutputs) Len() int {
	return len(f.Values)
}

// Close marks the outputs as closed.
func (f *FakeOutputs) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeOutputs) Reset() {
	f.Writes = nil
	f.SetError = nil
	f.Closed = false
}

// FakeSensor is a test double that returns scripted readings.
type FakeSensor struct {
	// Samples contains scripted readings. Each Read consumes the next one.
	Samples []int

	// index tracks current position in Samples
	index int

	// Reads counts calls to Read.
	Reads int

	// ReadError, if set, will be returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples ...int) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeSensor) Read() (int, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the sensor to the first sample.
func (f *FakeSensor) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}

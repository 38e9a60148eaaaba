//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealOutputs drives LEDs through the Linux GPIO character device.
type RealOutputs struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealOutputs requests pins on chipName as outputs, initially low.
func NewRealOutputs(chipName string, pins []int) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealOutputs{chip: chip}
	for _, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("light-bridge"))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
		}
		r.lines = append(r.lines, line)
	}
	return r, nil
}

// Set drives output index high (on) or low (off).
func (r *RealOutputs) Set(index int, on bool) error {
	if index < 0 || index >= len(r.lines) {
		return fmt.Errorf("output %d out of range", index)
	}
	v := 0
	if on {
		v = 1
	}
	if err := r.lines[index].SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", r.lines[index].Offset(), err)
	}
	return nil
}

// Len returns the number of requested lines.
func (r *RealOutputs) Len() int {
	return len(r.lines)
}

// Close drives every line low and releases it.
// Lines are returned to input with pull-down to match Pi boot defaults.
func (r *RealOutputs) Close() error {
	var errs []error

	for _, line := range r.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear pin %d: %w", line.Offset(), err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", line.Offset(), err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", line.Offset(), err))
		}
	}
	r.lines = nil

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

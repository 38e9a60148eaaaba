package gpio

import (
	"fmt"
	"time"

	"github.com/sweeney/light-bridge/internal/logic"
)

// Bank maps a level onto an ordered set of outputs: output i is on iff i <= level.
// It remembers what it last wrote, so re-applying a level writes nothing.
// Not safe for concurrent use.
type Bank struct {
	out   Outputs
	lit   []bool
	known []bool // false until the output has been written once
}

// NewBank wraps out. The initial output state is treated as unknown.
func NewBank(out Outputs) *Bank {
	n := out.Len()
	return &Bank{
		out:   out,
		lit:   make([]bool, n),
		known: make([]bool, n),
	}
}

// Len returns the number of actuators.
func (b *Bank) Len() int {
	return len(b.lit)
}

// Apply drives the outputs to match level and returns how many were written.
// Writing stops at the first driver error.
func (b *Bank) Apply(level logic.Level) (int, error) {
	written := 0
	for i := range b.lit {
		want := logic.Level(i) <= level
		if b.known[i] && b.lit[i] == want {
			continue
		}
		if err := b.out.Set(i, want); err != nil {
			return written, fmt.Errorf("set output %d: %w", i, err)
		}
		b.lit[i] = want
		b.known[i] = true
		written++
	}
	return written, nil
}

// Lit returns a copy of the last written output states.
func (b *Bank) Lit() []bool {
	out := make([]bool, len(b.lit))
	copy(out, b.lit)
	return out
}

// LitCount returns the number of outputs currently on.
func (b *Bank) LitCount() int {
	n := 0
	for _, on := range b.lit {
		if on {
			n++
		}
	}
	return n
}

// SelfTest lights every output, waits hold, then turns them all off.
// sleep is injectable for tests; nil means time.Sleep.
func (b *Bank) SelfTest(hold time.Duration, sleep func(time.Duration)) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	if _, err := b.Apply(logic.Level(b.Len() - 1)); err != nil {
		return fmt.Errorf("self-test on: %w", err)
	}
	sleep(hold)
	if _, err := b.Apply(logic.LevelOff); err != nil {
		return fmt.Errorf("self-test off: %w", err)
	}
	return nil
}

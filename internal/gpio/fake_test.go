package gpio

import (
	"errors"
	"testing"
)

func TestFakeSensorRead(t *testing.T) {
	f := NewFakeSensor(100, 200, 300)

	for i, want := range []int{100, 200, 300, 300} {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("read %d: got %d, want %d", i, got, want)
		}
	}
	if f.Reads != 4 {
		t.Errorf("Reads: got %d, want 4", f.Reads)
	}
}

func TestFakeSensorNoSamples(t *testing.T) {
	f := NewFakeSensor()

	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeSensorError(t *testing.T) {
	f := NewFakeSensor(1)
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeSensorReset(t *testing.T) {
	f := NewFakeSensor(1, 2)
	f.Read()
	f.Close()
	f.Reset()

	got, _ := f.Read()
	if got != 1 {
		t.Errorf("after reset: got %d, want 1", got)
	}
	if f.Closed {
		t.Error("closed should be reset")
	}
}

func TestFakeOutputsOutOfRange(t *testing.T) {
	f := NewFakeOutputs(2)

	if err := f.Set(2, true); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := f.Set(-1, true); err == nil {
		t.Error("expected error for negative index")
	}
	if len(f.Writes) != 0 {
		t.Errorf("expected no writes recorded, got %d", len(f.Writes))
	}
}

func TestFakeOutputsClose(t *testing.T) {
	f := NewFakeOutputs(1)
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

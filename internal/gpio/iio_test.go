package gpio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeney/light-bridge/internal/logic"
)

func writeRaw(t *testing.T, path, value string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw, rawMax, want int
	}{
		{0, 4095, 0},
		{-3, 4095, 0},
		{4095, 4095, logic.SensorMax},
		{5000, 4095, logic.SensorMax},
		{2048, 4096, 32767},
		{1, 0, 0},
		{32768, 65535, 32768},
	}

	for _, tt := range tests {
		if got := Normalize(tt.raw, tt.rawMax); got != tt.want {
			t.Errorf("Normalize(%d, %d): got %d, want %d", tt.raw, tt.rawMax, got, tt.want)
		}
	}
}

func TestIIOSensorRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	writeRaw(t, path, "4095\n")

	s, err := NewIIOSensor(path, 4095, false)
	if err != nil {
		t.Fatalf("NewIIOSensor: %v", err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != logic.SensorMax {
		t.Errorf("got %d, want %d", got, logic.SensorMax)
	}

	writeRaw(t, path, "0\n")
	got, err = s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestIIOSensorInvert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	writeRaw(t, path, "0")

	s, err := NewIIOSensor(path, 4095, true)
	if err != nil {
		t.Fatalf("NewIIOSensor: %v", err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != logic.SensorMax {
		t.Errorf("got %d, want %d", got, logic.SensorMax)
	}
}

func TestIIOSensorBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	writeRaw(t, path, "garbage")

	s, err := NewIIOSensor(path, 4095, false)
	if err != nil {
		t.Fatalf("NewIIOSensor: %v", err)
	}
	if _, err := s.Read(); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewIIOSensorErrors(t *testing.T) {
	if _, err := NewIIOSensor(filepath.Join(t.TempDir(), "missing"), 4095, false); err == nil {
		t.Error("expected error for missing attribute")
	}

	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	writeRaw(t, path, "1")
	if _, err := NewIIOSensor(path, 0, false); err == nil {
		t.Error("expected error for zero raw max")
	}
}

func TestIIOSensorRemovedAfterOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	writeRaw(t, path, "1")

	s, err := NewIIOSensor(path, 4095, false)
	if err != nil {
		t.Fatalf("NewIIOSensor: %v", err)
	}
	os.Remove(path)

	if _, err := s.Read(); err == nil {
		t.Error("expected read error")
	}
}

package gpio

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sweeney/light-bridge/internal/logic"
)

// IIOSensor reads an ADC channel exposed by the Linux Industrial I/O
// subsystem, e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIOSensor struct {
	path   string
	rawMax int
	invert bool
}

// NewIIOSensor creates a sensor for the sysfs attribute at path. rawMax is the
// full-scale raw value of the ADC (4095 for 12-bit). With invert set, a full
// scale raw reading maps to 0.
func NewIIOSensor(path string, rawMax int, invert bool) (*IIOSensor, error) {
	if rawMax <= 0 {
		return nil, fmt.Errorf("invalid raw max %d", rawMax)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open adc channel: %w", err)
	}
	return &IIOSensor{path: path, rawMax: rawMax, invert: invert}, nil
}

// Read samples the channel and normalizes it to [0, logic.SensorMax].
func (s *IIOSensor) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse adc value %q: %w", strings.TrimSpace(string(data)), err)
	}
	v := Normalize(raw, s.rawMax)
	if s.invert {
		v = logic.SensorMax - v
	}
	return v, nil
}

// Close is a no-op; the attribute is reopened on every read.
func (s *IIOSensor) Close() error {
	return nil
}

// Normalize scales raw from [0, rawMax] to [0, logic.SensorMax], clamping
// out-of-range values.
func Normalize(raw, rawMax int) int {
	if raw <= 0 || rawMax <= 0 {
		return 0
	}
	if raw >= rawMax {
		return logic.SensorMax
	}
	return int(int64(raw) * logic.SensorMax / int64(rawMax))
}

// Package gpio provides the LED outputs and the joystick's analog input with
// hardware abstraction.
// The real implementations use the Linux GPIO character device and IIO sysfs.
// The fake implementations allow testing without hardware.
package gpio

// Outputs drives a fixed set of on/off indicators.
type Outputs interface {
	// Set drives output index on or off.
	Set(index int, on bool) error

	// Len returns the number of outputs.
	Len() int

	// Close releases the outputs.
	Close() error
}

// Sensor samples the joystick axis.
type Sensor interface {
	// Read returns the current reading normalized to [0, logic.SensorMax].
	Read() (int, error)

	// Close releases sensor resources.
	Close() error
}

// Default wiring (BCM numbering): red, yellow, green from the bottom of the scale.
var DefaultLEDPins = []int{22, 27, 17}

// DefaultChip is the GPIO character device holding the LED lines.
const DefaultChip = "gpiochip0"

// Default analog input: first channel of the first IIO ADC, 12-bit.
const (
	DefaultIIOPath = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"
	DefaultRawMax  = 4095
)

package logic

import "fmt"

// SensorMax is the top of the normalized sensor range.
const SensorMax = 65535

// Default joystick thresholds on the normalized range.
const (
	DefaultHigh = 60000
	DefaultLow  = 3000
)

// Thresholds splits the normalized sensor range into up, down and a dead zone.
type Thresholds struct {
	High int // reading >= High steps up
	Low  int // reading <= Low steps down
}

// DefaultThresholds returns the stock joystick thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{High: DefaultHigh, Low: DefaultLow}
}

// Validate checks that the thresholds leave a non-empty dead zone inside the
// sensor range.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.High > SensorMax {
		return fmt.Errorf("thresholds must lie within [0, %d]: low=%d high=%d", SensorMax, t.Low, t.High)
	}
	if t.High-t.Low < 2 {
		return fmt.Errorf("dead zone is empty: low=%d high=%d", t.Low, t.High)
	}
	return nil
}

// Classify returns the direction a reading requests.
// Readings strictly between Low and High fall in the dead zone.
func (t Thresholds) Classify(reading int) Direction {
	switch {
	case reading >= t.High:
		return DirUp
	case reading <= t.Low:
		return DirDown
	default:
		return DirNone
	}
}

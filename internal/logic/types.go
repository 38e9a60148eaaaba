// Package logic contains the pure light-level state machine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// Level is the index of the highest lit actuator. LevelOff means nothing is lit.
type Level int

// LevelOff is the lowest level: every actuator off.
const LevelOff Level = -1

// Direction is the requested movement of the level.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	default:
		return "NONE"
	}
}

// Source identifies what triggered a transition.
type Source string

const (
	SourceSensor   Source = "sensor"
	SourceRemote   Source = "remote"
	SourceSignal   Source = "signal"
	SourceShutdown Source = "shutdown"
)

// Kind classifies a transition for counting and journaling.
type Kind string

const (
	KindStepUp     Kind = "STEP_UP"
	KindStepDown   Kind = "STEP_DOWN"
	KindMaxReached Kind = "MAX_REACHED"
	KindMinReached Kind = "MIN_REACHED"
	KindPowerOn    Kind = "POWER_ON"
	KindPowerOff   Kind = "POWER_OFF"
	KindShutdown   Kind = "SHUTDOWN"
)

// Transition records the outcome of one input event.
type Transition struct {
	Timestamp time.Time
	Source    Source
	Kind      Kind
	From      Level
	To        Level
}

// Changed reports whether the level moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

func (t Transition) String() string {
	return fmt.Sprintf("%s via %s (%d -> %d)", t.Kind, t.Source, t.From, t.To)
}

// Remote control codes sent by the dashboard's remote control block.
const (
	CodeIncrease = 5
	CodeDecrease = 13
)

// DirectionForCode maps a remote control code to a direction.
// Unknown codes return (DirNone, false).
func DirectionForCode(code int) (Direction, bool) {
	switch code {
	case CodeIncrease:
		return DirUp, true
	case CodeDecrease:
		return DirDown, true
	default:
		return DirNone, false
	}
}

// Counts tracks the number of each transition kind since startup.
type Counts struct {
	StepUp     int
	StepDown   int
	MaxReached int
	MinReached int
	Ignored    int // unrecognized codes and malformed payloads
}

// Add increments the counter for kind.
func (c *Counts) Add(kind Kind) {
	switch kind {
	case KindStepUp:
		c.StepUp++
	case KindStepDown:
		c.StepDown++
	case KindMaxReached:
		c.MaxReached++
	case KindMinReached:
		c.MinReached++
	}
}

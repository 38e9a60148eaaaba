// Package mqtt provides the publish/subscribe channel adapter with
// abstraction for testing.
package mqtt

import (
	"errors"
	"fmt"
)

// Channel is a logical signal name, bound to a broker topic at startup.
type Channel string

const (
	ChannelPower   Channel = "power"
	ChannelControl Channel = "control"
	ChannelStatus  Channel = "status"
)

// LevelChannel returns the logical channel for actuator i.
func LevelChannel(i int) Channel {
	return Channel(fmt.Sprintf("level[%d]", i))
}

var (
	// ErrNotConnected is returned when the broker connection is down.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrUnboundChannel is returned for a channel with no topic binding.
	ErrUnboundChannel = errors.New("mqtt: channel not bound")

	// ErrRateLimited is returned when a publish exceeds the configured rate.
	ErrRateLimited = errors.New("mqtt: publish rate limited")
)

// Message is an inbound message on a subscribed channel.
type Message struct {
	Channel Channel
	Topic   string
	Payload []byte
}

// Handler processes one inbound message. Handlers run on the goroutine that
// calls Poll and run to completion before the next message is dispatched.
type Handler func(Message)

// Publisher sends values on logical channels.
type Publisher interface {
	// Publish sends payload on ch.
	// Returns error if publishing fails (should not crash the process).
	Publish(ch Channel, payload []byte) error
}

// Remote is the full channel adapter used by the main loop.
type Remote interface {
	Publisher

	// Subscribe registers h for messages on ch. Call once per channel before
	// the loop starts.
	Subscribe(ch Channel, h Handler) error

	// Poll dispatches every buffered inbound message to its handler and
	// returns the number dispatched. It never waits for new messages.
	Poll() int

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

package mqtt

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultInboxSize bounds the number of inbound messages held between polls.
const DefaultInboxSize = 64

// inbox decouples broker goroutines from the main loop: push may be called
// from any goroutine, dispatch runs handlers on the caller's goroutine.
type inbox struct {
	mu       sync.Mutex
	buf      *ringBuffer
	handlers map[Channel]Handler
}

func newInbox(capacity int) *inbox {
	return &inbox{
		buf:      newRingBuffer(capacity),
		handlers: make(map[Channel]Handler),
	}
}

func (in *inbox) handle(ch Channel, h Handler) {
	in.mu.Lock()
	in.handlers[ch] = h
	in.mu.Unlock()
}

func (in *inbox) push(msg Message) {
	in.mu.Lock()
	in.buf.push(msg)
	in.mu.Unlock()
}

func (in *inbox) pending() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buf.len()
}

func (in *inbox) dropped() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buf.dropped
}

// dispatch drains the messages queued so far and hands each to its handler.
// Messages pushed while handlers run wait for the next dispatch.
func (in *inbox) dispatch() int {
	in.mu.Lock()
	msgs := in.buf.drainAll()
	in.mu.Unlock()

	n := 0
	for _, msg := range msgs {
		in.mu.Lock()
		h := in.handlers[msg.Channel]
		in.mu.Unlock()
		if h == nil {
			log.Debug().Str("channel", string(msg.Channel)).Str("topic", msg.Topic).Msg("mqtt: no handler, dropping message")
			continue
		}
		h(msg)
		n++
	}
	return n
}

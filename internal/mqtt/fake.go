package mqtt

import "fmt"

// Publication is one recorded publish.
type Publication struct {
	Channel Channel
	Payload string
}

// FakeRemote records publishes and delivers scripted inbound messages for
// test assertions.
type FakeRemote struct {
	// Published contains every successful publish in order.
	Published []Publication

	// Subscribed contains every subscribed channel in order.
	Subscribed []Channel

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called. Publishing after Close fails.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	inbox *inbox
}

// NewFakeRemote creates a connected FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		Connected: true,
		inbox:     newInbox(DefaultInboxSize),
	}
}

// Publish records the publication.
func (f *FakeRemote) Publish(ch Channel, payload []byte) error {
	if f.Closed {
		return fmt.Errorf("publish %s: %w", ch, ErrNotConnected)
	}
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Published = append(f.Published, Publication{Channel: ch, Payload: string(payload)})
	return nil
}

// Subscribe records the subscription and registers h.
func (f *FakeRemote) Subscribe(ch Channel, h Handler) error {
	f.Subscribed = append(f.Subscribed, ch)
	f.inbox.handle(ch, h)
	return nil
}

// Deliver queues an inbound message, as the broker would.
func (f *FakeRemote) Deliver(ch Channel, payload string) {
	f.inbox.push(Message{Channel: ch, Topic: string(ch), Payload: []byte(payload)})
}

// Pending returns the number of queued inbound messages.
func (f *FakeRemote) Pending() int {
	return f.inbox.pending()
}

// Poll dispatches queued messages.
func (f *FakeRemote) Poll() int {
	return f.inbox.dispatch()
}

// Dropped returns the number of queued messages lost to overflow.
func (f *FakeRemote) Dropped() int {
	return f.inbox.dropped()
}

// Close marks the remote as closed.
func (f *FakeRemote) Close() error {
	f.Closed = true
	f.Connected = false
	return nil
}

// IsConnected reports whether the fake remote is "connected".
func (f *FakeRemote) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded publications and errors.
func (f *FakeRemote) Reset() {
	f.Published = nil
	f.PublishError = nil
	f.Closed = false
	f.Connected = true
}

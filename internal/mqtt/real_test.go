package mqtt

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// stubMessage satisfies paho.Message for handler tests.
type stubMessage struct {
	topic   string
	payload []byte
}

func (m stubMessage) Duplicate() bool   { return false }
func (m stubMessage) Qos() byte         { return 0 }
func (m stubMessage) Retained() bool    { return false }
func (m stubMessage) Topic() string     { return m.topic }
func (m stubMessage) MessageID() uint16 { return 0 }
func (m stubMessage) Payload() []byte   { return m.payload }
func (m stubMessage) Ack()              {}

// newOfflineRemote builds a RealRemote without a broker. Only the paho
// callbacks are usable.
func newOfflineRemote(opts Options, b Bindings) *RealRemote {
	opts.setDefaults()
	return &RealRemote{
		bindings: b,
		opts:     opts,
		inbox:    newInbox(opts.InboxSize),
		log:      zerolog.Nop(),
	}
}

func TestRealRemoteReportsConnectionChanges(t *testing.T) {
	var got []bool
	r := newOfflineRemote(Options{
		OnConnectionChange: func(connected bool) { got = append(got, connected) },
	}, NewBindings("u", "power", "control", "", []string{"red"}))

	r.onConnect(nil)
	r.onConnectionLost(nil, errors.New("EOF"))
	r.onConnect(nil)

	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("expected %d reports, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRealRemoteConnectionChangeOptional(t *testing.T) {
	r := newOfflineRemote(Options{}, NewBindings("u", "power", "control", "", []string{"red"}))

	// Must not panic without a callback.
	r.onConnect(nil)
	r.onConnectionLost(nil, errors.New("EOF"))
}

func TestRealRemoteRoutesInboundByTopic(t *testing.T) {
	r := newOfflineRemote(Options{}, NewBindings("u", "power", "control", "", []string{"red", "yellow"}))

	var power, control []string
	r.inbox.handle(ChannelPower, func(m Message) { power = append(power, string(m.Payload)) })
	r.inbox.handle(ChannelControl, func(m Message) { control = append(control, string(m.Payload)) })

	r.onMessage(nil, stubMessage{topic: "u/feeds/power", payload: []byte("0")})
	r.onMessage(nil, stubMessage{topic: "u/feeds/control", payload: []byte("5")})
	r.onMessage(nil, stubMessage{topic: "u/feeds/unknown", payload: []byte("1")})

	if n := r.Poll(); n != 2 {
		t.Errorf("poll: got %d, want 2", n)
	}
	if len(power) != 1 || power[0] != "0" {
		t.Errorf("power handler: got %v", power)
	}
	if len(control) != 1 || control[0] != "5" {
		t.Errorf("control handler: got %v", control)
	}
}

package mqtt

import (
	"errors"
	"strconv"
	"testing"
)

func TestFakeRemotePublish(t *testing.T) {
	f := NewFakeRemote()

	if err := f.Publish(LevelChannel(0), On); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Published) != 1 {
		t.Fatalf("expected 1 publication, got %d", len(f.Published))
	}
	if f.Published[0] != (Publication{Channel: LevelChannel(0), Payload: "1"}) {
		t.Errorf("unexpected publication: %+v", f.Published[0])
	}
}

func TestFakeRemotePublishError(t *testing.T) {
	f := NewFakeRemote()
	f.PublishError = errors.New("simulated error")

	if err := f.Publish(ChannelPower, Off); err == nil {
		t.Error("expected error")
	}
	if len(f.Published) != 0 {
		t.Errorf("expected no publications recorded on error, got %d", len(f.Published))
	}
}

func TestFakeRemotePublishAfterClose(t *testing.T) {
	f := NewFakeRemote()
	f.Close()

	err := f.Publish(ChannelPower, Off)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if f.IsConnected() {
		t.Error("should not be connected after Close()")
	}
}

func TestFakeRemoteDeliverAndPoll(t *testing.T) {
	f := NewFakeRemote()

	var got []string
	f.Subscribe(ChannelControl, func(m Message) { got = append(got, string(m.Payload)) })

	f.Deliver(ChannelControl, "5")
	f.Deliver(ChannelControl, "13")
	if f.Pending() != 2 {
		t.Errorf("pending: got %d, want 2", f.Pending())
	}

	if n := f.Poll(); n != 2 {
		t.Errorf("Poll: got %d, want 2", n)
	}
	if len(got) != 2 || got[0] != "5" || got[1] != "13" {
		t.Errorf("handled: got %v", got)
	}
	if n := f.Poll(); n != 0 {
		t.Errorf("second Poll: got %d, want 0", n)
	}
	if len(f.Subscribed) != 1 || f.Subscribed[0] != ChannelControl {
		t.Errorf("subscribed: got %v", f.Subscribed)
	}
}

func TestFakeRemoteReset(t *testing.T) {
	f := NewFakeRemote()
	f.Publish(ChannelPower, On)
	f.Close()
	f.PublishError = errors.New("error")

	f.Reset()

	if len(f.Published) != 0 {
		t.Error("publications should be cleared")
	}
	if f.Closed {
		t.Error("closed should be reset")
	}
	if f.PublishError != nil {
		t.Error("error should be cleared")
	}
	if !f.IsConnected() {
		t.Error("should be connected after reset")
	}
}

func TestFakeRemoteDropsOldestOnOverflow(t *testing.T) {
	f := NewFakeRemote()
	var got []string
	f.Subscribe(ChannelControl, func(m Message) { got = append(got, string(m.Payload)) })

	for i := 0; i < DefaultInboxSize+2; i++ {
		f.Deliver(ChannelControl, strconv.Itoa(i))
	}

	if f.Dropped() != 2 {
		t.Errorf("dropped: got %d, want 2", f.Dropped())
	}
	if n := f.Poll(); n != DefaultInboxSize {
		t.Fatalf("poll: got %d, want %d", n, DefaultInboxSize)
	}
	if got[0] != "2" {
		t.Errorf("first delivered: got %s, want 2", got[0])
	}
}

package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cargolink/freight-backend/internal/service"
)

func newHubClient(uid string) *Client {
	return &Client{
		send:         make(chan []byte, 8),
		uid:          uid,
		personalRoom: service.UserRoom(uid),
		rooms:        make(map[string]bool),
	}
}

func recv(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatalf("no payload delivered to %s", c.uid)
		return Envelope{}
	}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected payload for %s: %s", c.uid, raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReachesPersonalRoom(t *testing.T) {
	h := NewHub(nil)
	alice := newHubClient("alice")
	bob := newHubClient("bob")
	h.RegisterClient(alice)
	h.RegisterClient(bob)

	h.Publish(service.EventThreadListUpdated, map[string]int{"n": 1}, service.UserRoom("alice"))

	env := recv(t, alice)
	if env.Event != service.EventThreadListUpdated {
		t.Fatalf("event = %q", env.Event)
	}
	expectSilence(t, bob)
}

func TestPublishReachesThreadSubscribers(t *testing.T) {
	h := NewHub(nil)
	alice := newHubClient("alice")
	bob := newHubClient("bob")
	carol := newHubClient("carol")
	for _, c := range []*Client{alice, bob, carol} {
		h.RegisterClient(c)
	}
	room := service.ThreadRoom(7)
	h.Subscribe(alice, room)
	h.Subscribe(bob, room)

	h.Publish(service.EventMessageCreated, map[string]string{"body": "hi"}, room)

	for _, c := range []*Client{alice, bob} {
		if env := recv(t, c); env.Event != service.EventMessageCreated {
			t.Fatalf("event for %s = %q", c.uid, env.Event)
		}
	}
	expectSilence(t, carol)
}

func TestPublishToEmptyRoomIsDropped(t *testing.T) {
	h := NewHub(nil)
	// Nobody is connected; this must simply not block or panic.
	h.Publish(service.EventMessageCreated, "x", service.ThreadRoom(1), service.UserRoom("ghost"))
}

func TestUnregisterLeavesAllRooms(t *testing.T) {
	h := NewHub(nil)
	alice := newHubClient("alice")
	h.RegisterClient(alice)
	room := service.ThreadRoom(3)
	h.Subscribe(alice, room)

	h.UnregisterClient(alice)

	// The send channel closes on unregister.
	select {
	case _, ok := <-alice.send:
		if ok {
			t.Fatalf("got payload instead of close")
		}
	case <-time.After(time.Second):
		t.Fatalf("send channel not closed")
	}

	h.Publish(service.EventMessageCreated, "late", room, alice.personalRoom)
	// Delivery to the departed client would panic on the closed channel;
	// give the hub loop a moment to prove it does not.
	time.Sleep(50 * time.Millisecond)
}

func TestSlowConsumerIsDroppedFromRoom(t *testing.T) {
	h := NewHub(nil)
	slow := &Client{
		send:         make(chan []byte), // unbuffered and never read
		uid:          "slow",
		personalRoom: service.UserRoom("slow"),
		rooms:        make(map[string]bool),
	}
	fast := newHubClient("fast")
	h.RegisterClient(slow)
	h.RegisterClient(fast)
	room := service.ThreadRoom(11)
	h.Subscribe(slow, room)
	h.Subscribe(fast, room)

	h.Publish(service.EventMessageCreated, "first", room)
	if env := recv(t, fast); env.Event != service.EventMessageCreated {
		t.Fatalf("fast client missed the event")
	}

	// The slow client was evicted from the room; the fast one still gets
	// subsequent events.
	h.Publish(service.EventMessageCreated, "second", room)
	if env := recv(t, fast); env.Event != service.EventMessageCreated {
		t.Fatalf("fast client missed the second event")
	}
}

package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire shape of every fanout event.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type outbound struct {
	room    string
	payload []byte
}

// Hub routes payloads to the clients subscribed to each room. Rooms are
// plain strings ("user:<uid>", "thread:<id>"). With a redis client the hub
// also bridges through pub/sub so several instances fan out consistently;
// without one it is purely in-process.
type Hub struct {
	rdb *redis.Client

	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan outbound
}

type subscription struct {
	client *Client
	room   string
}

func NewHub(rdb *redis.Client) *Hub {
	h := &Hub{
		rdb:        rdb,
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		broadcast:  make(chan outbound, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	if h.rdb != nil {
		pubsub := h.rdb.PSubscribe(context.Background(), "user:*", "thread:*")
		ch := pubsub.Channel()
		go func() {
			for msg := range ch {
				h.broadcast <- outbound{room: msg.Channel, payload: []byte(msg.Payload)}
			}
		}()
	}

	for {
		select {
		case c := <-h.register:
			h.join(c, c.personalRoom)
		case c := <-h.unregister:
			for room := range c.rooms {
				h.leave(c, room)
			}
			close(c.send)
		case sub := <-h.subscribe:
			h.join(sub.client, sub.room)
		case out := <-h.broadcast:
			h.deliver(out.room, out.payload)
		}
	}
}

func (h *Hub) join(c *Client, room string) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	c.rooms[room] = true
}

func (h *Hub) leave(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (h *Hub) deliver(room string, payload []byte) {
	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the connection rather than block the hub.
			h.leave(c, room)
		}
	}
}

// Publish marshals the event and enqueues it for each room without
// blocking. If no connection is subscribed to a room the event is dropped;
// a full broadcast buffer drops it too, logged.
func (h *Hub) Publish(event string, payload interface{}, rooms ...string) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("fanout marshal %s failed: %v", event, err)
		return
	}
	for _, room := range rooms {
		if h.rdb != nil {
			if err := h.rdb.Publish(context.Background(), room, string(data)).Err(); err != nil {
				log.Printf("fanout publish %s to %s failed: %v", event, room, err)
			}
			continue
		}
		select {
		case h.broadcast <- outbound{room: room, payload: data}:
		default:
			log.Printf("fanout buffer full; dropping %s for %s", event, room)
		}
	}
}

// RegisterClient attaches a connection and joins its personal room.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Subscribe joins an extra room; access checks happen before calling this.
func (h *Hub) Subscribe(c *Client, room string) {
	h.subscribe <- subscription{client: c, room: room}
}

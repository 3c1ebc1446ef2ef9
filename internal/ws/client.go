package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/cargolink/freight-backend/internal/service"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	uid          string
	personalRoom string
	rooms        map[string]bool

	messaging service.MessagingService
}

// inboundEnvelope is the only client-to-server shape the hub understands:
// room subscription requests. Messages themselves go through the HTTP API.
type inboundEnvelope struct {
	Action   string `json:"action"`
	ThreadID uint64 `json:"threadId"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.send <- []byte(`{"event":"error","data":"invalid_json"}`)
			continue
		}
		switch env.Action {
		case "subscribe":
			if env.ThreadID == 0 {
				c.send <- []byte(`{"event":"error","data":"missing_thread_id"}`)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := c.messaging.VerifyParticipant(ctx, env.ThreadID, c.uid)
			cancel()
			if err != nil {
				c.send <- []byte(`{"event":"error","data":"not_a_participant"}`)
				continue
			}
			c.hub.Subscribe(c, service.ThreadRoom(env.ThreadID))
		default:
			c.send <- []byte(`{"event":"error","data":"unsupported_action"}`)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker((pongWait * 9) / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) serve() {
	go c.writePump()
	c.readPump()
	log.Printf("ws client %s disconnected", c.uid)
}

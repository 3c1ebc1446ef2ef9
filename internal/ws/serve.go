package ws

import (
	"log"
	"net/http"

	"github.com/cargolink/freight-backend/internal/service"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the connection for an already-authenticated request (the
// auth middleware put the uid in context), registers the client in its
// personal room, and starts the pumps.
func ServeWS(h *Hub, messaging service.MessagingService, c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return nil
	}
	client := &Client{
		hub:          h,
		conn:         conn,
		send:         make(chan []byte, 256),
		uid:          uid,
		personalRoom: service.UserRoom(uid),
		rooms:        make(map[string]bool),
		messaging:    messaging,
	}
	h.RegisterClient(client)
	go client.serve()
	return nil
}

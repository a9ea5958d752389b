package ws

import (
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// pingInterval is how often liveness is checked; a client that has not
// answered the previous ping by the next tick is dropped. A variable so
// tests can tighten the loop.
var pingInterval = 10 * time.Second

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the relay carries no job state, so any origin may connect
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected websocket peer.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	alive atomic.Bool
}

// trySend queues a frame without blocking the hub loop.
func (c *Client) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ServeWS upgrades the request and wires the connection into the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	c := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer)}
	c.alive.Store(true)
	hub.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump relays inbound frames to the hub until the connection dies.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.hub.inbound <- inboundMessage{from: c, data: data}
	}
}

// writePump owns all writes to the connection: queued frames plus the
// periodic liveness ping. A client that failed to pong since the previous
// tick is closed before a new ping goes out.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if !c.alive.Load() {
				return
			}
			c.alive.Store(false)
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

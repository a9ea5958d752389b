package ws

import (
	"encoding/json"
	"fmt"
	"log"
)

// Hub is a best-effort broadcast fan-out for connected dashboard clients.
// It has no knowledge of analysis jobs and is not the channel of record for
// job state; polling the job endpoint is authoritative.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage
	clients    map[*Client]bool
}

type inboundMessage struct {
	from *Client
	data []byte
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundMessage),
		clients:    make(map[*Client]bool),
	}
}

// Run processes registrations and relays messages. Call once, on its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			log.Printf("ws: client connected (total=%d)", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Printf("ws: client disconnected (total=%d)", len(h.clients))
			}

		case msg := <-h.inbound:
			h.route(msg)
		}
	}
}

// route forwards a valid envelope to every client except the sender; a
// malformed one earns the sender an error frame and is not broadcast.
// Frames from a client no longer in the map are ignored: its read loop can
// still deliver after a slow-consumer drop closed the send channel, and
// replying then would be a send on a closed channel.
func (h *Hub) route(msg inboundMessage) {
	if _, ok := h.clients[msg.from]; !ok {
		return
	}

	if err := validateEnvelope(msg.data); err != nil {
		errFrame, _ := json.Marshal(map[string]string{
			"type":    "error",
			"message": err.Error(),
		})
		msg.from.trySend(errFrame)
		return
	}

	for c := range h.clients {
		if c == msg.from {
			continue
		}
		if !c.trySend(msg.data) {
			// slow consumer: drop it rather than stall the hub
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// validateEnvelope requires valid JSON with a string "type" discriminator.
// No further schema is enforced.
func validateEnvelope(data []byte) error {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("message is not valid JSON")
	}
	if envelope.Type == "" {
		return fmt.Errorf("message is missing a type field")
	}
	return nil
}

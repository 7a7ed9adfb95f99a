// Package websocket pushes session events to every open console tab so a
// login or logout in one tab is reflected in the others.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"kiva-console/internal/event"
)

type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	bus event.Bus

	// snapshot, when set, produces the greeting sent to a new client.
	snapshot func() event.Event
}

func NewHub(bus event.Bus, snapshot func() event.Event) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		bus:        bus,
		snapshot:   snapshot,
	}
}

// Run fans bus events out to clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	defer func() {
		close(h.done)
		for client := range h.clients {
			delete(h.clients, client)
			close(client.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			if h.snapshot != nil {
				if message, err := json.Marshal(h.snapshot()); err == nil {
					h.deliver(client, message)
				}
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "type", e.Type, "error", err)
				continue
			}
			for client := range h.clients {
				h.deliver(client, message)
			}
		}
	}
}

// deliver drops a client whose buffer is full.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent marshals payload into an Event of the given type.
func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}

// branchEvent routes an event. hqOnly events skip branch rooms.
type branchEvent struct {
	BranchID int64
	HQOnly   bool
	Event    Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Branch clients join the room of their branch; HQ clients receive every event.
type Hub struct {
	// Registered clients by branch ID
	rooms map[int64]map[*Client]bool

	// Clients following every branch
	hq map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *branchEvent

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex

	log *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		hq:         make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *branchEvent, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if client.hq {
				h.hq[client] = true
			} else {
				if h.rooms[client.branchID] == nil {
					h.rooms[client.branchID] = make(map[*Client]bool)
				}
				h.rooms[client.branchID][client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.log.WithError(err).WithField("type", event.Event.Type).Error("marshal websocket event")
				continue
			}

			h.mu.Lock()
			if !event.HQOnly {
				for client := range h.rooms[event.BranchID] {
					h.send(client, message)
				}
			}
			for client := range h.hq {
				h.send(client, message)
			}
			h.mu.Unlock()
		}
	}
}

// send must be called with h.mu held.
func (h *Hub) send(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		// Client's send buffer is full, close and unregister
		h.remove(client)
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	if client.hq {
		if h.hq[client] {
			delete(h.hq, client)
			close(client.send)
		}
		return
	}
	clients, ok := h.rooms[client.branchID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	// Clean up empty rooms
	if len(clients) == 0 {
		delete(h.rooms, client.branchID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.remove(client)
		}
	}
	for client := range h.hq {
		h.remove(client)
	}
}

// Register adds client and reports false once the hub has stopped, in
// which case the caller owns the connection and must close it.
func (h *Hub) Register(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Stopped reports whether Run has returned.
func (h *Hub) Stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Unregister removes client unless the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToBranch sends an event to the branch room and to HQ clients.
// Events are dropped when the queue is full so callers never block.
func (h *Hub) BroadcastToBranch(branchID int64, event Event) {
	h.enqueue(&branchEvent{BranchID: branchID, Event: event})
}

// BroadcastToHQ sends an event to HQ clients only.
func (h *Hub) BroadcastToHQ(event Event) {
	h.enqueue(&branchEvent{HQOnly: true, Event: event})
}

func (h *Hub) enqueue(e *branchEvent) {
	select {
	case h.broadcast <- e:
	default:
		h.log.WithFields(logrus.Fields{"type": e.Event.Type, "branch_id": e.BranchID}).Warn("websocket queue full, event dropped")
	}
}

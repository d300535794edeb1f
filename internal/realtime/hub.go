package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// EventNotification is pushed whenever a notification is created for the
// connected user; payload carries the notification and the new unread count.
const EventNotification = "notification"

// Event is the wire format pushed to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// push pairs a target user with a serialized event.
type push struct {
	userID int64
	data   []byte
}

// Hub tracks websocket clients per user and fans events out to them.
// One user can hold several connections (multiple tabs); all state is owned
// by the Run goroutine, reached only through channels.
type Hub struct {
	clients map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	pushes     chan push

	// done is closed when Run exits so pumps attached to a stopped hub
	// never block on register/unregister.
	done chan struct{}

	wg sync.WaitGroup
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		pushes:     make(chan push, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the client maps until ctx is canceled, then closes every
// client's send channel so write pumps drain and exit.
func (h *Hub) Run(ctx context.Context) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.clients {
				for client := range conns {
					close(client.send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			return

		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			log.Printf("[Hub] client connected: user=%d connections=%d",
				client.userID, len(h.clients[client.userID]))

		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if conns[client] {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}

		case p := <-h.pushes:
			for client := range h.clients[p.userID] {
				select {
				case client.send <- p.data:
				default:
					// Slow consumer: drop the connection rather than block the hub
					delete(h.clients[p.userID], client)
					close(client.send)
				}
			}
		}
	}
}

// Wait blocks until Run has exited.
func (h *Hub) Wait() {
	h.wg.Wait()
}

// Push sends an event to all of the user's connections. Safe to call from
// any goroutine; drops the event if the hub's buffer is full (the client
// will reconcile on the next notifications poll).
func (h *Hub) Push(userID int64, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Hub] marshal event failed: %v", err)
		return
	}

	select {
	case h.pushes <- push{userID: userID, data: data}:
	default:
		log.Printf("[Hub] push buffer full, dropping event for user=%d", userID)
	}
}

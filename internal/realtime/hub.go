package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkashyap/taskhub-backend/internal/logger"
)

type Event string

const (
	// EventNotification is pushed to a user's room when a task is
	// assigned to them.
	EventNotification Event = "notification"
)

// Message targets a single room. Rooms are named by user identifier;
// every live connection for that user receives the message.
type Message struct {
	Room  string `json:"room"`
	Event Event  `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub is the process-wide connection registry. Membership is removed on
// disconnect; there is no persistence and delivery is at-most-once.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "RealtimeHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (hub *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Rooms:    make(map[string]bool),
		Outbound: make(chan Message, 10),
		done:     make(chan struct{}),
	}
}

func (hub *Hub) Join(client *Client, room string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	room = strings.TrimSpace(room)
	if room == "" {
		return
	}

	client.Rooms[room] = true

	clients, exists := hub.subscriptions[room]
	if !exists {
		clients = make(map[*Client]bool)
		hub.subscriptions[room] = clients
	}
	clients[client] = true

	hub.log.Debug("Realtime client joined room", "clientID", client.ID, "room", room)
}

func (hub *Hub) Leave(client *Client, room string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	room = strings.TrimSpace(room)
	if room == "" {
		return
	}
	delete(client.Rooms, room)

	if members, ok := hub.subscriptions[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(hub.subscriptions, room)
		}
	}
	hub.log.Debug("Realtime client left room", "clientID", client.ID, "room", room)
}

func (hub *Hub) RemoveClient(client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for room := range client.Rooms {
		if members, ok := hub.subscriptions[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(hub.subscriptions, room)
			}
		}
	}
	client.Rooms = make(map[string]bool)
	hub.log.Debug("Realtime client removed from all rooms", "clientID", client.ID)
}

// Broadcast fans msg out to every connection in its room. An empty room
// drops the message; a full client buffer drops it for that client only.
func (hub *Hub) Broadcast(msg Message) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Room == "" {
		return
	}
	members, ok := hub.subscriptions[msg.Room]
	if !ok {
		return
	}
	for c := range members {
		select {
		case c.Outbound <- msg:
		default:
			hub.log.Warn("Dropping realtime message; outbound buffer full", "clientID", c.ID, "room", msg.Room)
		}
	}
}

func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			hub.log.Debug("Realtime client context done", "clientID", client.ID, "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			payload, err := json.Marshal(msg.Data)
			if err != nil {
				hub.log.Warn("Failed to marshal realtime message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\n", msg.Event)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (hub *Hub) CloseClient(client *Client) {
	client.closeOnce.Do(func() {
		close(client.done)
		hub.RemoveClient(client)
		close(client.Outbound)
	})
}

package broadcast

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Sink is the write side of one client connection. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type Sink interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client pairs a sink with the mutex that serializes writes to it. The
// websocket contract allows only one concurrent writer per connection,
// and event consumers fan out from independent subscriptions.
type client struct {
	mu   sync.Mutex
	sink Sink
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink.WriteMessage(websocket.TextMessage, data)
}

func (c *client) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink.Close()
}

// Hub is the transport-side connection table and room index. Rooms have no
// independent existence: a room is the set of connection ids currently
// joined to it, created on first join and dropped when the last member
// leaves.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client         // connID -> write side
	rooms   map[string]map[string]bool // room -> set of connIDs
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]bool),
	}
}

// Register adds a connection's write sink. The connection belongs to no
// room until a join moves it into one.
func (h *Hub) Register(connID string, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[connID] = &client{sink: sink}
}

// Unregister removes a connection from the client table and from any room
// it joined. Subsequent broadcasts can no longer reach it.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[connID]; !ok {
		return
	}
	delete(h.clients, connID)
	for room, members := range h.rooms {
		if members[connID] {
			h.dropMember(room, connID)
		}
	}
}

// Join adds a connection to a room group. Joining the same room twice is a
// no-op; the set keeps membership idempotent.
func (h *Hub) Join(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[connID]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][connID] = true
}

// Leave removes a connection from a room group.
func (h *Hub) Leave(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropMember(room, connID)
}

// dropMember removes a connection from a room and deletes the room when it
// empties. Callers hold the write lock.
func (h *Hub) dropMember(room, connID string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast writes data to every current member of the room except
// excludeID. The recipient set is snapshotted under the read lock and
// each write happens under that connection's write mutex, so concurrent
// broadcasts never overlap on one connection. Delivery is best-effort:
// a failed write is logged and the remaining recipients still get the
// frame.
func (h *Hub) Broadcast(room, excludeID string, data []byte) {
	type recipient struct {
		connID string
		client *client
	}

	h.mu.RLock()
	members := h.rooms[room]
	recipients := make([]recipient, 0, len(members))
	for connID := range members {
		if connID == excludeID {
			continue
		}
		if c, ok := h.clients[connID]; ok {
			recipients = append(recipients, recipient{connID, c})
		}
	}
	h.mu.RUnlock()

	for _, r := range recipients {
		if err := r.client.write(data); err != nil {
			log.Printf("[hub] Failed to send to client %s: %v", r.connID, err)
		}
	}
}

// Members returns the connection ids currently joined to a room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(members))
	for connID := range members {
		ids = append(ids, connID)
	}
	return ids
}

// ClientCount returns the total number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// CloseAll closes every registered connection and clears all state. Used
// during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for connID, c := range h.clients {
		if err := c.close(); err != nil {
			log.Printf("[hub] Error closing client %s: %v", connID, err)
		}
	}
	h.clients = make(map[string]*client)
	h.rooms = make(map[string]map[string]bool)
}

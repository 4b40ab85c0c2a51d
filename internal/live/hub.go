package live

import (
	"sync"
	"time"
)

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

const (
	MessageTodayShoots    = "today.shoots"
	MessageBookingChanged = "booking.changed"
)

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

type client struct {
	conn Conn
	wait time.Duration
	mu   sync.Mutex
}

// write gives up after c.wait so a stalled peer cannot hold the caller.
func (c *client) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.wait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Hub tracks the open dashboard connections of each operator. An operator may
// have several (one per open tab).
type Hub struct {
	connections map[string]map[*client]struct{}
	mutex       sync.RWMutex
	writeWait   time.Duration
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*client]struct{}),
		writeWait:   writeWait,
	}
}

// Register adds conn for the operator and returns the function that removes
// and closes it.
func (h *Hub) Register(operatorID string, conn Conn) func() {
	c := &client{conn: conn, wait: h.writeWait}

	h.mutex.Lock()
	if h.connections[operatorID] == nil {
		h.connections[operatorID] = make(map[*client]struct{})
	}
	h.connections[operatorID][c] = struct{}{}
	h.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(operatorID, c) })
	}
}

func (h *Hub) remove(operatorID string, c *client) {
	h.mutex.Lock()
	set := h.connections[operatorID]
	if _, ok := set[c]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.connections, operatorID)
		}
	}
	h.mutex.Unlock()
	_ = c.conn.Close()
}

// SendToOperator writes message to every connection of the operator and
// returns how many accepted it. Connections that fail are dropped.
func (h *Hub) SendToOperator(operatorID string, message interface{}) int {
	h.mutex.RLock()
	clients := make([]*client, 0, len(h.connections[operatorID]))
	for c := range h.connections[operatorID] {
		clients = append(clients, c)
	}
	h.mutex.RUnlock()

	delivered := 0
	for _, c := range clients {
		if err := c.write(message); err != nil {
			h.remove(operatorID, c)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) IsOnline(operatorID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections[operatorID]) > 0
}

// Operators returns the ids of operators with at least one open connection.
func (h *Hub) Operators() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	out := make([]string, 0, len(h.connections))
	for id := range h.connections {
		out = append(out, id)
	}
	return out
}

func (h *Hub) GetOnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for _, set := range h.connections {
		n += len(set)
	}
	return n
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for operatorID, set := range h.connections {
		for c := range set {
			_ = c.conn.Close()
		}
		delete(h.connections, operatorID)
	}
}

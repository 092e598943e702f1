package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dineflow/pos-backend/utils"
)

// Subscription describes what one websocket client wants to see. Zero
// values mean "no filter" for that dimension.
type Subscription struct {
	OutletID uint
	FloorID  uint
	Station  string
	Role     string
}

// Hub fans events out to the websocket clients of this process: kitchen
// displays, waiter terminals and cashier dashboards.
type Hub struct {
	clients map[*websocket.Conn]Subscription
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]Subscription)}
}

// Register adds a connection with its subscription.
func (h *Hub) Register(conn *websocket.Conn, sub Subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = sub
}

// Unregister drops a connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// Broadcast delivers the event to every matching client. Write failures are
// logged and skipped; a stuck display must never affect the caller.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		utils.ErrorLogger.Printf("realtime: marshal event %s: %v", event.Type, err)
		return
	}
	h.BroadcastRaw(event, data)
}

// BroadcastRaw delivers an already marshaled event; used by the broker relay
// so cross-instance payloads are forwarded byte for byte.
func (h *Hub) BroadcastRaw(event Event, data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, sub := range h.clients {
		if !matches(sub, event) {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("realtime: send %s to client: %v", event.Type, err)
		}
	}
}

func matches(sub Subscription, event Event) bool {
	if sub.OutletID != 0 && event.OutletID != 0 && sub.OutletID != event.OutletID {
		return false
	}
	if sub.FloorID != 0 && event.FloorID != 0 && sub.FloorID != event.FloorID {
		return false
	}
	if sub.Station != "" && event.Station != "" && sub.Station != event.Station {
		return false
	}
	if event.Role != "" && sub.Role != "" && sub.Role != event.Role && sub.Role != "admin" {
		return false
	}
	return true
}

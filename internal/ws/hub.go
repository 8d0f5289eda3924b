package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"
)

// Event is one machine-monitor message: stock movements, sales, and
// payment confirmations are streamed to connected dashboard clients.
type Event struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

const (
	EventStockUpdate = "stock_update"
	EventSale        = "sale"
	EventPayment     = "payment"
)

type Hub struct {
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	events     chan Event
	clients    map[*websocket.Conn]bool
	mutex      sync.Mutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		events:     make(chan Event, 16),
		clients:    make(map[*websocket.Conn]bool),
		log:        log.With().Str("component", "ws").Logger(),
	}
}

// Publish queues an event for broadcast without blocking the caller; a
// full buffer drops the event, the monitor feed is best effort.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	select {
	case h.events <- event:
	default:
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug().Msg("monitor client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case event := <-h.events:
			msg, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

package ws

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	EventOrderCreated = "order_created"
	EventOrderStatus  = "order_status_changed"
	EventOrderSettled = "order_settled"
)

// OrderEvent is one change pushed from the order repository to every
// terminal (and in-process session) watching the venue.
type OrderEvent struct {
	Kind    string `json:"kind"`
	VenueID uint   `json:"venueId"`
	TableID uint   `json:"tableId"`
	OrderID uint   `json:"orderId"`
	Status  string `json:"status"`
}

// OrderHub fans order events out to websocket terminals and to in-process
// subscribers (the lifecycle sessions). venueID 0 subscribes to everything.
type OrderHub struct {
	clients    map[uint]map[*websocket.Conn]bool // venueID -> terminal conns
	broadcast  chan OrderEvent
	register   chan subscription
	unregister chan subscription
	mu         sync.Mutex

	localMu sync.Mutex
	locals  map[chan OrderEvent]uint // subscriber -> venue filter
}

type subscription struct {
	Conn    *websocket.Conn
	VenueID uint
}

func NewOrderHub() *OrderHub {
	return &OrderHub{
		clients:    make(map[uint]map[*websocket.Conn]bool),
		broadcast:  make(chan OrderEvent, 64),
		register:   make(chan subscription),
		unregister: make(chan subscription),
		locals:     make(map[chan OrderEvent]uint),
	}
}

func (h *OrderHub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if h.clients[sub.VenueID] == nil {
				h.clients[sub.VenueID] = make(map[*websocket.Conn]bool)
			}
			h.clients[sub.VenueID][sub.Conn] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[sub.VenueID][sub.Conn]; ok {
				delete(h.clients[sub.VenueID], sub.Conn)
				sub.Conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients[ev.VenueID] {
				if err := conn.WriteJSON(ev); err != nil {
					log.Printf("ws write error: %v", err)
					conn.Close()
					delete(h.clients[ev.VenueID], conn)
				}
			}
			h.mu.Unlock()

			h.localMu.Lock()
			for ch, venueID := range h.locals {
				if venueID != 0 && venueID != ev.VenueID {
					continue
				}
				select {
				case ch <- ev:
				default:
					// slow subscriber; it will re-read a snapshot anyway
				}
			}
			h.localMu.Unlock()
		}
	}
}

// Publish hands an event to the fan-out loop. Non-blocking for callers on
// the write path.
func (h *OrderHub) Publish(ev OrderEvent) {
	select {
	case h.broadcast <- ev:
	default:
		go func() { h.broadcast <- ev }()
	}
}

// Subscribe registers an in-process listener. The returned func drops it.
func (h *OrderHub) Subscribe(venueID uint) (<-chan OrderEvent, func()) {
	ch := make(chan OrderEvent, 16)
	h.localMu.Lock()
	h.locals[ch] = venueID
	h.localMu.Unlock()
	return ch, func() {
		h.localMu.Lock()
		delete(h.locals, ch)
		h.localMu.Unlock()
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades /ws/orders/:venueId for a staff terminal. Auth
// ran in WSAuthMiddleware before this point.
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	venueID64, err := strconv.ParseUint(c.Param("venueId"), 10, 32)
	if err != nil || venueID64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid venue"})
		return
	}
	venueID := uint(venueID64)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	sub := subscription{Conn: conn, VenueID: venueID}
	h.register <- sub

	go h.drain(sub)
}

// drain keeps the read side alive; terminals only listen on this socket,
// so anything received besides close/ping is ignored.
func (h *OrderHub) drain(sub subscription) {
	defer func() { h.unregister <- sub }()
	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Package realtime is the WebSocket layer: one hub, booking rooms, and
// per-user presence. Events that mutate state (messages, check-ins, SOS)
// are persisted by their services before they are broadcast; everything
// the hub relays directly (typing, location shares) is transient.
package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is the wire envelope for every hub message, both directions.
type Event struct {
	Type      string      `json:"type"`
	BookingID string      `json:"bookingId,omitempty"`
	SenderID  string      `json:"senderId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client event types.
const (
	EventJoinBooking   = "join-booking"
	EventLeaveBooking  = "leave-booking"
	EventSendMessage   = "send-message"
	EventShareLocation = "share-location"
	EventCheckIn       = "check-in"
	EventSOS           = "sos"
	EventTyping        = "typing"
)

// Server event types.
const (
	EventNewMessage     = "new-message"
	EventLocationUpdate = "location-update"
	EventCheckInAlert   = "check-in-alert"
	EventSOSAlert       = "sos-alert"
	EventUserTyping     = "user-typing"
	EventPresence       = "presence"
	EventError          = "error"
)

type broadcastReq struct {
	bookingID string
	exclude   string
	event     Event
}

// Hub routes events between connected clients. A single run loop owns
// all room membership, so events within one room keep their send order.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Client]bool // bookingID -> members
	users      map[string][]*Client        // userID -> connections
	register   chan *Client
	unregister chan *Client
	join       chan roomReq
	leave      chan roomReq
	broadcast  chan broadcastReq
	done       chan struct{}
	logger     *zap.Logger
}

type roomReq struct {
	client    *Client
	bookingID string
}

// NewHub builds a hub; call Run on its own goroutine before serving
// connections.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		users:      make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan roomReq),
		leave:      make(chan roomReq),
		broadcast:  make(chan broadcastReq, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes hub events until Stop. Membership and broadcasts all
// flow through here.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.users[c.userID] = append(h.users[c.userID], c)
			h.mu.Unlock()
			h.logger.Debug("client connected", zap.String("userID", c.userID))

		case c := <-h.unregister:
			h.dropClient(c)

		case r := <-h.join:
			h.mu.Lock()
			if h.rooms[r.bookingID] == nil {
				h.rooms[r.bookingID] = make(map[*Client]bool)
			}
			h.rooms[r.bookingID][r.client] = true
			h.mu.Unlock()

		case r := <-h.leave:
			h.mu.Lock()
			if members := h.rooms[r.bookingID]; members != nil {
				delete(members, r.client)
				if len(members) == 0 {
					delete(h.rooms, r.bookingID)
				}
			}
			h.mu.Unlock()

		case req := <-h.broadcast:
			h.mu.RLock()
			for c := range h.rooms[req.bookingID] {
				if c.userID == req.exclude {
					continue
				}
				c.send(req.event)
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Stop terminates the run loop.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) dropClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.users[c.userID]
	for i, other := range conns {
		if other == c {
			h.users[c.userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.users[c.userID]) == 0 {
		delete(h.users, c.userID)
	}
	for bookingID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, bookingID)
		}
	}
	c.closeOutbound()
	h.logger.Debug("client disconnected", zap.String("userID", c.userID))
}

// BroadcastToBooking sends an event to every room member except the
// excluded user. It never blocks the caller.
func (h *Hub) BroadcastToBooking(bookingID, event string, payload interface{}, excludeUserID string) {
	ev := Event{
		Type:      event,
		BookingID: bookingID,
		SenderID:  excludeUserID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- broadcastReq{bookingID: bookingID, exclude: excludeUserID, event: ev}:
	default:
		h.logger.Warn("broadcast queue full, dropping event",
			zap.String("bookingID", bookingID),
			zap.String("event", event))
	}
}

// SendToUser delivers an event to every live connection of one user.
func (h *Hub) SendToUser(userID, event string, payload interface{}) {
	ev := Event{Type: event, Payload: payload, Timestamp: time.Now()}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.users[userID] {
		c.send(ev)
	}
}

// InRoom reports whether the client is a current member of the booking
// room. Membership is only granted through an authorized join.
func (h *Hub) InRoom(c *Client, bookingID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[bookingID][c]
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

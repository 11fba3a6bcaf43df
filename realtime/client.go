package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"solace/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 8 * 1024
)

// Client is one WebSocket connection bound to an authenticated user.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   string
	outbound chan Event

	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		outbound: make(chan Event, 64),
	}
}

// send queues an event for delivery, dropping it if the client's buffer
// is full or the connection is closing.
func (c *Client) send(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.outbound <- ev:
	default:
	}
}

func (c *Client) closeOutbound() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.outbound)
	}
}

// writePump drains outbound events to the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.outbound:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// inboundEvent is what clients send us. Payload stays raw until the
// event type determines its shape.
type inboundEvent struct {
	Type      string          `json:"type"`
	BookingID string          `json:"bookingId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type messagePayload struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

type locationPayload struct {
	Location models.LatLng `json:"location"`
}

type checkInPayload struct {
	Type     string         `json:"type,omitempty"`
	Location *models.LatLng `json:"location,omitempty"`
	Notes    string         `json:"notes,omitempty"`
}

// readPump consumes inbound events until the connection drops, routing
// each through the gateway's services.
func (c *Client) readPump(g *Gateway) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var ev inboundEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.Logger.Debug("websocket read error",
					zap.String("userID", c.userID), zap.Error(err))
			}
			return
		}
		g.dispatch(c, ev)
	}
}

package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"solace/services/chat"
	"solace/services/safety"
	"solace/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Authorizer reports whether a user may join a booking room. The HTTP
// layer wires this to the booking participant check.
type Authorizer func(ctx context.Context, userID, bookingID string) bool

// Gateway upgrades HTTP connections and routes client events into the
// chat and safety services.
type Gateway struct {
	Hub       *Hub
	Chat      chat.ChatService
	Safety    safety.SafetyService
	Authorize Authorizer
	Logger    *zap.Logger

	upgrader websocket.Upgrader
}

// NewGateway wires the event routing for the hub.
func NewGateway(hub *Hub, chatSvc chat.ChatService, safetySvc safety.SafetyService, authorize Authorizer, logger *zap.Logger) *Gateway {
	return &Gateway{
		Hub:       hub,
		Chat:      chatSvc,
		Safety:    safetySvc,
		Authorize: authorize,
		Logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS is the gin handler for /ws. Authentication comes from the
// token query parameter so browser clients can connect without headers.
func (g *Gateway) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, _, err := utils.ExtractClaimsFromToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.Logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(g.Hub, conn, userID)
	g.Hub.register <- client

	go client.writePump()
	go client.readPump(g)
}

// dispatch routes one inbound client event.
func (g *Gateway) dispatch(c *Client, ev inboundEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev.Type {
	case EventJoinBooking:
		if ev.BookingID == "" || !g.Authorize(ctx, c.userID, ev.BookingID) {
			c.send(Event{Type: EventError, BookingID: ev.BookingID,
				Payload: gin.H{"message": "cannot join booking"}, Timestamp: time.Now()})
			return
		}
		g.Hub.join <- roomReq{client: c, bookingID: ev.BookingID}
		g.Hub.BroadcastToBooking(ev.BookingID, EventPresence,
			gin.H{"userId": c.userID, "online": true}, c.userID)

	case EventLeaveBooking:
		if ev.BookingID != "" {
			g.Hub.leave <- roomReq{client: c, bookingID: ev.BookingID}
			g.Hub.BroadcastToBooking(ev.BookingID, EventPresence,
				gin.H{"userId": c.userID, "online": false}, c.userID)
		}

	case EventSendMessage:
		var p messagePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		// Persisted then broadcast by the chat service.
		if _, err := g.Chat.SendMessage(ctx, c.userID, ev.BookingID, p.Content, p.Type); err != nil {
			c.send(Event{Type: EventError, BookingID: ev.BookingID,
				Payload: gin.H{"message": err.Error()}, Timestamp: time.Now()})
		}

	case EventShareLocation:
		if !g.Hub.InRoom(c, ev.BookingID) {
			c.send(Event{Type: EventError, BookingID: ev.BookingID,
				Payload: gin.H{"message": "not a member of this booking"}, Timestamp: time.Now()})
			return
		}
		var p locationPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		// Transient: never persisted.
		g.Hub.BroadcastToBooking(ev.BookingID, EventLocationUpdate,
			gin.H{"userId": c.userID, "location": p.Location}, c.userID)

	case EventCheckIn:
		var p checkInPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		checkIn, err := g.Safety.CheckIn(ctx, c.userID, ev.BookingID, safety.CheckInInput{
			Type: p.Type, Location: p.Location, Notes: p.Notes,
		})
		if err != nil {
			c.send(Event{Type: EventError, BookingID: ev.BookingID,
				Payload: gin.H{"message": err.Error()}, Timestamp: time.Now()})
			return
		}
		g.Hub.BroadcastToBooking(ev.BookingID, EventCheckInAlert, checkIn, c.userID)

	case EventSOS:
		var p checkInPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		checkIn, err := g.Safety.TriggerSOS(ctx, c.userID, ev.BookingID, safety.SOSInput{
			Location: p.Location, Notes: p.Notes,
		})
		if err != nil {
			c.send(Event{Type: EventError, BookingID: ev.BookingID,
				Payload: gin.H{"message": err.Error()}, Timestamp: time.Now()})
			return
		}
		// SOS reaches the other party even if they muted the room.
		g.Hub.BroadcastToBooking(ev.BookingID, EventSOSAlert, checkIn, c.userID)

	case EventTyping:
		if !g.Hub.InRoom(c, ev.BookingID) {
			return
		}
		g.Hub.BroadcastToBooking(ev.BookingID, EventUserTyping,
			gin.H{"userId": c.userID}, c.userID)

	default:
		g.Logger.Debug("unknown client event",
			zap.String("type", ev.Type), zap.String("userID", c.userID))
	}
}

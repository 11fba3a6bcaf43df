package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func testGateway(hub *Hub, allow bool) *Gateway {
	return &Gateway{
		Hub: hub,
		Authorize: func(ctx context.Context, userID, bookingID string) bool {
			return allow
		},
		Logger: zap.NewNop(),
	}
}

func TestTransientEventsRequireMembership(t *testing.T) {
	hub := startHub(t)
	member := connect(hub, "member")
	intruder := connect(hub, "intruder")
	join(hub, member, "bk-1")

	g := testGateway(hub, false)
	payload := json.RawMessage(`{"location":{"lat":40.7,"lng":-74.0}}`)

	g.dispatch(intruder, inboundEvent{Type: EventShareLocation, BookingID: "bk-1", Payload: payload})
	g.dispatch(intruder, inboundEvent{Type: EventTyping, BookingID: "bk-1"})

	if got := drain(member); len(got) != 0 {
		t.Fatalf("member received events from a non-member: %v", got)
	}
	got := drain(intruder)
	if len(got) != 1 || got[0].Type != EventError {
		t.Fatalf("intruder received %v, want one error event", got)
	}
}

func TestTransientEventsRelayedToRoomMembers(t *testing.T) {
	hub := startHub(t)
	requester := connect(hub, "requester")
	friend := connect(hub, "friend")
	join(hub, friend, "bk-1")

	g := testGateway(hub, true)
	g.dispatch(requester, inboundEvent{Type: EventJoinBooking, BookingID: "bk-1"})
	drain(friend) // presence announcement

	payload := json.RawMessage(`{"location":{"lat":40.7,"lng":-74.0}}`)
	g.dispatch(requester, inboundEvent{Type: EventShareLocation, BookingID: "bk-1", Payload: payload})
	g.dispatch(requester, inboundEvent{Type: EventTyping, BookingID: "bk-1"})

	got := drain(friend)
	if len(got) != 2 || got[0].Type != EventLocationUpdate || got[1].Type != EventUserTyping {
		t.Fatalf("friend received %v, want location-update then user-typing", got)
	}
	if got := drain(requester); len(got) != 0 {
		t.Fatalf("sender received own transient events: %v", got)
	}
}

func TestJoinDeniedByAuthorizer(t *testing.T) {
	hub := startHub(t)
	stranger := connect(hub, "stranger")

	g := testGateway(hub, false)
	g.dispatch(stranger, inboundEvent{Type: EventJoinBooking, BookingID: "bk-1"})

	got := drain(stranger)
	if len(got) != 1 || got[0].Type != EventError {
		t.Fatalf("stranger received %v, want one error event", got)
	}
	if hub.InRoom(stranger, "bk-1") {
		t.Fatal("denied join still added the client to the room")
	}
}

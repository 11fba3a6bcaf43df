// Package tasks defines the background task types exchanged through the
// alert queue.
package tasks

import (
	"encoding/json"
	"time"

	"solace/models"

	"github.com/hibiken/asynq"
)

// TypeSafetyAlert is the task type for SOS escalations.
const TypeSafetyAlert = "safety:alert"

// SafetyAlertPayload carries everything the alert worker needs to reach
// the operations channel and the parties' emergency contacts.
type SafetyAlertPayload struct {
	BookingID   string         `json:"bookingId"`
	UserID      string         `json:"userId"` // who triggered
	RequesterID string         `json:"requesterId"`
	FriendID    string         `json:"friendId"`
	CheckInID   string         `json:"checkInId"`
	Location    *models.LatLng `json:"location,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	TriggeredAt time.Time      `json:"triggeredAt"`
}

// NewSafetyAlertTask builds the asynq task for an SOS escalation.
func NewSafetyAlertTask(payload SafetyAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSafetyAlert, data), nil
}

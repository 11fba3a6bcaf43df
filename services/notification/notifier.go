// Package notification delivers safety escalations: it consumes alert
// tasks from the queue and fans them out to the operations channel and
// the parties' emergency contacts.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	userRepo "solace/database/repository/user"
	"solace/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Notifier handles queued safety alerts.
type Notifier struct {
	UserRepo   userRepo.UserRepository
	Redis      *redis.Client
	OpsChannel string
	Logger     *zap.Logger
}

// opsAlert is the message published to the operations channel.
type opsAlert struct {
	Kind             string      `json:"kind"`
	BookingID        string      `json:"bookingId"`
	TriggeredBy      string      `json:"triggeredBy"`
	Payload          interface{} `json:"payload"`
	EmergencyContact interface{} `json:"emergencyContact,omitempty"`
}

// HandleSafetyAlert processes one SOS task. Returning an error makes
// asynq retry with backoff; alerts must not be lost silently.
func (n *Notifier) HandleSafetyAlert(ctx context.Context, t *asynq.Task) error {
	var payload tasks.SafetyAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("malformed safety alert payload: %w", err)
	}

	n.Logger.Error("processing SOS alert",
		zap.String("bookingID", payload.BookingID),
		zap.String("triggeredBy", payload.UserID))

	alert := opsAlert{
		Kind:        "sos",
		BookingID:   payload.BookingID,
		TriggeredBy: payload.UserID,
		Payload:     payload,
	}

	// Attach the triggering user's emergency contact when present.
	if user, err := n.UserRepo.GetByID(payload.UserID); err != nil {
		n.Logger.Error("failed to load user for SOS alert",
			zap.String("userID", payload.UserID), zap.Error(err))
	} else if user != nil && user.EmergencyContact != nil {
		alert.EmergencyContact = user.EmergencyContact
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode ops alert: %w", err)
	}
	if err := n.Redis.Publish(ctx, n.OpsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish ops alert: %w", err)
	}

	n.Logger.Info("SOS alert dispatched",
		zap.String("bookingID", payload.BookingID),
		zap.String("channel", n.OpsChannel))
	return nil
}

// Package chat handles booking-scoped messaging. Messages live on the
// booking document; delivery to connected clients is best effort.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bookingRepo "solace/database/repository/booking"
	userRepo "solace/database/repository/user"
	"solace/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("booking not found")
	ErrNotAuthorized = errors.New("not authorized for this booking")
	ErrEmptyMessage  = errors.New("message content is empty")
)

// Broadcaster pushes an event to everyone in a booking room except the
// sender. The hub satisfies this; a nil broadcaster disables delivery.
type Broadcaster interface {
	BroadcastToBooking(bookingID, event string, payload interface{}, excludeUserID string)
}

// Conversation is one booking's chat summary for the inbox view.
type Conversation struct {
	BookingID     string          `json:"bookingId"`
	BookingStatus string          `json:"bookingStatus"`
	OtherUserID   string          `json:"otherUserId"`
	OtherUserName string          `json:"otherUserName,omitempty"`
	LastMessage   *models.Message `json:"lastMessage,omitempty"`
	UnreadCount   int             `json:"unreadCount"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ChatService exposes messaging over bookings.
type ChatService interface {
	SendMessage(ctx context.Context, senderID, bookingID, content, messageType string) (*models.Message, error)
	GetMessages(ctx context.Context, userID, bookingID string) ([]models.Message, error)
	Conversations(ctx context.Context, userID string) ([]Conversation, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, bookingID string) error
}

// DefaultChatService implements ChatService.
type DefaultChatService struct {
	Repo     bookingRepo.BookingRepository
	UserRepo userRepo.UserRepository
	Hub      Broadcaster
	Logger   *zap.Logger
}

func (s *DefaultChatService) fetch(userID, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if !b.IsParticipant(userID) {
		return nil, ErrNotAuthorized
	}
	return b, nil
}

// SendMessage appends a message to the booking and fans it out to the
// booking room, excluding the sender.
func (s *DefaultChatService) SendMessage(ctx context.Context, senderID, bookingID, content, messageType string) (*models.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	b, err := s.fetch(senderID, bookingID)
	if err != nil {
		return nil, err
	}

	if messageType == "" {
		messageType = models.MessageText
	}
	msg := models.Message{
		ID:        uuid.New().String(),
		SenderID:  senderID,
		Content:   content,
		Type:      messageType,
		Timestamp: time.Now(),
	}
	if err := s.Repo.AppendMessage(b.ID, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if s.Hub != nil {
		s.Hub.BroadcastToBooking(b.ID, "new-message", msg, senderID)
	}
	return &msg, nil
}

// GetMessages returns the booking's messages in send order.
func (s *DefaultChatService) GetMessages(ctx context.Context, userID, bookingID string) ([]models.Message, error) {
	b, err := s.fetch(userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Messages == nil {
		return []models.Message{}, nil
	}
	return b.Messages, nil
}

// Conversations lists every booking the user participates in that has
// messages, most recently active first.
func (s *DefaultChatService) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	bookings, err := s.Repo.ListByParticipant(userID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	convs := make([]Conversation, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if len(b.Messages) == 0 {
			continue
		}
		otherID := b.FriendID
		if userID == b.FriendID {
			otherID = b.UserID
		}
		last := b.Messages[len(b.Messages)-1]
		conv := Conversation{
			BookingID:     b.ID,
			BookingStatus: b.Status,
			OtherUserID:   otherID,
			LastMessage:   &last,
			UnreadCount:   b.UnreadCount(userID),
			UpdatedAt:     last.Timestamp,
		}
		if other, err := s.UserRepo.GetByIDWithProjection(otherID, bson.M{"firstName": 1, "lastName": 1}); err == nil && other != nil {
			conv.OtherUserName = other.FullName()
		}
		convs = append(convs, conv)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// UnreadCount totals unread messages for the user across bookings.
func (s *DefaultChatService) UnreadCount(ctx context.Context, userID string) (int, error) {
	bookings, err := s.Repo.ListByParticipant(userID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	total := 0
	for i := range bookings {
		total += bookings[i].UnreadCount(userID)
	}
	return total, nil
}

// MarkRead flags everything the other party sent in this booking as read.
func (s *DefaultChatService) MarkRead(ctx context.Context, userID, bookingID string) error {
	if _, err := s.fetch(userID, bookingID); err != nil {
		return err
	}
	if err := s.Repo.MarkMessagesRead(bookingID, userID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

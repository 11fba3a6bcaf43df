// Package safety monitors active bookings: periodic check-ins, the
// per-booking safety code, and SOS escalation.
package safety

import (
	"context"
	"fmt"
	"time"

	bookingRepo "solace/database/repository/booking"
	"solace/models"
	"solace/services/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Status is the derived safety snapshot of one booking. Nothing here is
// stored; it is computed from the booking on every read.
type Status struct {
	BookingID      string          `json:"bookingId"`
	BookingStatus  string          `json:"bookingStatus"`
	LastCheckIn    *models.CheckIn `json:"lastCheckIn,omitempty"`
	NextCheckInDue *time.Time      `json:"nextCheckInDue,omitempty"`
	IsOverdue      bool            `json:"isOverdue"`
	CheckInCount   int             `json:"checkInCount"`
	HasSOS         bool            `json:"hasSos"`
}

// CheckInInput is a manual or automatic check-in submission.
type CheckInInput struct {
	Type     string         `json:"type" binding:"omitempty,oneof=auto manual"`
	Location *models.LatLng `json:"location,omitempty"`
	Notes    string         `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// SOSInput carries the optional context of an SOS trigger.
type SOSInput struct {
	Location *models.LatLng `json:"location,omitempty"`
	Notes    string         `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// SafetyService exposes the safety surface of a booking.
type SafetyService interface {
	GetStatus(ctx context.Context, userID, bookingID string) (*Status, error)
	CheckIn(ctx context.Context, userID, bookingID string, in CheckInInput) (*models.CheckIn, error)
	CheckInHistory(ctx context.Context, userID, bookingID string) ([]models.CheckIn, error)
	TriggerSOS(ctx context.Context, userID, bookingID string, in SOSInput) (*models.CheckIn, error)
	VerifyCode(ctx context.Context, userID, bookingID, code string) (bool, error)
}

// DefaultSafetyService implements SafetyService over the booking store,
// escalating SOS events through the alert queue.
type DefaultSafetyService struct {
	Repo            bookingRepo.BookingRepository
	AlertClient     *asynq.Client
	Logger          *zap.Logger
	CheckInInterval time.Duration
}

// NewDefaultSafetyService constructs a safety service with the given
// check-in cadence.
func NewDefaultSafetyService(repo bookingRepo.BookingRepository, alertClient *asynq.Client, logger *zap.Logger, interval time.Duration) *DefaultSafetyService {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &DefaultSafetyService{
		Repo:            repo,
		AlertClient:     alertClient,
		Logger:          logger,
		CheckInInterval: interval,
	}
}

var (
	// ErrNotFound mirrors the booking service sentinel for missing bookings.
	ErrNotFound = fmt.Errorf("booking not found")
	// ErrNotAuthorized rejects non-participants.
	ErrNotAuthorized = fmt.Errorf("not authorized for this booking")
	// ErrNotActive rejects safety operations outside an active booking.
	ErrNotActive = fmt.Errorf("booking is not active")
)

// activePhase reports whether the booking expects the check-in cadence.
// Confirmed bookings count: the parties may already be en route.
func activePhase(status string) bool {
	return status == models.StatusConfirmed || status == models.StatusInProgress
}

func (s *DefaultSafetyService) fetch(userID, bookingID string) (*models.Booking, error) {
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

// GetStatus computes the safety snapshot. The due time is anchored on
// the last check-in, or the booking start when none exist yet; overdue
// is only meaningful while the booking is in an active phase.
func (s *DefaultSafetyService) GetStatus(ctx context.Context, userID, bookingID string) (*Status, error) {
	b, err := s.fetch(userID, bookingID)
	if err != nil {
		return nil, err
	}

	st := &Status{
		BookingID:     b.ID,
		BookingStatus: b.Status,
		LastCheckIn:   b.LastCheckIn(),
		CheckInCount:  len(b.CheckIns),
	}
	for _, c := range b.CheckIns {
		if c.Type == models.CheckInSOS {
			st.HasSOS = true
			break
		}
	}

	if activePhase(b.Status) {
		anchor := b.StartTime
		if st.LastCheckIn != nil {
			anchor = st.LastCheckIn.Timestamp
		}
		due := anchor.Add(s.CheckInInterval)
		st.NextCheckInDue = &due
		st.IsOverdue = time.Now().After(due)
	}
	return st, nil
}

// CheckIn appends a liveness signal to an active booking.
func (s *DefaultSafetyService) CheckIn(ctx context.Context, userID, bookingID string, in CheckInInput) (*models.CheckIn, error) {
	b, err := s.fetch(userID, bookingID)
	if err != nil {
		return nil, err
	}
	if !activePhase(b.Status) {
		return nil, ErrNotActive
	}

	typ := in.Type
	if typ == "" {
		typ = models.CheckInManual
	}
	checkIn := models.CheckIn{
		ID:        uuid.New().String(),
		Type:      typ,
		Timestamp: time.Now(),
		Location:  in.Location,
		Notes:     in.Notes,
	}
	if err := s.Repo.AppendCheckIn(b.ID, checkIn); err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	s.Logger.Info("check-in recorded",
		zap.String("bookingID", b.ID),
		zap.String("userID", userID),
		zap.String("type", typ))
	return &checkIn, nil
}

// CheckInHistory returns the booking's check-in log in append order.
func (s *DefaultSafetyService) CheckInHistory(ctx context.Context, userID, bookingID string) ([]models.CheckIn, error) {
	b, err := s.fetch(userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CheckIns == nil {
		return []models.CheckIn{}, nil
	}
	return b.CheckIns, nil
}

// TriggerSOS records an emergency check-in and escalates it. The record
// is the source of truth; alert delivery is best effort and its failure
// never fails the trigger.
func (s *DefaultSafetyService) TriggerSOS(ctx context.Context, userID, bookingID string, in SOSInput) (*models.CheckIn, error) {
	b, err := s.fetch(userID, bookingID)
	if err != nil {
		return nil, err
	}

	checkIn := models.CheckIn{
		ID:          uuid.New().String(),
		Type:        models.CheckInSOS,
		Timestamp:   time.Now(),
		Location:    in.Location,
		IsEmergency: true,
		Notes:       in.Notes,
	}
	if err := s.Repo.AppendCheckIn(b.ID, checkIn); err != nil {
		return nil, fmt.Errorf("failed to record SOS: %w", err)
	}

	s.Logger.Error("SOS triggered",
		zap.String("bookingID", b.ID),
		zap.String("userID", userID))

	if s.AlertClient != nil {
		task, err := tasks.NewSafetyAlertTask(tasks.SafetyAlertPayload{
			BookingID:   b.ID,
			UserID:      userID,
			FriendID:    b.FriendID,
			RequesterID: b.UserID,
			CheckInID:   checkIn.ID,
			Location:    in.Location,
			Notes:       in.Notes,
			TriggeredAt: checkIn.Timestamp,
		})
		if err != nil {
			s.Logger.Error("failed to build safety alert task", zap.Error(err))
		} else if _, err := s.AlertClient.Enqueue(task, asynq.MaxRetry(5), asynq.Queue("critical")); err != nil {
			s.Logger.Error("failed to enqueue safety alert", zap.Error(err))
		}
	}
	return &checkIn, nil
}

// VerifyCode compares a submitted code against the booking's safety
// code. The result is reported to both parties via logs only.
func (s *DefaultSafetyService) VerifyCode(ctx context.Context, userID, bookingID, code string) (bool, error) {
	b, err := s.fetch(userID, bookingID)
	if err != nil {
		return false, err
	}
	ok := code != "" && code == b.SafetyCode
	if !ok {
		s.Logger.Warn("safety code mismatch",
			zap.String("bookingID", b.ID),
			zap.String("userID", userID))
	}
	return ok, nil
}

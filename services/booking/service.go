package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "solace/database/repository/booking"
	"solace/models"
	"solace/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusTransitions is the strict transition table. Anything absent is
// rejected. Dispute entry and exit run through the dispute operations,
// not this table.
var statusTransitions = map[string][]string{
	models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted},
	models.StatusCompleted:  {},
	models.StatusCancelled:  {},
	models.StatusDisputed:   {},
}

func transitionAllowed(from, to string) bool {
	for _, t := range statusTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// authorize rejects actors that are neither participant nor admin.
func authorize(b *models.Booking, actor Actor) error {
	if b.IsParticipant(actor.ID) || actor.IsAdmin() {
		return nil
	}
	return ErrNotAuthorized
}

// Create validates the companion and package, snapshots pricing, and
// persists a pending booking with a fresh safety code.
func (s *DefaultBookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (*models.Booking, error) {
	friend, err := s.UserRepo.GetByID(in.FriendID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up companion: %w", err)
	}
	if friend == nil || !friend.IsFriend || !friend.IsActive {
		return nil, ErrNotFound
	}

	profile, err := s.ProfileRepo.GetByUserID(in.FriendID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up companion profile: %w", err)
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	pkg := profile.PackageByID(in.PackageID)
	if pkg == nil {
		return nil, ErrNotFound
	}

	fields := map[string]string{}
	if !models.ValidCategory(in.Situation.Category) {
		fields["situation.category"] = "unknown category"
	}
	if in.Situation.Urgency == "" {
		in.Situation.Urgency = models.UrgencyFlexible
	} else if !models.ValidUrgency(in.Situation.Urgency) {
		fields["situation.urgency"] = "unknown urgency"
	}
	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		fields["startTime"] = "must be RFC3339"
	}
	end, err := time.Parse(time.RFC3339, in.EndTime)
	if err != nil {
		fields["endTime"] = "must be RFC3339"
	}
	if len(fields) == 0 && !end.After(start) {
		fields["endTime"] = "must be after startTime"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hours := DurationHours(start, end)

	b := &models.Booking{
		ID:         uuid.New().String(),
		UserID:     actor.ID,
		FriendID:   in.FriendID,
		PackageID:  in.PackageID,
		Status:     models.StatusPending,
		Situation:  in.Situation,
		StartTime:  start,
		EndTime:    end,
		Duration:   hours,
		Location:   in.Location,
		Pricing:    ComputePricing(pkg.HourlyRate, hours),
		Payment:    models.Payment{Status: models.PaymentPending},
		SafetyCode: utils.GenerateSafetyCode(),
		CheckIns:   []models.CheckIn{},
		Messages:   []models.Message{},
	}

	if err := s.Repo.Create(b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.Logger.Info("booking created",
		zap.String("bookingID", b.ID),
		zap.String("userID", b.UserID),
		zap.String("friendID", b.FriendID),
		zap.Float64("totalAmount", b.Pricing.TotalAmount))
	return b, nil
}

// GetByID fetches a booking visible to the actor.
func (s *DefaultBookingService) GetByID(ctx context.Context, actor Actor, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if err := authorize(b, actor); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the actor's bookings, as requester or as companion.
func (s *DefaultBookingService) List(ctx context.Context, actor Actor, asFriend bool, status string, page, limit int) ([]models.Booking, int64, error) {
	filter := bookingRepo.BookingListFilter{Page: page, Limit: limit}
	if asFriend {
		filter.FriendID = actor.ID
	} else {
		filter.UserID = actor.ID
	}
	if status != "" {
		filter.Statuses = []string{status}
	}
	return s.Repo.List(filter)
}

// UpdateStatus applies one transition from the table, with its coupled
// payment and counter side effects. The per-booking lock guarantees the
// side effects apply at most once per transition.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor Actor, id, status string) (*models.Booking, error) {
	unlock := s.locks.Acquire(id)
	defer unlock()

	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if err := authorize(b, actor); err != nil {
		return nil, err
	}

	if !transitionAllowed(b.Status, status) {
		return nil, &InvalidTransitionError{From: b.Status, To: status}
	}

	from := b.Status
	b.Status = status

	switch status {
	case models.StatusConfirmed:
		// Funds are escrowed, not yet paid to the companion.
		b.Payment.Status = models.PaymentHeld
		now := time.Now()
		b.Payment.PaidAt = &now
	case models.StatusCancelled:
		now := time.Now()
		b.Cancellation = &models.Cancellation{
			CancelledBy:  actor.ID,
			Reason:       "No reason provided",
			CancelledAt:  now,
			RefundAmount: b.Pricing.TotalAmount,
		}
		b.Payment.Status = models.PaymentRefunded
		b.Payment.RefundedAt = &now
		b.Payment.RefundAmount = b.Pricing.TotalAmount
	case models.StatusCompleted:
		b.Payment.Status = models.PaymentReleased
	}

	if err := s.Repo.Update(b); err != nil {
		b.Status = from
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	// Counter increments ride on the transition having just succeeded:
	// a repeat completed->completed request is rejected above, so the
	// $inc below cannot run twice for one completion.
	if status == models.StatusCompleted {
		if err := s.ProfileRepo.IncrementBookingStats(b.FriendID, b.Pricing.FriendEarnings); err != nil {
			s.Logger.Error("failed to increment companion booking stats",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}

	s.Logger.Info("booking status changed",
		zap.String("bookingID", b.ID),
		zap.String("from", from),
		zap.String("to", status))
	return b, nil
}

// Cancel ends a pending or confirmed booking with a full refund.
func (s *DefaultBookingService) Cancel(ctx context.Context, actor Actor, id, reason string) (*models.Booking, error) {
	unlock := s.locks.Acquire(id)
	defer unlock()

	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if err := authorize(b, actor); err != nil {
		return nil, err
	}

	if b.Status != models.StatusPending && b.Status != models.StatusConfirmed {
		return nil, &InvalidTransitionError{From: b.Status, To: models.StatusCancelled}
	}

	if reason == "" {
		reason = "No reason provided"
	}
	now := time.Now()
	b.Status = models.StatusCancelled
	b.Cancellation = &models.Cancellation{
		CancelledBy:  actor.ID,
		Reason:       reason,
		CancelledAt:  now,
		RefundAmount: b.Pricing.TotalAmount, // no partial refunds
	}
	b.Payment.Status = models.PaymentRefunded
	b.Payment.RefundedAt = &now
	b.Payment.RefundAmount = b.Pricing.TotalAmount

	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.Logger.Info("booking cancelled",
		zap.String("bookingID", b.ID),
		zap.String("cancelledBy", actor.ID),
		zap.Float64("refundAmount", b.Cancellation.RefundAmount))
	return b, nil
}

// MarkPaymentConfirmed transitions pending->confirmed after the payment
// collaborator verified the intent, recording the intent id.
func (s *DefaultBookingService) MarkPaymentConfirmed(ctx context.Context, actor Actor, id, intentID string) (*models.Booking, error) {
	unlock := s.locks.Acquire(id)
	defer unlock()

	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if err := authorize(b, actor); err != nil {
		return nil, err
	}

	if !transitionAllowed(b.Status, models.StatusConfirmed) {
		return nil, &InvalidTransitionError{From: b.Status, To: models.StatusConfirmed}
	}

	now := time.Now()
	b.Status = models.StatusConfirmed
	b.Payment.Status = models.PaymentHeld
	b.Payment.PaymentIntentID = intentID
	b.Payment.PaidAt = &now

	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	s.Logger.Info("booking confirmed by payment",
		zap.String("bookingID", b.ID),
		zap.String("paymentIntentID", intentID))
	return b, nil
}

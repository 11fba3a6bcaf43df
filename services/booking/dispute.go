package booking

import (
	"context"
	"fmt"
	"time"

	"solace/models"

	"go.uber.org/zap"
)

// OpenDispute moves a completed booking into the disputed state and
// freezes it until an admin resolves.
func (s *DefaultBookingService) OpenDispute(ctx context.Context, actor Actor, id, reason, description string) (*models.Booking, error) {
	unlock := s.locks.Acquire(id)
	defer unlock()

	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if !b.IsParticipant(actor.ID) {
		return nil, ErrNotAuthorized
	}
	if b.Status != models.StatusCompleted {
		return nil, &InvalidTransitionError{From: b.Status, To: models.StatusDisputed}
	}

	b.Status = models.StatusDisputed
	b.Dispute = &models.Dispute{
		DisputedBy:  actor.ID,
		Reason:      reason,
		Description: description,
		Status:      models.DisputeOpen,
		DisputedAt:  time.Now(),
	}

	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to open dispute: %w", err)
	}

	s.Logger.Warn("dispute opened",
		zap.String("bookingID", b.ID),
		zap.String("disputedBy", actor.ID),
		zap.String("reason", reason))
	return b, nil
}

// ResolveDispute is admin only. A refund resolution refunds the
// requester (up to the booking total) and ends in cancelled; otherwise
// the booking returns to completed with earnings intact.
func (s *DefaultBookingService) ResolveDispute(ctx context.Context, actor Actor, id, resolution string, refundAmount float64) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	unlock := s.locks.Acquire(id)
	defer unlock()

	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if b.Status != models.StatusDisputed || b.Dispute == nil {
		return nil, &ValidationError{Fields: map[string]string{
			"status": "booking is not under dispute",
		}}
	}

	now := time.Now()
	b.Dispute.Status = models.DisputeResolved
	b.Dispute.Resolution = resolution
	b.Dispute.ResolvedBy = actor.ID
	b.Dispute.ResolvedAt = &now

	if refundAmount > 0 {
		if refundAmount > b.Pricing.TotalAmount {
			refundAmount = b.Pricing.TotalAmount
		}
		b.Status = models.StatusCancelled
		b.Payment.Status = models.PaymentRefunded
		b.Payment.RefundedAt = &now
		b.Payment.RefundAmount = refundAmount
	} else {
		b.Status = models.StatusCompleted
	}

	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to resolve dispute: %w", err)
	}

	s.Logger.Info("dispute resolved",
		zap.String("bookingID", b.ID),
		zap.String("resolvedBy", actor.ID),
		zap.Float64("refundAmount", refundAmount))
	return b, nil
}

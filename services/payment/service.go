package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	bookingRepo "solace/database/repository/booking"
	"solace/models"
	"solace/services/booking"

	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("booking not found")
	ErrNotAuthorized = errors.New("not authorized for this booking")
	ErrNotPayable    = errors.New("booking is not awaiting payment")
)

// EarningsSummary aggregates a companion's earnings across bookings.
// Only completed bookings pay out; held amounts are still in escrow.
type EarningsSummary struct {
	TotalEarnings     float64 `json:"totalEarnings"`
	PendingEarnings   float64 `json:"pendingEarnings"`
	CompletedBookings int     `json:"completedBookings"`
	ActiveBookings    int     `json:"activeBookings"`
}

// Service is the payment surface: intents, confirmation, refunds, and
// earnings reporting.
type Service interface {
	CreateIntent(ctx context.Context, actor booking.Actor, bookingID string) (*Intent, error)
	ConfirmBooking(ctx context.Context, actor booking.Actor, bookingID, intentID string) (*models.Booking, error)
	RefundBooking(ctx context.Context, b *models.Booking) error
	Earnings(ctx context.Context, friendID string) (*EarningsSummary, error)
}

// DefaultService implements Service over a Provider and the booking
// collaborators.
type DefaultService struct {
	Provider   Provider
	Repo       bookingRepo.BookingRepository
	BookingSvc booking.BookingService
	Logger     *zap.Logger
	Currency   string
}

// toCents converts a currency amount to the smallest unit.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateIntent opens a gateway intent for a pending booking's total.
// Only the requester pays.
func (s *DefaultService) CreateIntent(ctx context.Context, actor booking.Actor, bookingID string) (*Intent, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if b.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if b.Status != models.StatusPending {
		return nil, ErrNotPayable
	}

	intent, err := s.Provider.CreateIntent(ctx, toCents(b.Pricing.TotalAmount), s.Currency, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	s.Logger.Info("payment intent created",
		zap.String("bookingID", b.ID),
		zap.String("intentID", intent.ID),
		zap.Int64("amount", intent.Amount))
	return intent, nil
}

// ConfirmBooking verifies the intent with the gateway, then moves the
// booking to confirmed with funds held.
func (s *DefaultService) ConfirmBooking(ctx context.Context, actor booking.Actor, bookingID, intentID string) (*models.Booking, error) {
	intent, err := s.Provider.Confirm(ctx, intentID)
	if err != nil {
		return nil, &booking.PaymentVerificationError{BookingID: bookingID, Cause: err}
	}
	b, err := s.BookingSvc.MarkPaymentConfirmed(ctx, actor, bookingID, intent.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// RefundBooking issues the gateway refund matching the booking's refund
// record. Callers treat failure as an operational alert, not a rollback:
// the booking record already holds the authoritative refund amount.
func (s *DefaultService) RefundBooking(ctx context.Context, b *models.Booking) error {
	if b.Payment.PaymentIntentID == "" || b.Payment.RefundAmount <= 0 {
		return nil
	}
	if err := s.Provider.Refund(ctx, b.Payment.PaymentIntentID, toCents(b.Payment.RefundAmount)); err != nil {
		s.Logger.Error("gateway refund failed",
			zap.String("bookingID", b.ID),
			zap.String("intentID", b.Payment.PaymentIntentID),
			zap.Error(err))
		return err
	}
	return nil
}

// Earnings sums the companion side of completed and in-flight bookings.
func (s *DefaultService) Earnings(ctx context.Context, friendID string) (*EarningsSummary, error) {
	bookings, err := s.Repo.ListByParticipant(friendID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	sum := &EarningsSummary{}
	for i := range bookings {
		b := &bookings[i]
		if b.FriendID != friendID {
			continue
		}
		switch b.Status {
		case models.StatusCompleted:
			sum.TotalEarnings += b.Pricing.FriendEarnings
			sum.CompletedBookings++
		case models.StatusConfirmed, models.StatusInProgress:
			sum.PendingEarnings += b.Pricing.FriendEarnings
			sum.ActiveBookings++
		}
	}
	return sum, nil
}

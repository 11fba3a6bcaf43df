package booking

import (
	"context"

	bookingRepo "solace/database/repository/booking"
	profileRepo "solace/database/repository/profile"
	userRepo "solace/database/repository/user"
	"solace/models"

	"go.uber.org/zap"
)

// Actor identifies the caller of a booking operation. Every operation
// checks that the actor is the requester, the companion, or an admin.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CreateBookingInput is the validated request to create a booking.
type CreateBookingInput struct {
	FriendID  string                 `json:"friendId" binding:"required"`
	PackageID string                 `json:"packageId" binding:"required"`
	Situation models.Situation       `json:"situation" binding:"required"`
	StartTime string                 `json:"startTime" binding:"required"`
	EndTime   string                 `json:"endTime" binding:"required"`
	Location  models.BookingLocation `json:"location" binding:"required"`
}

// ReviewInput is one party's review of a completed booking.
type ReviewInput struct {
	Rating     int                     `json:"rating" binding:"required,min=1,max=5"`
	Comment    string                  `json:"comment,omitempty" binding:"max=1000"`
	Categories models.ReviewCategories `json:"categories"`
}

// BookingService owns the booking lifecycle state machine.
type BookingService interface {
	Create(ctx context.Context, actor Actor, in CreateBookingInput) (*models.Booking, error)
	GetByID(ctx context.Context, actor Actor, id string) (*models.Booking, error)
	List(ctx context.Context, actor Actor, asFriend bool, status string, page, limit int) ([]models.Booking, int64, error)
	UpdateStatus(ctx context.Context, actor Actor, id, status string) (*models.Booking, error)
	Cancel(ctx context.Context, actor Actor, id, reason string) (*models.Booking, error)
	MarkPaymentConfirmed(ctx context.Context, actor Actor, id, intentID string) (*models.Booking, error)
	SubmitReview(ctx context.Context, actor Actor, id string, in ReviewInput) (*models.Review, error)
	OpenDispute(ctx context.Context, actor Actor, id, reason, description string) (*models.Booking, error)
	ResolveDispute(ctx context.Context, actor Actor, id, resolution string, refundAmount float64) (*models.Booking, error)
}

// DefaultBookingService implements BookingService. All read-modify-write
// paths on one booking run under its per-id lock.
type DefaultBookingService struct {
	Repo        bookingRepo.BookingRepository
	UserRepo    userRepo.UserRepository
	ProfileRepo profileRepo.ProfileRepository
	Logger      *zap.Logger

	locks *entityLocks
}

// NewDefaultBookingService wires the booking service.
func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	users userRepo.UserRepository,
	profiles profileRepo.ProfileRepository,
	logger *zap.Logger,
) *DefaultBookingService {
	return &DefaultBookingService{
		Repo:        repo,
		UserRepo:    users,
		ProfileRepo: profiles,
		Logger:      logger,
		locks:       newEntityLocks(),
	}
}

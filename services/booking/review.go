package booking

import (
	"context"
	"fmt"
	"time"

	"solace/models"

	"go.uber.org/zap"
)

// SubmitReview records a post-completion review. The requester reviews
// the companion (feeding the package and user rating means); the
// companion reviews the requester. Each side submits once.
func (s *DefaultBookingService) SubmitReview(ctx context.Context, actor Actor, id string, in ReviewInput) (*models.Review, error) {
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
		return nil, &ValidationError{Fields: map[string]string{
			"status": "only completed bookings can be reviewed",
		}}
	}

	review := &models.Review{
		ReviewerID: actor.ID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		Categories: in.Categories,
		CreatedAt:  time.Now(),
	}

	switch actor.ID {
	case b.UserID:
		if b.Review != nil {
			return nil, &ValidationError{Fields: map[string]string{
				"review": "already submitted",
			}}
		}
		b.Review = review
	case b.FriendID:
		if b.FriendReview != nil {
			return nil, &ValidationError{Fields: map[string]string{
				"review": "already submitted",
			}}
		}
		b.FriendReview = review
	}

	if err := s.Repo.Update(b); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	// Rating aggregates advance only for reviews of the companion.
	if actor.ID == b.UserID {
		if err := s.ProfileRepo.IncrementPackageRating(b.FriendID, b.PackageID, in.Rating); err != nil {
			s.Logger.Error("failed to update package rating",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
		if err := s.UserRepo.IncrementRating(b.FriendID, in.Rating); err != nil {
			s.Logger.Error("failed to update companion rating",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}

	s.Logger.Info("review submitted",
		zap.String("bookingID", b.ID),
		zap.String("reviewer", actor.ID),
		zap.Int("rating", in.Rating))
	return review, nil
}

package profileRepo

import "solace/models"

// ProfileSearchCriteria narrows the candidate set for matching. Radius
// filtering is done by the caller on coordinates; these filters run in
// the database.
type ProfileSearchCriteria struct {
	Category     string
	VerifiedOnly bool
	RateMin      float64
	RateMax      float64
}

// ProfileRepository defines methods for companion profile data access.
type ProfileRepository interface {
	// GetByID retrieves a profile by its unique ID.
	GetByID(id string) (*models.ProviderProfile, error)
	// GetByUserID retrieves the profile owned by the given companion user.
	GetByUserID(userID string) (*models.ProviderProfile, error)
	// Create inserts a new profile record.
	Create(profile *models.ProviderProfile) error
	// Update modifies an existing profile record.
	Update(profile *models.ProviderProfile) error
	// Search returns active profiles matching the criteria.
	Search(criteria ProfileSearchCriteria) ([]models.ProviderProfile, error)
	// ListRecommended returns featured profiles first, topped up with
	// id-verified profiles ordered by totalBookings.
	ListRecommended(limit int) ([]models.ProviderProfile, error)
	// IncrementBookingStats adds one completed booking and its earnings
	// to the profile's aggregate counters.
	IncrementBookingStats(userID string, earnings float64) error
	// IncrementPackageRating advances the package's running mean rating
	// by one review, atomically within the profile document.
	IncrementPackageRating(userID, packageID string, rating int) error
}

package match

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	bookingRepo "solace/database/repository/booking"
	profileRepo "solace/database/repository/profile"
	"solace/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Candidates beyond this radius are dropped when the request carries
// coordinates.
const matchRadiusKm = 50

const candidateCacheTTL = 60 * time.Second

// Reviews shown on a companion's detail page.
const detailReviewLimit = 5

// MatchDetails is one companion's profile with recent review context.
type MatchDetails struct {
	Profile       *models.ProviderProfile `json:"profile"`
	RecentReviews []models.Review         `json:"recentReviews"`
	Stats         MatchDetailStats        `json:"stats"`
}

// MatchDetailStats summarizes the companion's completed history.
type MatchDetailStats struct {
	CompletedBookings int     `json:"completedBookings"`
	ReviewCount       int     `json:"reviewCount"`
	AverageRating     float64 `json:"averageRating"`
}

// MatchingService finds and ranks companions for a situation.
type MatchingService interface {
	FindMatches(ctx context.Context, req models.MatchRequest) ([]models.Match, int, error)
	GetRecommended(ctx context.Context, limit int) ([]models.ProviderProfile, error)
	GetMatchDetails(ctx context.Context, friendID string) (*MatchDetails, error)
}

// DefaultMatchingService implements MatchingService.
type DefaultMatchingService struct {
	ProfileRepo profileRepo.ProfileRepository
	BookingRepo bookingRepo.BookingRepository
	CacheClient *redis.Client
	Logger      *zap.Logger
}

// FindMatches queries candidates, scores every survivor and returns the
// top three. An empty result is not an error: the caller presents a
// "no matches" state. The second return value is the total number of
// scored candidates.
func (s *DefaultMatchingService) FindMatches(ctx context.Context, req models.MatchRequest) ([]models.Match, int, error) {
	criteria := profileRepo.ProfileSearchCriteria{
		Category:     req.Category,
		VerifiedOnly: req.VerifiedOnly,
	}
	if req.Budget != nil {
		criteria.RateMin = req.Budget.Min
		criteria.RateMax = req.Budget.Max
	}

	profiles, err := s.searchCandidates(ctx, criteria)
	if err != nil {
		return nil, 0, NewMatchError(fmt.Sprintf("failed to query candidates: %v", err))
	}

	// Radius filter, only when the request carries coordinates.
	if len(req.Location.Coordinates) >= 2 {
		reqLng := req.Location.Coordinates[0]
		reqLat := req.Location.Coordinates[1]
		var nearby []models.ProviderProfile
		for _, p := range profiles {
			if len(p.Location.Coordinates) < 2 {
				continue
			}
			d := haversine(reqLat, reqLng, p.Location.Coordinates[1], p.Location.Coordinates[0])
			if d <= matchRadiusKm {
				nearby = append(nearby, p)
			}
		}
		profiles = nearby
	}

	if len(profiles) == 0 {
		return []models.Match{}, 0, nil
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyFlexible
	}

	matches := make([]models.Match, 0, len(profiles))
	for i := range profiles {
		p := profiles[i]
		result := Score(&p, req.Situation, req.Category, urgency, req.Requirements)

		m := models.Match{
			Friend:             p,
			Compatibility:      result.Score,
			Reasons:            result.Reasons,
			RecommendedPackage: result.RecommendedPackage,
		}
		if result.RecommendedPackage != nil {
			total := result.RecommendedPackage.HourlyRate * float64(req.Duration)
			m.EstimatedTotal = &total
		}
		matches = append(matches, m)
	}

	// Score descending; equal scores break on companion user id so the
	// ordering never depends on query order.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Compatibility != matches[j].Compatibility {
			return matches[i].Compatibility > matches[j].Compatibility
		}
		return matches[i].Friend.UserID < matches[j].Friend.UserID
	})

	total := len(matches)
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches, total, nil
}

// searchCandidates serves candidate sets from the cache when possible,
// falling back to the repository. Cache failures degrade to a direct
// query.
func (s *DefaultMatchingService) searchCandidates(ctx context.Context, criteria profileRepo.ProfileSearchCriteria) ([]models.ProviderProfile, error) {
	key := fmt.Sprintf("match:candidates:%s:%t:%.0f-%.0f",
		criteria.Category, criteria.VerifiedOnly, criteria.RateMin, criteria.RateMax)

	if s.CacheClient != nil {
		if raw, err := s.CacheClient.Get(ctx, key).Result(); err == nil {
			var cached []models.ProviderProfile
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	profiles, err := s.ProfileRepo.Search(criteria)
	if err != nil {
		return nil, err
	}

	if s.CacheClient != nil {
		if data, err := json.Marshal(profiles); err == nil {
			if err := s.CacheClient.Set(ctx, key, data, candidateCacheTTL).Err(); err != nil && s.Logger != nil {
				s.Logger.Warn("failed to cache match candidates", zap.Error(err))
			}
		}
	}
	return profiles, nil
}

// GetRecommended returns featured and top id-verified companions.
func (s *DefaultMatchingService) GetRecommended(ctx context.Context, limit int) ([]models.ProviderProfile, error) {
	if limit <= 0 {
		limit = 6
	}
	profiles, err := s.ProfileRepo.ListRecommended(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommended companions: %w", err)
	}
	return profiles, nil
}

// GetMatchDetails returns the full profile for one companion by their
// user id, with their most recent reviews and completed-history stats.
// Review lookup failures degrade to a bare profile.
func (s *DefaultMatchingService) GetMatchDetails(ctx context.Context, friendID string) (*MatchDetails, error) {
	profile, err := s.ProfileRepo.GetByUserID(friendID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companion profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	details := &MatchDetails{Profile: profile, RecentReviews: []models.Review{}}
	if s.BookingRepo == nil {
		return details, nil
	}

	completed, err := s.BookingRepo.ListByParticipant(friendID, []string{models.StatusCompleted})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("failed to load companion review history",
				zap.String("friendID", friendID), zap.Error(err))
		}
		return details, nil
	}

	var reviews []models.Review
	var ratingSum int
	for _, b := range completed {
		if b.FriendID != friendID {
			continue
		}
		details.Stats.CompletedBookings++
		if b.Review != nil {
			reviews = append(reviews, *b.Review)
			ratingSum += b.Review.Rating
		}
	}
	details.Stats.ReviewCount = len(reviews)
	if len(reviews) > 0 {
		details.Stats.AverageRating = float64(ratingSum) / float64(len(reviews))
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	if len(reviews) > detailReviewLimit {
		reviews = reviews[:detailReviewLimit]
	}
	if len(reviews) > 0 {
		details.RecentReviews = reviews
	}
	return details, nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

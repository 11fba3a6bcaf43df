package match

import (
	"context"
	"testing"
	"time"

	bookingRepo "solace/database/repository/booking"
	profileRepo "solace/database/repository/profile"
	"solace/models"

	"go.uber.org/zap"
)

type stubProfileRepo struct {
	profiles []models.ProviderProfile
}

func (r *stubProfileRepo) GetByID(id string) (*models.ProviderProfile, error) { return nil, nil }

func (r *stubProfileRepo) GetByUserID(userID string) (*models.ProviderProfile, error) {
	for i := range r.profiles {
		if r.profiles[i].UserID == userID {
			return &r.profiles[i], nil
		}
	}
	return nil, nil
}

func (r *stubProfileRepo) Create(p *models.ProviderProfile) error { return nil }
func (r *stubProfileRepo) Update(p *models.ProviderProfile) error { return nil }

func (r *stubProfileRepo) Search(criteria profileRepo.ProfileSearchCriteria) ([]models.ProviderProfile, error) {
	return r.profiles, nil
}

func (r *stubProfileRepo) ListRecommended(limit int) ([]models.ProviderProfile, error) {
	if limit > len(r.profiles) {
		limit = len(r.profiles)
	}
	return r.profiles[:limit], nil
}

func (r *stubProfileRepo) IncrementBookingStats(userID string, earnings float64) error { return nil }
func (r *stubProfileRepo) IncrementPackageRating(userID, packageID string, rating int) error {
	return nil
}

type stubBookingRepo struct {
	bookings []models.Booking
}

func (r *stubBookingRepo) Create(b *models.Booking) error             { return nil }
func (r *stubBookingRepo) GetByID(id string) (*models.Booking, error) { return nil, nil }
func (r *stubBookingRepo) Update(b *models.Booking) error             { return nil }

func (r *stubBookingRepo) List(filter bookingRepo.BookingListFilter) ([]models.Booking, int64, error) {
	return nil, 0, nil
}

func (r *stubBookingRepo) ListByParticipant(userID string, statuses []string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID != userID && b.FriendID != userID {
			continue
		}
		for _, s := range statuses {
			if b.Status == s {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (r *stubBookingRepo) AppendCheckIn(id string, checkIn models.CheckIn) error { return nil }
func (r *stubBookingRepo) AppendMessage(id string, msg models.Message) error     { return nil }
func (r *stubBookingRepo) MarkMessagesRead(id, readerID string) error            { return nil }

func socialProfile(userID string, rating float64) models.ProviderProfile {
	return models.ProviderProfile{
		ID:     "profile-" + userID,
		UserID: userID,
		PresencePackages: []models.PresencePackage{
			{ID: "pkg-" + userID, Category: models.CategorySocial, HourlyRate: 80, Rating: rating, IsActive: true},
		},
		IsActive: true,
	}
}

func newMatchService(profiles ...models.ProviderProfile) *DefaultMatchingService {
	return &DefaultMatchingService{
		ProfileRepo: &stubProfileRepo{profiles: profiles},
		Logger:      zap.NewNop(),
	}
}

func TestFindMatchesReturnsTopThree(t *testing.T) {
	svc := newMatchService(
		socialProfile("a", 3.0),
		socialProfile("b", 4.0),
		socialProfile("c", 4.6),
		socialProfile("d", 4.8),
	)

	matches, total, err := svc.FindMatches(context.Background(), models.MatchRequest{
		Situation: "dinner party",
		Category:  models.CategorySocial,
		Duration:  2,
	})
	if err != nil {
		t.Fatalf("FindMatches: %v", err)
	}
	if total != 4 {
		t.Errorf("total scored = %d, want 4", total)
	}
	if len(matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Compatibility > matches[i-1].Compatibility {
			t.Fatalf("matches not sorted by score: %v", matches)
		}
	}
	if matches[0].EstimatedTotal == nil || *matches[0].EstimatedTotal != 160 {
		t.Errorf("estimated total = %v, want 160 for 2h at 80/hr", matches[0].EstimatedTotal)
	}
}

func TestFindMatchesDeterministicTieBreak(t *testing.T) {
	forward := newMatchService(socialProfile("aaa", 4.0), socialProfile("zzz", 4.0))
	reverse := newMatchService(socialProfile("zzz", 4.0), socialProfile("aaa", 4.0))
	req := models.MatchRequest{Situation: "gallery opening", Category: models.CategorySocial, Duration: 1}

	m1, _, err := forward.FindMatches(context.Background(), req)
	if err != nil {
		t.Fatalf("FindMatches: %v", err)
	}
	m2, _, err := reverse.FindMatches(context.Background(), req)
	if err != nil {
		t.Fatalf("FindMatches: %v", err)
	}

	if m1[0].Friend.UserID != "aaa" || m2[0].Friend.UserID != "aaa" {
		t.Fatalf("tie-break depends on query order: %s vs %s", m1[0].Friend.UserID, m2[0].Friend.UserID)
	}
}

func TestFindMatchesEmptyIsNotError(t *testing.T) {
	svc := newMatchService()
	matches, total, err := svc.FindMatches(context.Background(), models.MatchRequest{
		Category: models.CategoryTravel,
	})
	if err != nil {
		t.Fatalf("FindMatches: %v", err)
	}
	if total != 0 || len(matches) != 0 {
		t.Fatalf("got %d/%d, want empty result", len(matches), total)
	}
	if matches == nil {
		t.Fatal("matches is nil, want empty slice")
	}
}

func reviewedBooking(id, friendID string, rating int, age time.Duration) models.Booking {
	return models.Booking{
		ID:       id,
		UserID:   "requester",
		FriendID: friendID,
		Status:   models.StatusCompleted,
		Review: &models.Review{
			ReviewerID: "requester",
			Rating:     rating,
			Comment:    "review " + id,
			CreatedAt:  time.Now().Add(-age),
		},
	}
}

func TestGetMatchDetailsAttachesRecentReviews(t *testing.T) {
	svc := newMatchService(socialProfile("friend-1", 4.5))
	repo := &stubBookingRepo{}
	for i, age := range []time.Duration{6, 1, 4, 2, 5, 3, 7} {
		id := string(rune('a' + i))
		repo.bookings = append(repo.bookings, reviewedBooking(id, "friend-1", 4, age*time.Hour))
	}
	// Completed but unreviewed bookings still count toward stats.
	repo.bookings = append(repo.bookings, models.Booking{
		ID: "h", UserID: "requester", FriendID: "friend-1", Status: models.StatusCompleted,
	})
	svc.BookingRepo = repo

	details, err := svc.GetMatchDetails(context.Background(), "friend-1")
	if err != nil {
		t.Fatalf("GetMatchDetails: %v", err)
	}
	if details == nil || details.Profile == nil || details.Profile.UserID != "friend-1" {
		t.Fatalf("details = %+v, want friend-1 profile", details)
	}
	if len(details.RecentReviews) != 5 {
		t.Fatalf("recent reviews = %d, want 5", len(details.RecentReviews))
	}
	for i := 1; i < len(details.RecentReviews); i++ {
		if details.RecentReviews[i].CreatedAt.After(details.RecentReviews[i-1].CreatedAt) {
			t.Fatal("recent reviews not ordered newest first")
		}
	}
	if details.Stats.CompletedBookings != 8 {
		t.Errorf("completed bookings = %d, want 8", details.Stats.CompletedBookings)
	}
	if details.Stats.ReviewCount != 7 {
		t.Errorf("review count = %d, want 7", details.Stats.ReviewCount)
	}
	if details.Stats.AverageRating != 4 {
		t.Errorf("average rating = %v, want 4", details.Stats.AverageRating)
	}
}

func TestGetMatchDetailsUnknownCompanion(t *testing.T) {
	svc := newMatchService(socialProfile("friend-1", 4.5))
	svc.BookingRepo = &stubBookingRepo{}

	details, err := svc.GetMatchDetails(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetMatchDetails: %v", err)
	}
	if details != nil {
		t.Fatalf("details = %+v, want nil for unknown companion", details)
	}
}

func TestFindMatchesRadiusFilter(t *testing.T) {
	near := socialProfile("near", 4.0)
	near.Location = models.GeoPoint{Type: "Point", Coordinates: []float64{-73.99, 40.73}}
	far := socialProfile("far", 5.0)
	far.Location = models.GeoPoint{Type: "Point", Coordinates: []float64{-118.24, 34.05}}

	svc := newMatchService(near, far)
	matches, _, err := svc.FindMatches(context.Background(), models.MatchRequest{
		Category: models.CategorySocial,
		Location: models.MatchPlace{Coordinates: []float64{-74.00, 40.71}}, // NYC
		Duration: 1,
	})
	if err != nil {
		t.Fatalf("FindMatches: %v", err)
	}
	if len(matches) != 1 || matches[0].Friend.UserID != "near" {
		t.Fatalf("radius filter kept %v, want only the nearby companion", matches)
	}
}

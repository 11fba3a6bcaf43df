package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "solace/database/repository/booking"
	profileRepo "solace/database/repository/profile"
	"solace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// fakeBookingRepo is an in-memory BookingRepository. Reads return
// copies, like a real store.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *fakeBookingRepo) Create(b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.bookings[b.ID] = *b
	return nil
}

func (r *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *fakeBookingRepo) Update(b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return errors.New("no document")
	}
	b.UpdatedAt = time.Now()
	r.bookings[b.ID] = *b
	return nil
}

func (r *fakeBookingRepo) List(filter bookingRepo.BookingListFilter) ([]models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.FriendID != "" && b.FriendID != filter.FriendID {
			continue
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, s := range filter.Statuses {
				if b.Status == s {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListByParticipant(userID string, statuses []string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID || b.FriendID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) AppendCheckIn(id string, checkIn models.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return errors.New("no document")
	}
	b.CheckIns = append(b.CheckIns, checkIn)
	r.bookings[id] = b
	return nil
}

func (r *fakeBookingRepo) AppendMessage(id string, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return errors.New("no document")
	}
	b.Messages = append(b.Messages, msg)
	r.bookings[id] = b
	return nil
}

func (r *fakeBookingRepo) MarkMessagesRead(id, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return errors.New("no document")
	}
	for i := range b.Messages {
		if b.Messages[i].SenderID != readerID {
			b.Messages[i].IsRead = true
		}
	}
	r.bookings[id] = b
	return nil
}

type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]models.User
	ratingCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User)}
}

func (r *fakeUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (r *fakeUserRepo) GetAll() ([]models.User, error)                { return nil, nil }

func (r *fakeUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Update(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Deactivate(id string) error { return nil }

func (r *fakeUserRepo) IncrementRating(id string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Rating = (u.Rating*float64(u.ReviewCount) + float64(rating)) / float64(u.ReviewCount+1)
	u.ReviewCount++
	r.users[id] = u
	r.ratingCalls++
	return nil
}

func (r *fakeUserRepo) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	return r.GetByID(id)
}

type fakeProfileRepo struct {
	mu         sync.Mutex
	profiles   map[string]models.ProviderProfile // keyed by userID
	statsCalls int
	earnings   float64
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]models.ProviderProfile)}
}

func (r *fakeProfileRepo) GetByID(id string) (*models.ProviderProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) GetByUserID(userID string) (*models.ProviderProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProfileRepo) Create(p *models.ProviderProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = *p
	return nil
}

func (r *fakeProfileRepo) Update(p *models.ProviderProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = *p
	return nil
}

func (r *fakeProfileRepo) Search(criteria profileRepo.ProfileSearchCriteria) ([]models.ProviderProfile, error) {
	return nil, nil
}

func (r *fakeProfileRepo) ListRecommended(limit int) ([]models.ProviderProfile, error) {
	return nil, nil
}

func (r *fakeProfileRepo) IncrementBookingStats(userID string, earnings float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsCalls++
	r.earnings += earnings
	return nil
}

func (r *fakeProfileRepo) IncrementPackageRating(userID, packageID string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.profiles[userID]
	for i := range p.PresencePackages {
		if p.PresencePackages[i].ID == packageID {
			pkg := &p.PresencePackages[i]
			pkg.Rating = (pkg.Rating*float64(pkg.ReviewCount) + float64(rating)) / float64(pkg.ReviewCount+1)
			pkg.ReviewCount++
		}
	}
	r.profiles[userID] = p
	return nil
}

const (
	testRequester = "user-1"
	testCompanion = "friend-1"
)

func newTestService(t *testing.T) (*DefaultBookingService, *fakeBookingRepo, *fakeUserRepo, *fakeProfileRepo) {
	t.Helper()
	repo := newFakeBookingRepo()
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()

	users.Create(&models.User{ID: testRequester, IsActive: true})
	users.Create(&models.User{ID: testCompanion, IsFriend: true, IsActive: true})
	profiles.Create(&models.ProviderProfile{
		ID:     "profile-1",
		UserID: testCompanion,
		PresencePackages: []models.PresencePackage{
			{ID: "pkg-1", Category: models.CategorySocial, HourlyRate: 500, IsActive: true},
		},
		IsActive: true,
	})

	svc := NewDefaultBookingService(repo, users, profiles, zap.NewNop())
	return svc, repo, users, profiles
}

func requester() Actor { return Actor{ID: testRequester, Role: models.RoleUser} }
func companion() Actor { return Actor{ID: testCompanion, Role: models.RoleUser} }

func createTestBooking(t *testing.T, svc *DefaultBookingService) *models.Booking {
	t.Helper()
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	b, err := svc.Create(context.Background(), requester(), CreateBookingInput{
		FriendID:  testCompanion,
		PackageID: "pkg-1",
		Situation: models.Situation{
			Description: "dinner party plus one",
			Category:    models.CategorySocial,
			Urgency:     models.UrgencyFlexible,
		},
		StartTime: start.Format(time.RFC3339),
		EndTime:   start.Add(3 * time.Hour).Format(time.RFC3339),
		Location:  models.BookingLocation{Address: "12 Main St"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return b
}

func forceStatus(t *testing.T, repo *fakeBookingRepo, id, status string) {
	t.Helper()
	b, _ := repo.GetByID(id)
	b.Status = status
	if err := repo.Update(b); err != nil {
		t.Fatalf("force status: %v", err)
	}
}

func TestCreateBooking(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	b := createTestBooking(t, svc)

	if b.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if b.Payment.Status != models.PaymentPending {
		t.Errorf("payment status = %q, want pending", b.Payment.Status)
	}
	if len(b.SafetyCode) != 4 {
		t.Errorf("safety code = %q, want 4 digits", b.SafetyCode)
	}
	if b.Pricing.Subtotal != 1500 || b.Pricing.PlatformFee != 375 ||
		b.Pricing.TotalAmount != 1875 || b.Pricing.FriendEarnings != 1125 {
		t.Errorf("pricing = %+v, want 1500/375/1875/1125", b.Pricing)
	}
}

func TestCreateBookingRejectsNonCompanion(t *testing.T) {
	svc, _, users, _ := newTestService(t)
	users.Create(&models.User{ID: "civilian", IsActive: true})

	_, err := svc.Create(context.Background(), requester(), CreateBookingInput{
		FriendID:  "civilian",
		PackageID: "pkg-1",
		Situation: models.Situation{Category: models.CategorySocial},
		StartTime: time.Now().Format(time.RFC3339),
		EndTime:   time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateBookingValidatesTimes(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	start := time.Now().Add(24 * time.Hour)

	_, err := svc.Create(context.Background(), requester(), CreateBookingInput{
		FriendID:  testCompanion,
		PackageID: "pkg-1",
		Situation: models.Situation{Category: models.CategorySocial},
		StartTime: start.Format(time.RFC3339),
		EndTime:   start.Add(-time.Hour).Format(time.RFC3339),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, ok := verr.Fields["endTime"]; !ok {
		t.Fatalf("fields = %v, want endTime entry", verr.Fields)
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusInProgress, false},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusConfirmed, models.StatusInProgress, true},
		{models.StatusConfirmed, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusCompleted, false},
		{models.StatusInProgress, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusCancelled, false},
		{models.StatusInProgress, models.StatusPending, false},
		{models.StatusCompleted, models.StatusCompleted, false},
		{models.StatusCompleted, models.StatusPending, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
		{models.StatusDisputed, models.StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			svc, repo, _, _ := newTestService(t)
			b := createTestBooking(t, svc)
			forceStatus(t, repo, b.ID, tt.from)

			updated, err := svc.UpdateStatus(context.Background(), requester(), b.ID, tt.to)
			if tt.allowed {
				if err != nil {
					t.Fatalf("transition rejected: %v", err)
				}
				if updated.Status != tt.to {
					t.Fatalf("status = %q, want %q", updated.Status, tt.to)
				}
				return
			}

			var terr *InvalidTransitionError
			if !errors.As(err, &terr) {
				t.Fatalf("err = %v, want InvalidTransitionError", err)
			}
			after, _ := repo.GetByID(b.ID)
			if after.Status != tt.from {
				t.Fatalf("status changed on rejected transition: %q", after.Status)
			}
		})
	}
}

func TestCompletionPaysOutOnce(t *testing.T) {
	svc, repo, _, profiles := newTestService(t)
	b := createTestBooking(t, svc)
	forceStatus(t, repo, b.ID, models.StatusInProgress)

	done, err := svc.UpdateStatus(context.Background(), companion(), b.ID, models.StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Payment.Status != models.PaymentReleased {
		t.Errorf("payment status = %q, want released", done.Payment.Status)
	}

	// Re-requesting completion is rejected and must not pay again.
	if _, err := svc.UpdateStatus(context.Background(), companion(), b.ID, models.StatusCompleted); err == nil {
		t.Fatal("repeat completion accepted")
	}
	if profiles.statsCalls != 1 {
		t.Fatalf("stats incremented %d times, want 1", profiles.statsCalls)
	}
	if profiles.earnings != 1125 {
		t.Fatalf("earnings = %v, want 1125", profiles.earnings)
	}
}

func TestCancelPendingBooking(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	b := createTestBooking(t, svc)

	cancelled, err := svc.Cancel(context.Background(), requester(), b.ID, "plans changed")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	if cancelled.Payment.Status != models.PaymentRefunded {
		t.Errorf("payment status = %q, want refunded", cancelled.Payment.Status)
	}
	if cancelled.Cancellation == nil || cancelled.Cancellation.RefundAmount != b.Pricing.TotalAmount {
		t.Errorf("cancellation = %+v, want full refund of %v", cancelled.Cancellation, b.Pricing.TotalAmount)
	}

	// Cancelling again fails.
	if _, err := svc.Cancel(context.Background(), requester(), b.ID, "again"); err == nil {
		t.Fatal("second cancel accepted")
	}
}

func TestCancelRejectsInProgress(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	b := createTestBooking(t, svc)
	forceStatus(t, repo, b.ID, models.StatusInProgress)

	if _, err := svc.Cancel(context.Background(), requester(), b.ID, ""); err == nil {
		t.Fatal("cancel of in-progress booking accepted")
	}
}

func TestAuthorization(t *testing.T) {
	svc, _, users, _ := newTestService(t)
	b := createTestBooking(t, svc)
	users.Create(&models.User{ID: "stranger", IsActive: true})

	if _, err := svc.GetByID(context.Background(), Actor{ID: "stranger", Role: models.RoleUser}, b.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
	// Admins can read any booking.
	if _, err := svc.GetByID(context.Background(), Actor{ID: "ops", Role: models.RoleAdmin}, b.ID); err != nil {
		t.Fatalf("admin read rejected: %v", err)
	}
}

func TestMarkPaymentConfirmed(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	b := createTestBooking(t, svc)

	confirmed, err := svc.MarkPaymentConfirmed(context.Background(), requester(), b.ID, "pi_123")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != models.StatusConfirmed {
		t.Errorf("status = %q, want confirmed", confirmed.Status)
	}
	if confirmed.Payment.Status != models.PaymentHeld {
		t.Errorf("payment status = %q, want held", confirmed.Payment.Status)
	}
	if confirmed.Payment.PaymentIntentID != "pi_123" {
		t.Errorf("intent id = %q, want pi_123", confirmed.Payment.PaymentIntentID)
	}

	// Pricing snapshot survives the transition untouched.
	if confirmed.Pricing != b.Pricing {
		t.Errorf("pricing changed across transition: %+v vs %+v", confirmed.Pricing, b.Pricing)
	}
}

func TestConcurrentReviewsBothPersist(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	b := createTestBooking(t, svc)
	forceStatus(t, repo, b.ID, models.StatusCompleted)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, actor := range []Actor{requester(), companion()} {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			_, err := svc.SubmitReview(context.Background(), a, b.ID, ReviewInput{Rating: 5})
			errs <- err
		}(actor)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("review failed: %v", err)
		}
	}

	after, _ := repo.GetByID(b.ID)
	if after.Review == nil || after.FriendReview == nil {
		t.Fatalf("reviews clobbered: review=%v friendReview=%v", after.Review, after.FriendReview)
	}
	if after.Review.ReviewerID != testRequester || after.FriendReview.ReviewerID != testCompanion {
		t.Fatalf("reviewer ids wrong: %q / %q", after.Review.ReviewerID, after.FriendReview.ReviewerID)
	}
}

func TestReviewOncePerRole(t *testing.T) {
	svc, repo, users, profiles := newTestService(t)
	b := createTestBooking(t, svc)
	forceStatus(t, repo, b.ID, models.StatusCompleted)

	if _, err := svc.SubmitReview(context.Background(), requester(), b.ID, ReviewInput{Rating: 4}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := svc.SubmitReview(context.Background(), requester(), b.ID, ReviewInput{Rating: 5}); err == nil {
		t.Fatal("duplicate review accepted")
	}

	// Only the requester's review feeds the companion aggregates.
	if users.ratingCalls != 1 {
		t.Fatalf("user rating advanced %d times, want 1", users.ratingCalls)
	}
	if _, err := svc.SubmitReview(context.Background(), companion(), b.ID, ReviewInput{Rating: 5}); err != nil {
		t.Fatalf("companion review: %v", err)
	}
	if users.ratingCalls != 1 {
		t.Fatal("companion review advanced requester-side aggregates")
	}
	prof, _ := profiles.GetByUserID(testCompanion)
	if prof.PresencePackages[0].ReviewCount != 1 {
		t.Fatalf("package review count = %d, want 1", prof.PresencePackages[0].ReviewCount)
	}
}

func TestReviewRequiresCompletion(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	b := createTestBooking(t, svc)

	_, err := svc.SubmitReview(context.Background(), requester(), b.ID, ReviewInput{Rating: 5})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestDisputeLifecycle(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	b := createTestBooking(t, svc)
	forceStatus(t, repo, b.ID, models.StatusCompleted)

	disputed, err := svc.OpenDispute(context.Background(), requester(), b.ID, "no-show", "companion never arrived")
	if err != nil {
		t.Fatalf("open dispute: %v", err)
	}
	if disputed.Status != models.StatusDisputed || disputed.Dispute == nil {
		t.Fatalf("dispute not recorded: %+v", disputed)
	}

	// Non-admins cannot resolve.
	if _, err := svc.ResolveDispute(context.Background(), requester(), b.ID, "refund", 100); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}

	admin := Actor{ID: "ops", Role: models.RoleAdmin}
	resolved, err := svc.ResolveDispute(context.Background(), admin, b.ID, "partial refund issued", 500)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != models.StatusCancelled {
		t.Errorf("status = %q, want cancelled after refund", resolved.Status)
	}
	if resolved.Payment.Status != models.PaymentRefunded || resolved.Payment.RefundAmount != 500 {
		t.Errorf("payment = %+v, want refunded 500", resolved.Payment)
	}
	if resolved.Dispute.Status != models.DisputeResolved {
		t.Errorf("dispute status = %q, want resolved", resolved.Dispute.Status)
	}
}

func TestDisputeResolvedWithoutRefund(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	b := createTestBooking(t, svc)
	forceStatus(t, repo, b.ID, models.StatusCompleted)

	if _, err := svc.OpenDispute(context.Background(), companion(), b.ID, "payment", ""); err != nil {
		t.Fatalf("open dispute: %v", err)
	}
	admin := Actor{ID: "ops", Role: models.RoleAdmin}
	resolved, err := svc.ResolveDispute(context.Background(), admin, b.ID, "claim rejected", 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed when no refund", resolved.Status)
	}
}

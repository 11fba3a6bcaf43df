package match

import (
	"testing"

	"solace/models"
)

func weddingProfile() *models.ProviderProfile {
	return &models.ProviderProfile{
		ID:     "profile-1",
		UserID: "friend-1",
		PresencePackages: []models.PresencePackage{
			{
				ID:          "pkg-1",
				Category:    models.CategoryWedding,
				Description: "Plus one for wedding receptions",
				HourlyRate:  100,
				Rating:      4.6,
				IsActive:    true,
			},
		},
		ResponseRate: 95,
		VerificationStatus: models.VerificationFlags{
			IDVerified: true,
		},
	}
}

func TestScoreWeddingSpecialist(t *testing.T) {
	p := weddingProfile()
	result := Score(p, "need a date for my cousin's wedding", models.CategoryWedding, models.UrgencyFlexible, nil)

	// 30 category + 20 rating + 10 verified + 10 response rate.
	if result.Score < 70 {
		t.Fatalf("score = %d, want >= 70", result.Score)
	}
	if result.RecommendedPackage == nil || result.RecommendedPackage.ID != "pkg-1" {
		t.Fatalf("recommended package = %+v, want pkg-1", result.RecommendedPackage)
	}
	if len(result.Reasons) == 0 || result.Reasons[0] != "Specializes in wedding events" {
		t.Fatalf("reasons = %v, want category reason first", result.Reasons)
	}
}

func TestScoreBounds(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.ProviderProfile
	}{
		{"empty profile", &models.ProviderProfile{}},
		{"maxed out", &models.ProviderProfile{
			PresencePackages: []models.PresencePackage{
				{Category: models.CategoryWedding, Rating: 5, IsActive: true},
			},
			Specialties:    []string{"wedding"},
			Skills:         []string{"dancing", "conversation", "etiquette"},
			ResponseRate:   100,
			CompletionRate: 100,
			TotalBookings:  50,
			IsAvailableNow: true,
			VerificationStatus: models.VerificationFlags{
				IDVerified:        true,
				BackgroundChecked: true,
				VideoIntro:        true,
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Score(tt.profile, "wedding party", models.CategoryWedding, models.UrgencyUrgent,
				[]string{"dancing", "conversation", "etiquette"})
			if r.Score < 0 || r.Score > 100 {
				t.Errorf("score = %d, want within [0,100]", r.Score)
			}
			if len(r.Reasons) > 4 {
				t.Errorf("got %d reasons, want at most 4", len(r.Reasons))
			}
		})
	}
}

func TestScoreMonotonicOnVerification(t *testing.T) {
	p := weddingProfile()
	p.VerificationStatus.IDVerified = false
	before := Score(p, "wedding", models.CategoryWedding, models.UrgencyFlexible, nil).Score

	p.VerificationStatus.IDVerified = true
	after := Score(p, "wedding", models.CategoryWedding, models.UrgencyFlexible, nil).Score

	if after < before {
		t.Fatalf("score decreased after verification: %d -> %d", before, after)
	}
}

func TestScoreIgnoresInactivePackages(t *testing.T) {
	p := weddingProfile()
	p.PresencePackages[0].IsActive = false

	r := Score(p, "wedding", models.CategoryWedding, models.UrgencyFlexible, nil)
	if r.RecommendedPackage != nil {
		t.Fatalf("recommended inactive package %+v", r.RecommendedPackage)
	}
	for _, reason := range r.Reasons {
		if reason == "Specializes in wedding events" {
			t.Fatal("category bonus granted with no active package")
		}
	}
}

func TestScorePackageTieKeepsFirst(t *testing.T) {
	p := weddingProfile()
	second := p.PresencePackages[0]
	second.ID = "pkg-2"
	p.PresencePackages = append(p.PresencePackages, second)

	r := Score(p, "something unrelated", models.CategoryWedding, models.UrgencyFlexible, nil)
	if r.RecommendedPackage == nil || r.RecommendedPackage.ID != "pkg-1" {
		t.Fatalf("tie broke to %+v, want first package", r.RecommendedPackage)
	}
}

func TestScoreSkipsEmptyRequirements(t *testing.T) {
	p := weddingProfile()
	p.Skills = []string{"dancing"}

	with := Score(p, "wedding", models.CategoryWedding, models.UrgencyFlexible, []string{""})
	without := Score(p, "wedding", models.CategoryWedding, models.UrgencyFlexible, nil)
	if with.Score != without.Score {
		t.Fatalf("empty requirement changed score: %d vs %d", with.Score, without.Score)
	}
}

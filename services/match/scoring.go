package match

import (
	"fmt"
	"strings"

	"solace/models"
)

const maxReasons = 4

// ScoreResult is the outcome of scoring one companion profile against a
// situation.
type ScoreResult struct {
	Score              int
	Reasons            []string
	RecommendedPackage *models.PresencePackage
}

// Score computes a compatibility score in [0,100] for one profile against
// one situation. It is a pure function: deterministic, no hidden state.
// Bonuses accumulate additively and the total is capped at 100; reasons
// keep append order and are truncated to the first four.
func Score(profile *models.ProviderProfile, situation, category, urgency string, requirements []string) ScoreResult {
	score := 0
	var reasons []string
	situationLower := strings.ToLower(situation)

	// Category match. A companion with no matching active package skips
	// the package-dependent bonuses but stays scorable on the rest.
	var matching []*models.PresencePackage
	for i := range profile.PresencePackages {
		pkg := &profile.PresencePackages[i]
		if pkg.Category == category && pkg.IsActive {
			matching = append(matching, pkg)
		}
	}

	var best *models.PresencePackage
	if len(matching) > 0 {
		score += 30
		reasons = append(reasons, fmt.Sprintf("Specializes in %s events", category))

		bestScore := 0.0
		for _, pkg := range matching {
			pkgScore := pkg.Rating * 10
			for _, kw := range strings.Fields(strings.ToLower(pkg.Description)) {
				if strings.Contains(situationLower, kw) {
					pkgScore += 5
				}
			}
			// Strict greater-than keeps the first package on ties.
			if best == nil || pkgScore > bestScore {
				bestScore = pkgScore
				best = pkg
			}
		}
	}

	// Rating bonus, higher threshold wins.
	avg := profile.AverageRating()
	switch {
	case avg >= 4.5:
		score += 20
		reasons = append(reasons, "Top-rated companion (4.5+)")
	case avg >= 4.0:
		score += 10
		reasons = append(reasons, "Highly rated")
	}

	// Verification bonuses, each independent and additive.
	if profile.VerificationStatus.IDVerified {
		score += 10
		reasons = append(reasons, "ID verified")
	}
	if profile.VerificationStatus.BackgroundChecked {
		score += 10
		reasons = append(reasons, "Background checked")
	}
	if profile.VerificationStatus.VideoIntro {
		score += 5
		reasons = append(reasons, "Video introduction available")
	}

	if profile.ResponseRate >= 90 {
		score += 10
		reasons = append(reasons, "Very responsive")
	}
	if profile.CompletionRate >= 95 {
		score += 10
		reasons = append(reasons, "Excellent completion rate")
	}
	if profile.TotalBookings >= 10 {
		score += 10
		reasons = append(reasons, "Experienced companion")
	}

	if urgency == models.UrgencyUrgent && profile.IsAvailableNow {
		score += 15
		reasons = append(reasons, "Available now for urgent request")
	}

	// Only one specialty bonus per companion: first hit stops the scan.
	for _, specialty := range profile.Specialties {
		if specialty == "" {
			continue
		}
		if strings.Contains(situationLower, strings.ToLower(specialty)) {
			score += 8
			reasons = append(reasons, fmt.Sprintf("Expert in %s", specialty))
			break
		}
	}

	// Requirement overlap: +5 per matched requirement, uncapped.
	skillMatches := 0
	for _, req := range requirements {
		if req == "" {
			continue
		}
		reqLower := strings.ToLower(req)
		for _, skill := range profile.Skills {
			if strings.Contains(strings.ToLower(skill), reqLower) {
				skillMatches++
				break
			}
		}
	}
	if skillMatches > 0 {
		score += skillMatches * 5
		reasons = append(reasons, "Matches your specific requirements")
	}

	if score > 100 {
		score = 100
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return ScoreResult{
		Score:              score,
		Reasons:            reasons,
		RecommendedPackage: best,
	}
}

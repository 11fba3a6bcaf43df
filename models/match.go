package models

// Match is an ephemeral match result. It is never persisted.
type Match struct {
	Friend             ProviderProfile  `json:"friend"`
	Compatibility      int              `json:"compatibility"` // 0-100
	Reasons            []string         `json:"reasons"`       // capped at 4, append order
	RecommendedPackage *PresencePackage `json:"recommendedPackage,omitempty"`
	EstimatedTotal     *float64         `json:"estimatedTotal,omitempty"` // nil when no package matched
}

// MatchRequest is the structured situation a requester submits to the
// match engine.
type MatchRequest struct {
	Situation    string     `json:"situation" binding:"required"`
	Category     string     `json:"category" binding:"required,situationcategory"`
	Date         string     `json:"date,omitempty"`
	Duration     int        `json:"duration" binding:"required,min=1"`
	Location     MatchPlace `json:"location"`
	Budget       *RateBand  `json:"budget,omitempty"`
	Urgency      string     `json:"urgency,omitempty" binding:"omitempty,situationurgency"`
	VerifiedOnly bool       `json:"verifiedOnly,omitempty"`
	Requirements []string   `json:"requirements,omitempty"`
}

// MatchPlace is the requested location with optional coordinates.
type MatchPlace struct {
	Address     string    `json:"address"`
	Coordinates []float64 `json:"coordinates,omitempty"` // [lng, lat]
}

// RateBand is an optional hourly-rate filter.
type RateBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

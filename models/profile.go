package models

import "time"

// PresencePackage is a companion's priced offering for one category.
// Rating is a cumulative running mean over ReviewCount reviews; it is
// only ever advanced incrementally, never recomputed from scratch.
type PresencePackage struct {
	ID            string    `bson:"id" json:"id"`
	Title         string    `bson:"title" json:"title"`
	Category      string    `bson:"category" json:"category"`
	Description   string    `bson:"description" json:"description"`
	HourlyRate    float64   `bson:"hourlyRate" json:"hourlyRate"` // constrained to [20,200]
	MinHours      int       `bson:"minHours" json:"minHours"`
	MaxHours      int       `bson:"maxHours" json:"maxHours"`
	Requirements  []string  `bson:"requirements,omitempty" json:"requirements,omitempty"`
	WhatsIncluded []string  `bson:"whatsIncluded,omitempty" json:"whatsIncluded,omitempty"`
	IsActive      bool      `bson:"isActive" json:"isActive"`
	Rating        float64   `bson:"rating" json:"rating"`
	ReviewCount   int       `bson:"reviewCount" json:"reviewCount"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// Availability is one weekly availability window.
type Availability struct {
	Day         string `bson:"day" json:"day"`
	StartTime   string `bson:"startTime" json:"startTime"`
	EndTime     string `bson:"endTime" json:"endTime"`
	IsAvailable bool   `bson:"isAvailable" json:"isAvailable"`
}

// VerificationFlags are the per-profile verification sub-flags.
type VerificationFlags struct {
	IDVerified        bool `bson:"idVerified" json:"idVerified"`
	BackgroundChecked bool `bson:"backgroundChecked" json:"backgroundChecked"`
	VideoIntro        bool `bson:"videoIntro" json:"videoIntro"`
	PhoneVerified     bool `bson:"phoneVerified" json:"phoneVerified"`
	EmailVerified     bool `bson:"emailVerified" json:"emailVerified"`
}

// ProviderProfile holds the companion-side data for a user with IsFriend.
// Exactly one profile exists per companion user.
type ProviderProfile struct {
	ID                 string            `bson:"id" json:"id"`
	UserID             string            `bson:"userId" json:"userId"`
	Bio                string            `bson:"bio" json:"bio"`
	Headline           string            `bson:"headline,omitempty" json:"headline,omitempty"`
	Specialties        []string          `bson:"specialties,omitempty" json:"specialties,omitempty"`
	Skills             []string          `bson:"skills,omitempty" json:"skills,omitempty"`
	Experience         string            `bson:"experience,omitempty" json:"experience,omitempty"`
	Languages          []string          `bson:"languages,omitempty" json:"languages,omitempty"`
	Location           GeoPoint          `bson:"location" json:"location"`
	ServiceRadius      float64           `bson:"serviceRadius" json:"serviceRadius"` // km
	PresencePackages   []PresencePackage `bson:"presencePackages" json:"presencePackages"`
	Availability       []Availability    `bson:"availability,omitempty" json:"availability,omitempty"`
	IsAvailableNow     bool              `bson:"isAvailableNow" json:"isAvailableNow"`
	ResponseTime       int               `bson:"responseTime" json:"responseTime"` // minutes
	ResponseRate       float64           `bson:"responseRate" json:"responseRate"` // percentage
	CompletionRate     float64           `bson:"completionRate" json:"completionRate"`
	TotalBookings      int               `bson:"totalBookings" json:"totalBookings"`
	TotalEarnings      float64           `bson:"totalEarnings" json:"totalEarnings"`
	VerificationStatus VerificationFlags `bson:"verificationStatus" json:"verificationStatus"`
	IsActive           bool              `bson:"isActive" json:"isActive"`
	IsFeatured         bool              `bson:"isFeatured" json:"isFeatured"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// AverageRating returns the mean of the package ratings, 0 when the
// profile has no packages.
func (p *ProviderProfile) AverageRating() float64 {
	if len(p.PresencePackages) == 0 {
		return 0
	}
	var total float64
	for _, pkg := range p.PresencePackages {
		total += pkg.Rating
	}
	return total / float64(len(p.PresencePackages))
}

// PackageByID returns the package with the given id, or nil.
func (p *ProviderProfile) PackageByID(id string) *PresencePackage {
	for i := range p.PresencePackages {
		if p.PresencePackages[i].ID == id {
			return &p.PresencePackages[i]
		}
	}
	return nil
}

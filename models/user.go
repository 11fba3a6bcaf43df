package models

import "time"

// User roles.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// EmergencyContact is the person alerted on SOS escalation.
type EmergencyContact struct {
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	Relationship string `bson:"relationship" json:"relationship"`
}

// User represents a platform account. Companions (providers) are users
// with IsFriend set; their offering data lives in ProviderProfile.
type User struct {
	ID                 string            `bson:"id" json:"id"`
	Email              string            `bson:"email" json:"email"`
	FirstName          string            `bson:"firstName" json:"firstName"`
	LastName           string            `bson:"lastName" json:"lastName"`
	Avatar             string            `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Phone              string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Role               string            `bson:"role" json:"role"`
	IsFriend           bool              `bson:"isFriend" json:"isFriend"`
	IsVerified         bool              `bson:"isVerified" json:"isVerified"`
	VerificationStatus string            `bson:"verificationStatus" json:"verificationStatus"` // pending | in-review | verified | rejected
	Rating             float64           `bson:"rating" json:"rating"`                         // running mean, never recomputed from scratch
	ReviewCount        int               `bson:"reviewCount" json:"reviewCount"`
	EmergencyContact   *EmergencyContact `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	Location           *GeoPoint         `bson:"location,omitempty" json:"location,omitempty"`
	Languages          []string          `bson:"languages,omitempty" json:"languages,omitempty"`
	Bio                string            `bson:"bio,omitempty" json:"bio,omitempty"`
	IsActive           bool              `bson:"isActive" json:"isActive"`
	LastLogin          *time.Time        `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// FullName returns the display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user may perform admin-only operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

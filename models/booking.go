package models

import "time"

// Booking statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusDisputed   = "disputed"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentHeld     = "held"
	PaymentReleased = "released"
	PaymentRefunded = "refunded"
)

// Check-in types.
const (
	CheckInAuto   = "auto"
	CheckInManual = "manual"
	CheckInSOS    = "sos"
)

// Message types.
const (
	MessageText   = "text"
	MessageImage  = "image"
	MessageVoice  = "voice"
	MessageSystem = "system"
)

// Dispute statuses.
const (
	DisputeOpen        = "open"
	DisputeUnderReview = "under-review"
	DisputeResolved    = "resolved"
)

// Situation is the free-text request plus its structured attributes.
type Situation struct {
	Description         string   `bson:"description" json:"description"`
	Category            string   `bson:"category" json:"category"`
	Context             []string `bson:"context,omitempty" json:"context,omitempty"`
	Urgency             string   `bson:"urgency" json:"urgency"`
	SpecialRequirements []string `bson:"specialRequirements,omitempty" json:"specialRequirements,omitempty"`
}

// BookingLocation is where the booking takes place.
type BookingLocation struct {
	Address     string    `bson:"address" json:"address"`
	Coordinates []float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"` // [lng, lat]
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	VenueName   string    `bson:"venueName,omitempty" json:"venueName,omitempty"`
}

// Pricing is the price snapshot computed once at creation. The fields
// are immutable for the lifetime of the booking.
type Pricing struct {
	HourlyRate     float64 `bson:"hourlyRate" json:"hourlyRate"`
	TotalHours     int     `bson:"totalHours" json:"totalHours"`
	Subtotal       float64 `bson:"subtotal" json:"subtotal"`
	PlatformFee    float64 `bson:"platformFee" json:"platformFee"`       // 25% of subtotal
	TotalAmount    float64 `bson:"totalAmount" json:"totalAmount"`       // subtotal + fee
	FriendEarnings float64 `bson:"friendEarnings" json:"friendEarnings"` // 75% of subtotal
}

// Payment tracks the escrow state of the booking's funds.
type Payment struct {
	Status          string     `bson:"status" json:"status"`
	PaymentIntentID string     `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	PaidAt          *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	RefundedAt      *time.Time `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	RefundAmount    float64    `bson:"refundAmount,omitempty" json:"refundAmount,omitempty"`
}

// CheckIn is a timestamped liveness signal. The list on a booking is
// append-only.
type CheckIn struct {
	ID          string    `bson:"id" json:"id"`
	Type        string    `bson:"type" json:"type"` // auto | manual | sos
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	Location    *LatLng   `bson:"location,omitempty" json:"location,omitempty"`
	IsEmergency bool      `bson:"isEmergency" json:"isEmergency"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Message is one chat entry in the booking's append-only log.
type Message struct {
	ID        string    `bson:"id" json:"id"`
	SenderID  string    `bson:"senderId" json:"senderId"`
	Content   string    `bson:"content" json:"content"`
	Type      string    `bson:"type" json:"type"` // text | image | voice | system
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	IsRead    bool      `bson:"isRead" json:"isRead"`
}

// ReviewCategories are per-category sub-ratings, each 1-5.
type ReviewCategories struct {
	Punctuality     int `bson:"punctuality" json:"punctuality"`
	Communication   int `bson:"communication" json:"communication"`
	Professionalism int `bson:"professionalism" json:"professionalism"`
	Overall         int `bson:"overall" json:"overall"`
}

// Review is one party's review of a completed booking.
type Review struct {
	ReviewerID string           `bson:"reviewerId" json:"reviewerId"`
	Rating     int              `bson:"rating" json:"rating"` // 1-5
	Comment    string           `bson:"comment,omitempty" json:"comment,omitempty"`
	Categories ReviewCategories `bson:"categories" json:"categories"`
	CreatedAt  time.Time        `bson:"createdAt" json:"createdAt"`
}

// Cancellation records who cancelled and the full refund issued.
type Cancellation struct {
	CancelledBy  string    `bson:"cancelledBy" json:"cancelledBy"`
	Reason       string    `bson:"reason" json:"reason"`
	CancelledAt  time.Time `bson:"cancelledAt" json:"cancelledAt"`
	RefundAmount float64   `bson:"refundAmount" json:"refundAmount"`
}

// Dispute is the post-completion dispute record with its own sub-state
// machine: open -> under-review -> resolved.
type Dispute struct {
	DisputedBy  string     `bson:"disputedBy" json:"disputedBy"`
	Reason      string     `bson:"reason" json:"reason"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	DisputedAt  time.Time  `bson:"disputedAt" json:"disputedAt"`
	Status      string     `bson:"status" json:"status"`
	Resolution  string     `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ResolvedBy  string     `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// Booking is the central transactional entity. It exclusively owns its
// embedded check-ins, messages, reviews, cancellation, and dispute.
type Booking struct {
	ID           string          `bson:"id" json:"id"`
	UserID       string          `bson:"userId" json:"userId"`     // requester
	FriendID     string          `bson:"friendId" json:"friendId"` // provider
	PackageID    string          `bson:"packageId" json:"packageId"`
	Status       string          `bson:"status" json:"status"`
	Situation    Situation       `bson:"situation" json:"situation"`
	StartTime    time.Time       `bson:"startTime" json:"startTime"`
	EndTime      time.Time       `bson:"endTime" json:"endTime"`
	Duration     int             `bson:"duration" json:"duration"` // hours
	Location     BookingLocation `bson:"location" json:"location"`
	Pricing      Pricing         `bson:"pricing" json:"pricing"`
	Payment      Payment         `bson:"payment" json:"payment"`
	SafetyCode   string          `bson:"safetyCode" json:"safetyCode"` // 4 digits, fixed for the booking's lifetime
	CheckIns     []CheckIn       `bson:"checkIns" json:"checkIns"`
	Messages     []Message       `bson:"messages" json:"messages"`
	Review       *Review         `bson:"review,omitempty" json:"review,omitempty"`
	FriendReview *Review         `bson:"friendReview,omitempty" json:"friendReview,omitempty"`
	Cancellation *Cancellation   `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Dispute      *Dispute        `bson:"dispute,omitempty" json:"dispute,omitempty"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// IsParticipant reports whether userID is the requester or the companion.
func (b *Booking) IsParticipant(userID string) bool {
	return b.UserID == userID || b.FriendID == userID
}

// LastCheckIn returns the most recent check-in, or nil when none exist.
func (b *Booking) LastCheckIn() *CheckIn {
	if len(b.CheckIns) == 0 {
		return nil
	}
	return &b.CheckIns[len(b.CheckIns)-1]
}

// UnreadCount counts messages sent by the other party that the given
// user has not read. Computed on read, never cached.
func (b *Booking) UnreadCount(userID string) int {
	n := 0
	for _, m := range b.Messages {
		if m.SenderID != userID && !m.IsRead {
			n++
		}
	}
	return n
}

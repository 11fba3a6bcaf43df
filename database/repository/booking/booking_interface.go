package bookingRepo

import "solace/models"

// BookingListFilter selects bookings for listing.
type BookingListFilter struct {
	UserID   string // requester side
	FriendID string // companion side
	Statuses []string
	Page     int
	Limit    int
}

// BookingRepository defines methods for booking data access. Mutations
// that read-modify-write a booking are serialized by the booking service;
// append operations use atomic pushes so the embedded lists stay
// append-only at the storage level too.
type BookingRepository interface {
	// Create inserts a new booking record.
	Create(booking *models.Booking) error
	// GetByID retrieves a booking by its unique ID.
	GetByID(id string) (*models.Booking, error)
	// Update replaces the mutable fields of an existing booking record.
	Update(booking *models.Booking) error
	// List returns bookings matching the filter, newest first, plus the
	// total count for pagination.
	List(filter BookingListFilter) ([]models.Booking, int64, error)
	// ListByParticipant returns bookings where the user is requester or
	// companion, optionally narrowed by status.
	ListByParticipant(userID string, statuses []string) ([]models.Booking, error)
	// AppendCheckIn atomically appends a check-in to the booking.
	AppendCheckIn(id string, checkIn models.CheckIn) error
	// AppendMessage atomically appends a chat message to the booking.
	AppendMessage(id string, message models.Message) error
	// MarkMessagesRead marks all messages not sent by readerID as read.
	MarkMessagesRead(id, readerID string) error
}

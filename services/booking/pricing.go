package booking

import (
	"math"
	"time"

	"solace/models"
)

// Platform economics: the marketplace keeps 25% of the subtotal, the
// companion earns the remaining 75%.
const (
	platformFeeRate    = 0.25
	friendEarningsRate = 0.75
)

// DurationHours returns the billed hours for a time window: partial
// hours round up.
func DurationHours(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()))
}

// ComputePricing builds the immutable pricing snapshot for a booking.
// It is computed exactly once at creation and never recalculated.
func ComputePricing(hourlyRate float64, hours int) models.Pricing {
	subtotal := hourlyRate * float64(hours)
	fee := subtotal * platformFeeRate
	return models.Pricing{
		HourlyRate:     hourlyRate,
		TotalHours:     hours,
		Subtotal:       subtotal,
		PlatformFee:    fee,
		TotalAmount:    subtotal + fee,
		FriendEarnings: subtotal * friendEarningsRate,
	}
}

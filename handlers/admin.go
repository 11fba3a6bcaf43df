package handlers

import (
	"net/http"

	"solace/services/booking"
	"solace/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves moderation endpoints. Routes mount it behind the
// admin auth middleware.
type AdminHandler struct {
	BookingSvc booking.BookingService
	PaymentSvc payment.Service
	Logger     *zap.Logger
}

// ResolveDispute settles a dispute, optionally refunding the requester.
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	var in struct {
		Resolution   string  `json:"resolution" binding:"required,max=2000"`
		RefundAmount float64 `json:"refundAmount" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.BookingSvc.ResolveDispute(c.Request.Context(), actorFrom(c), c.Param("bookingId"), in.Resolution, in.RefundAmount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Gateway refund is best effort: the booking already records the
	// authoritative refund amount.
	if in.RefundAmount > 0 {
		if err := h.PaymentSvc.RefundBooking(c.Request.Context(), b); err != nil {
			h.Logger.Error("dispute refund failed at gateway",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	respondOK(c, b)
}

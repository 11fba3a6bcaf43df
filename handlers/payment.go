package handlers

import (
	"net/http"

	"solace/services/payment"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves intents, confirmation, and earnings.
type PaymentHandler struct {
	Svc payment.Service
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var in struct {
		BookingID string `json:"bookingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	intent, err := h.Svc.CreateIntent(c.Request.Context(), actorFrom(c), in.BookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, intent)
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	var in struct {
		BookingID       string `json:"bookingId" binding:"required"`
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.ConfirmBooking(c.Request.Context(), actorFrom(c), in.BookingID, in.PaymentIntentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *PaymentHandler) Earnings(c *gin.Context) {
	summary, err := h.Svc.Earnings(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, summary)
}

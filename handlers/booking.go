package handlers

import (
	"net/http"
	"strconv"

	"solace/services/booking"
	"solace/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking lifecycle.
type BookingHandler struct {
	Svc        booking.BookingService
	PaymentSvc payment.Service
	Logger     *zap.Logger
}

func (h *BookingHandler) Create(c *gin.Context) {
	var in booking.CreateBookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Svc.GetByID(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	asFriend := c.Query("as") == "friend"
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, total, err := h.Svc.List(c.Request.Context(), actorFrom(c), asFriend, status, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, bookings, Meta{Page: page, Limit: limit, Total: total})
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status" binding:"required,oneof=confirmed in-progress completed cancelled"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.UpdateStatus(c.Request.Context(), actorFrom(c), c.Param("id"), in.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var in struct {
		Reason string `json:"reason" binding:"omitempty,max=500"`
	}
	// Body is optional on cancel.
	_ = c.ShouldBindJSON(&in)

	b, err := h.Svc.Cancel(c.Request.Context(), actorFrom(c), c.Param("id"), in.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The cancellation record is authoritative; the gateway refund is
	// retried out of band if this fails.
	if h.PaymentSvc != nil {
		if err := h.PaymentSvc.RefundBooking(c.Request.Context(), b); err != nil {
			h.Logger.Error("cancel refund failed at gateway",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	respondOK(c, b)
}

func (h *BookingHandler) SubmitReview(c *gin.Context) {
	var in booking.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	review, err := h.Svc.SubmitReview(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, review)
}

func (h *BookingHandler) OpenDispute(c *gin.Context) {
	var in struct {
		Reason      string `json:"reason" binding:"required,max=200"`
		Description string `json:"description" binding:"omitempty,max=2000"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.OpenDispute(c.Request.Context(), actorFrom(c), c.Param("id"), in.Reason, in.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, b)
}

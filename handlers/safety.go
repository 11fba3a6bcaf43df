package handlers

import (
	"net/http"

	"solace/services/safety"

	"github.com/gin-gonic/gin"
)

// SafetyHandler serves the safety surface of a booking.
type SafetyHandler struct {
	Svc safety.SafetyService
}

func (h *SafetyHandler) GetStatus(c *gin.Context) {
	status, err := h.Svc.GetStatus(c.Request.Context(), c.GetString("userID"), c.Param("bookingId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, status)
}

func (h *SafetyHandler) CheckInHistory(c *gin.Context) {
	checkIns, err := h.Svc.CheckInHistory(c.Request.Context(), c.GetString("userID"), c.Param("bookingId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, checkIns)
}

func (h *SafetyHandler) CheckIn(c *gin.Context) {
	var in safety.CheckInInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	checkIn, err := h.Svc.CheckIn(c.Request.Context(), c.GetString("userID"), c.Param("id"), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, checkIn)
}

func (h *SafetyHandler) TriggerSOS(c *gin.Context) {
	var in struct {
		BookingID string `json:"bookingId"`
		safety.SOSInput
	}
	// SOS must fire even with an empty or malformed body.
	_ = c.ShouldBindJSON(&in)

	bookingID := in.BookingID
	if bookingID == "" {
		bookingID = c.Param("id")
	}

	checkIn, err := h.Svc.TriggerSOS(c.Request.Context(), c.GetString("userID"), bookingID, in.SOSInput)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, checkIn)
}

func (h *SafetyHandler) VerifyCode(c *gin.Context) {
	var in struct {
		BookingID string `json:"bookingId" binding:"required"`
		Code      string `json:"code" binding:"required,len=4,numeric"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	ok, err := h.Svc.VerifyCode(c.Request.Context(), c.GetString("userID"), in.BookingID, in.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"verified": ok})
}

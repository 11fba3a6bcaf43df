package handlers

import (
	"errors"
	"net/http"

	"solace/services/booking"
	"solace/services/chat"
	"solace/services/payment"
	"solace/services/safety"

	"github.com/gin-gonic/gin"
)

// Meta carries pagination for list responses.
type Meta struct {
	Page  int   `json:"page,omitempty"`
	Limit int   `json:"limit,omitempty"`
	Total int64 `json:"total"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "meta": meta})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondServiceError maps service errors onto HTTP statuses. Unknown
// errors become an opaque 500; the recovery middleware logs details.
func respondServiceError(c *gin.Context, err error) {
	var transition *booking.InvalidTransitionError
	var validation *booking.ValidationError
	var payVerify *booking.PaymentVerificationError

	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, safety.ErrNotFound),
		errors.Is(err, chat.ErrNotFound),
		errors.Is(err, payment.ErrNotFound):
		respondError(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, booking.ErrNotAuthorized),
		errors.Is(err, safety.ErrNotAuthorized),
		errors.Is(err, chat.ErrNotAuthorized),
		errors.Is(err, payment.ErrNotAuthorized):
		respondError(c, http.StatusForbidden, "not authorized for this resource")
	case errors.As(err, &transition):
		respondError(c, http.StatusBadRequest, transition.Error())
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"fields":  validation.Fields,
		})
	case errors.As(err, &payVerify):
		respondError(c, http.StatusBadRequest, "payment verification failed")
	case errors.Is(err, safety.ErrNotActive):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, payment.ErrNotPayable):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// actorFrom builds the service-layer actor from the auth middleware's
// context values.
func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{
		ID:   c.GetString("userID"),
		Role: c.GetString("role"),
	}
}

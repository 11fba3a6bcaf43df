package handlers

import (
	"net/http"
	"strconv"

	"solace/models"
	"solace/services/match"

	"github.com/gin-gonic/gin"
)

// MatchHandler serves the discovery surface.
type MatchHandler struct {
	Svc match.MatchingService
}

// FindMatches scores companions for a situation and returns the top
// three with reasons.
func (h *MatchHandler) FindMatches(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	matches, total, err := h.Svc.FindMatches(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    matches,
		"meta":    gin.H{"totalMatches": total, "situation": req.Situation},
	})
}

// GetRecommended returns the featured companion carousel.
func (h *MatchHandler) GetRecommended(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))
	profiles, err := h.Svc.GetRecommended(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, profiles)
}

// GetMatchDetails returns one companion's profile with recent reviews.
func (h *MatchHandler) GetMatchDetails(c *gin.Context) {
	details, err := h.Svc.GetMatchDetails(c.Request.Context(), c.Param("friendId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if details == nil {
		respondError(c, http.StatusNotFound, "companion not found")
		return
	}
	respondOK(c, details)
}

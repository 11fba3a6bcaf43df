package handlers

import (
	"net/http"

	"solace/services/chat"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves booking messaging and the inbox.
type MessageHandler struct {
	Svc chat.ChatService
}

func (h *MessageHandler) Send(c *gin.Context) {
	var in struct {
		Content string `json:"content" binding:"required,max=2000"`
		Type    string `json:"type" binding:"omitempty,oneof=text image voice system"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	msg, err := h.Svc.SendMessage(c.Request.Context(), c.GetString("userID"), c.Param("id"), in.Content, in.Type)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, msg)
}

func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.Svc.GetMessages(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, messages)
}

func (h *MessageHandler) Conversations(c *gin.Context) {
	convs, err := h.Svc.Conversations(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, convs)
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.Svc.UnreadCount(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"unreadCount": count})
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.Svc.MarkRead(c.Request.Context(), c.GetString("userID"), c.Param("bookingId")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"read": true})
}

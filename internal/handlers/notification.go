package handlers

import (
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// ListNotifications has no backing store; pushes are fire-and-forget and
// nothing is retained, so the history is always empty.
func (nh *NotificationHandler) ListNotifications(c *gin.Context) {
	RespondOK(c, []any{})
}

func (nh *NotificationHandler) MarkRead(c *gin.Context) {
	RespondOK(c, gin.H{"message": "Notification marked as read"})
}

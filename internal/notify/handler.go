package notify

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Khodkerutuja/WaitlistWizard/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Inbox returns the caller's recent notifications, newest first.
func (h *Handler) Inbox(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	entries, err := h.svc.Inbox(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	notifications := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		notifications = append(notifications, json.RawMessage(e))
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

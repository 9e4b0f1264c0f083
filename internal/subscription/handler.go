package subscription

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

func NewHandlerWithRepository(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "true"))

	subs, err := h.repo.ListByUser(c.Request.Context(), userID, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

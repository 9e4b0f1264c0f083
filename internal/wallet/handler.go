package wallet

import (
	"errors"
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

func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	w, err := h.repo.GetByOwner(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) TopUp(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents must be positive"})
		return
	}

	if _, err := h.repo.Deposit(c.Request.Context(), userID, req.AmountCents, "Funds added to wallet"); err != nil {
		h.writeLedgerError(c, err)
		return
	}

	w, err := h.repo.GetByOwner(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet after top up"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "wallet recharged",
		"wallet":  w,
	})
}

func (h *Handler) Withdraw(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents must be positive"})
		return
	}

	if _, err := h.repo.Withdraw(c.Request.Context(), userID, req.AmountCents, "Funds withdrawn from wallet"); err != nil {
		h.writeLedgerError(c, err)
		return
	}

	w, err := h.repo.GetByOwner(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet after withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "withdrawal complete",
		"wallet":  w,
	})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

// AdminAdjust credits or debits any user's wallet outside the booking
// flow. Admin-only; the route is guarded by RequireRole.
func (h *Handler) AdminAdjust(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents is required and must be non-zero"})
		return
	}

	desc := req.Description
	if desc == "" {
		desc = "Admin adjustment"
	}

	if _, err := h.repo.Adjust(c.Request.Context(), targetID, req.AmountCents, desc); err != nil {
		h.writeLedgerError(c, err)
		return
	}

	w, err := h.repo.GetByOwner(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet after adjustment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "wallet adjusted",
		"wallet":  w,
	})
}

func (h *Handler) writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
	case errors.Is(err, ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient wallet balance"})
	case errors.Is(err, ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger operation failed"})
	}
}

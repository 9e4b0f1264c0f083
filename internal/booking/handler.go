package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Khodkerutuja/WaitlistWizard/internal/auth"
	"github.com/Khodkerutuja/WaitlistWizard/internal/inventory"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking payload"})
		return
	}

	b, err := h.svc.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) Pay(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.svc.ProcessPayment(c.Request.Context(), bookingID, userID)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "payment successful",
		"booking": b,
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.svc.CancelBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "booking cancelled",
		"booking": b,
	})
}

func (h *Handler) Reject(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	// Reason is optional; an empty or missing body is fine.
	var req RejectBookingRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.svc.RejectBooking(c.Request.Context(), bookingID, userID, req.Reason)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "booking rejected",
		"booking": b,
	})
}

func (h *Handler) Complete(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.svc.CompleteBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "booking completed",
		"booking": b,
	})
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	role, _ := auth.GetUserRole(c)
	b, err := h.svc.GetBooking(c.Request.Context(), bookingID, userID, role == auth.RoleAdmin)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) ListMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookings, err := h.svc.ListConsumerBookings(c.Request.Context(), userID, Status(c.Query("status")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) ListProvider(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookings, err := h.svc.ListProviderBookings(c.Request.Context(), userID, Status(c.Query("status")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, service.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, inventory.ErrPlanRequired),
		errors.Is(err, service.ErrUnknownPlan):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInventoryExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": "not enough seats available"})
	case errors.Is(err, inventory.ErrActiveSubscriptionExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient wallet balance"})
	case errors.Is(err, wallet.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking operation failed"})
	}
}

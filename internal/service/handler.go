package service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/Khodkerutuja/WaitlistWizard/internal/auth"
)

type Handler struct {
	catalog Catalog
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{catalog: NewCatalog(NewRepository(db))}
}

func NewHandlerWithCatalog(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) Create(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.catalog.Create(c.Request.Context(), providerID, req)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusCreated, svc)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	svc, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, svc)
}

func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		Type:   Type(c.Query("type")),
		Status: Status(c.Query("status")),
	}
	if providerID, err := strconv.Atoi(c.Query("provider_id")); err == nil {
		filter.ProviderID = providerID
	}

	services, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *Handler) Update(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.catalog.Update(c.Request.Context(), providerID, id, req)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, svc)
}

func (h *Handler) SetStatus(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.catalog.SetStatus(c.Request.Context(), providerID, id, req.Status)
	if err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, svc)
}

func (h *Handler) Delete(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), providerID, id); err != nil {
		h.writeCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
}

func (h *Handler) writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the provider may modify this service"})
	case errors.Is(err, ErrInvalidService),
		errors.Is(err, ErrMissingVariant),
		errors.Is(err, ErrDepartureInPast),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPlanPrices),
		errors.Is(err, ErrSeatsBelowBooked):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service operation failed"})
	}
}

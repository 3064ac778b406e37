package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/middleware"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/response"
)

// CatalogHandler wires the seller's shop, location and service endpoints.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// CreateShop godoc
// @Summary Create my shop
// @Description Register the seller's shop; each seller owns at most one
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.ShopRequest true "Shop payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /shops [post]
func (h *CatalogHandler) CreateShop(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	var req dto.ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shop payload"))
		return
	}

	shop, err := h.service.CreateShop(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, shop)
}

// GetShop godoc
// @Summary Get my shop
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /shops [get]
func (h *CatalogHandler) GetShop(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	shop, err := h.service.GetShop(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, shop, nil)
}

// DeleteShop godoc
// @Summary Delete my shop
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /shops [delete]
func (h *CatalogHandler) DeleteShop(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	shop, err := h.service.DeleteShop(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, shop, nil)
}

// AddLocation godoc
// @Summary Add shop location
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.LocationRequest true "Location payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /locations [post]
func (h *CatalogHandler) AddLocation(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid location payload"))
		return
	}

	loc, err := h.service.AddLocation(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, loc)
}

// GetLocation godoc
// @Summary Get shop location
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /locations [get]
func (h *CatalogHandler) GetLocation(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	loc, err := h.service.GetLocation(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, loc, nil)
}

// UpdateLocation godoc
// @Summary Update shop location
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Location id"
// @Param payload body dto.LocationRequest true "Location payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /locations/{id} [put]
func (h *CatalogHandler) UpdateLocation(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid location payload"))
		return
	}

	loc, err := h.service.UpdateLocation(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, loc, nil)
}

// DeleteLocation godoc
// @Summary Delete shop location
// @Tags Catalog
// @Produce json
// @Param id path string true "Location id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /locations/{id} [delete]
func (h *CatalogHandler) DeleteLocation(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	if err := h.service.DeleteLocation(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddService godoc
// @Summary Add a bookable service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.ServiceRequest true "Service payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /services [post]
func (h *CatalogHandler) AddService(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	var req dto.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid service payload"))
		return
	}

	svc, err := h.service.AddService(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, svc)
}

// UpdateService godoc
// @Summary Update a bookable service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service id"
// @Param payload body dto.ServiceRequest true "Service payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /services/{id} [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	var req dto.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid service payload"))
		return
	}

	svc, err := h.service.UpdateService(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, svc, nil)
}

// DeleteService godoc
// @Summary Delete a bookable service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /services/{id} [delete]
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	if err := h.service.DeleteService(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListServices godoc
// @Summary List my shop's services
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, services, nil)
}

package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/middleware"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/response"
)

// BookingHandler wires HTTP endpoints to the booking engine.
type BookingHandler struct {
	service *service.BookingService
	metrics *service.MetricsService
}

// NewBookingHandler creates a new handler. metrics may be nil.
func NewBookingHandler(svc *service.BookingService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Book an appointment
// @Description Reserve a service slot; rejects overlapping or out-of-hours slots
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.BookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	var req dto.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	result, err := h.service.RequestBooking(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.recordOutcome(err)
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordBooking("created")
	}
	response.Created(c, result)
}

// List godoc
// @Summary List my bookings
// @Tags Bookings
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	details, pagination, err := h.service.ListBookings(c.Request.Context(), claims.UserID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, details, pagination)
}

// Get godoc
// @Summary Get one of my bookings
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	detail, err := h.service.GetBooking(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Cancel godoc
// @Summary Cancel a booking
// @Description Move a pending or confirmed booking to CANCELLED
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CancelBookingRequest true "Cancel payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	var req dto.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancel payload"))
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"cancelled": true}, nil)
}

// Receipt godoc
// @Summary Download booking receipt
// @Description Render the booking receipt as a PDF
// @Tags Bookings
// @Produce application/pdf
// @Param id path string true "Booking id"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /bookings/{id}/receipt [get]
func (h *BookingHandler) Receipt(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingIdentity)
		return
	}

	bookingID := c.Param("id")
	data, err := h.service.Receipt(c.Request.Context(), claims.UserID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", bookingID))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *BookingHandler) recordOutcome(err error) {
	if h.metrics == nil {
		return
	}
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrSlotConflict.Code:
		h.metrics.RecordBooking("conflict")
	case appErrors.ErrOutOfHours.Code:
		h.metrics.RecordBooking("out_of_hours")
	default:
		h.metrics.RecordBooking("error")
	}
}

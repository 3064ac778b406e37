package dto

import "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"

// BookingRequest is the payload for requesting an appointment slot.
// Date and time are wall-clock values in the shop's local offset.
type BookingRequest struct {
	ServiceID       string `json:"serviceId" validate:"required"`
	ShopID          string `json:"shopId" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointmentTime" validate:"required,datetime=15:04"`
}

// BookingResult is returned to the caller after a successful booking.
type BookingResult struct {
	Booking *models.Booking        `json:"booking"`
	History *models.BookingHistory `json:"history"`
}

// CancelBookingRequest identifies the booking to cancel.
type CancelBookingRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
}

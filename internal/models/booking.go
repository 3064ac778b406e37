package models

import "time"

// BookingStatus is the lifecycle state of an appointment.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Booking is a committed appointment slot. The half-open interval
// [AppointmentTime, EndTime) per shop must never overlap another booking
// whose status is PENDING or CONFIRMED.
type Booking struct {
	ID              string        `db:"id" json:"id"`
	CustomerID      string        `db:"customer_id" json:"customer_id"`
	ServiceID       string        `db:"service_id" json:"service_id"`
	ShopID          string        `db:"shop_id" json:"shop_id"`
	AppointmentTime time.Time     `db:"appointment_time" json:"appointment_time"`
	EndTime         time.Time     `db:"end_time" json:"end_time"`
	TotalPrice      float64       `db:"total_price" json:"total_price"`
	Status          BookingStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the booking's interval intersects [start, end)
// using half-open semantics, so back-to-back bookings never collide.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.AppointmentTime.Before(end) && b.EndTime.After(start)
}

// Active reports whether the booking still occupies its slot.
func (b *Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// BookingHistory is an append-only audit row written for the initial
// booking and every subsequent status change.
type BookingHistory struct {
	ID        string        `db:"id" json:"id"`
	BookingID string        `db:"booking_id" json:"booking_id"`
	ChangedBy string        `db:"changed_by" json:"changed_by"`
	Status    BookingStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// BookingDetail joins a booking with its service and shop names for
// customer-facing listings and receipts.
type BookingDetail struct {
	Booking
	ServiceTitle string `db:"service_title" json:"service_title"`
	ShopName     string `db:"shop_name" json:"shop_name"`
}

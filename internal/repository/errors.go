package repository

import "errors"

// Sentinel errors surfaced by repositories so services can map them onto
// the HTTP error taxonomy without inspecting SQL state.
var (
	// ErrSlotTaken is returned when the conflict check inside the booking
	// transaction finds an active booking overlapping the requested window.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrTokenRevoked is returned when a revoke targets a token pair whose
	// flags are already set.
	ErrTokenRevoked = errors.New("refresh token already revoked")

	// ErrInvalidTransition is returned when a status update targets a
	// booking whose current status is outside the allowed set.
	ErrInvalidTransition = errors.New("booking status transition not allowed")
)

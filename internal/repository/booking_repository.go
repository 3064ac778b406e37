package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
)

// BookingRepository provides database access for appointment bookings and
// their audit history.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithHistory inserts a booking and its first history row in one
// transaction. The shop row is locked for the duration of the transaction
// so that two requests for overlapping windows serialize: the second one
// observes the first insert and fails with ErrSlotTaken.
func (r *BookingRepository) CreateWithHistory(ctx context.Context, booking *models.Booking, history *models.BookingHistory) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT id FROM shops WHERE id = $1 FOR UPDATE`
	var shopID string
	if err = tx.GetContext(ctx, &shopID, lockQuery, booking.ShopID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock shop row: %w", err)
	}

	const overlapQuery = `SELECT id FROM bookings
WHERE shop_id = $1
  AND appointment_time < $2
  AND end_time > $3
  AND status IN ('PENDING', 'CONFIRMED')
LIMIT 1`
	var conflictID string
	err = tx.GetContext(ctx, &conflictID, overlapQuery, booking.ShopID, booking.EndTime, booking.AppointmentTime)
	if err == nil {
		err = ErrSlotTaken
		return err
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check overlapping bookings: %w", err)
	}
	err = nil

	now := time.Now().UTC()
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now

	const insertBooking = `INSERT INTO bookings (id, customer_id, shop_id, service_id, appointment_time, end_time, total_price, status, created_at, updated_at) VALUES (:id, :customer_id, :shop_id, :service_id, :appointment_time, :end_time, :total_price, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertBooking, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	history.BookingID = booking.ID
	history.CreatedAt = now

	const insertHistory = `INSERT INTO booking_history (id, booking_id, changed_by, status, created_at) VALUES (:id, :booking_id, :changed_by, :status, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertHistory, history); err != nil {
		return fmt.Errorf("insert booking history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

// FindOverlapping returns active bookings of the shop whose window
// intersects [start, end). Used by availability previews.
func (r *BookingRepository) FindOverlapping(ctx context.Context, shopID string, start, end time.Time) ([]models.Booking, error) {
	const query = `SELECT id, customer_id, shop_id, service_id, appointment_time, end_time, total_price, status, created_at, updated_at
FROM bookings
WHERE shop_id = $1
  AND appointment_time < $2
  AND end_time > $3
  AND status IN ('PENDING', 'CONFIRMED')
ORDER BY appointment_time`
	bookings := make([]models.Booking, 0)
	if err := r.db.SelectContext(ctx, &bookings, query, shopID, end, start); err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}
	return bookings, nil
}

// ListByCustomer returns the customer's bookings enriched with service and
// shop names, newest first.
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]models.BookingDetail, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	const query = `SELECT b.id, b.customer_id, b.shop_id, b.service_id, b.appointment_time, b.end_time, b.total_price, b.status, b.created_at, b.updated_at,
       s.title AS service_title, sh.name AS shop_name
FROM bookings b
JOIN services s ON s.id = b.service_id
JOIN shops sh ON sh.id = b.shop_id
WHERE b.customer_id = $1
ORDER BY b.appointment_time DESC
LIMIT $2 OFFSET $3`
	bookings := make([]models.BookingDetail, 0)
	if err := r.db.SelectContext(ctx, &bookings, query, customerID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM bookings WHERE customer_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, customerID); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// FindDetailForCustomer resolves one booking of the customer with the
// service and shop names attached. Other customers' bookings are reported
// as missing.
func (r *BookingRepository) FindDetailForCustomer(ctx context.Context, bookingID, customerID string) (*models.BookingDetail, error) {
	const query = `SELECT b.id, b.customer_id, b.shop_id, b.service_id, b.appointment_time, b.end_time, b.total_price, b.status, b.created_at, b.updated_at,
       s.title AS service_title, sh.name AS shop_name
FROM bookings b
JOIN services s ON s.id = b.service_id
JOIN shops sh ON sh.id = b.shop_id
WHERE b.id = $1 AND b.customer_id = $2
LIMIT 1`
	var detail models.BookingDetail
	if err := r.db.GetContext(ctx, &detail, query, bookingID, customerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking detail: %w", err)
	}
	return &detail, nil
}

// UpdateStatusWithHistory transitions a booking to a new status and writes
// the corresponding history row in one transaction. The booking row is
// locked so the current status read stays valid through the update; only
// transitions out of the allowed set succeed.
func (r *BookingRepository) UpdateStatusWithHistory(ctx context.Context, bookingID, customerID string, newStatus models.BookingStatus, allowedFrom []models.BookingStatus, changedBy string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT status FROM bookings WHERE id = $1 AND customer_id = $2 FOR UPDATE`
	var current models.BookingStatus
	if err = tx.GetContext(ctx, &current, lockQuery, bookingID, customerID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock booking row: %w", err)
	}

	allowed := false
	for _, s := range allowedFrom {
		if current == s {
			allowed = true
			break
		}
	}
	if !allowed {
		err = ErrInvalidTransition
		return err
	}

	now := time.Now().UTC()
	const updateQuery = `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err = tx.ExecContext(ctx, updateQuery, newStatus, now, bookingID); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	history := models.BookingHistory{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		ChangedBy: changedBy,
		Status:    newStatus,
		CreatedAt: now,
	}
	const insertHistory = `INSERT INTO booking_history (id, booking_id, changed_by, status, created_at) VALUES (:id, :booking_id, :changed_by, :status, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertHistory, history); err != nil {
		return fmt.Errorf("insert booking history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit status tx: %w", err)
	}
	return nil
}

// ListHistory returns the audit trail of a booking, oldest first.
func (r *BookingRepository) ListHistory(ctx context.Context, bookingID string) ([]models.BookingHistory, error) {
	const query = `SELECT id, booking_id, changed_by, status, created_at FROM booking_history WHERE booking_id = $1 ORDER BY created_at`
	history := make([]models.BookingHistory, 0)
	if err := r.db.SelectContext(ctx, &history, query, bookingID); err != nil {
		return nil, fmt.Errorf("list booking history: %w", err)
	}
	return history, nil
}

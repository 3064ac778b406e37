package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
)

func testBooking() (*models.Booking, *models.BookingHistory) {
	start := time.Date(2025, 7, 1, 4, 30, 0, 0, time.UTC)
	booking := &models.Booking{
		CustomerID:      "cust-1",
		ServiceID:       "svc-1",
		ShopID:          "shop-1",
		AppointmentTime: start,
		EndTime:         start.Add(30 * time.Minute),
		TotalPrice:      350,
		Status:          models.BookingPending,
	}
	history := &models.BookingHistory{ChangedBy: "cust-1", Status: models.BookingPending}
	return booking, history
}

func TestBookingRepositoryCreateWithHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	booking, history := testBooking()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM shops WHERE id = $1 FOR UPDATE`)).
		WithArgs("shop-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("shop-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM bookings`)).
		WithArgs("shop-1", booking.EndTime, booking.AppointmentTime).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO booking_history`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateWithHistory(context.Background(), booking, history)
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, booking.ID, history.BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateSlotTaken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	booking, history := testBooking()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM shops WHERE id = $1 FOR UPDATE`)).
		WithArgs("shop-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("shop-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM bookings`)).
		WithArgs("shop-1", booking.EndTime, booking.AppointmentTime).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-booking"))
	mock.ExpectRollback()

	err := repo.CreateWithHistory(context.Background(), booking, history)
	require.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateUnknownShop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	booking, history := testBooking()
	booking.ShopID = "ghost-shop"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM shops WHERE id = $1 FOR UPDATE`)).
		WithArgs("ghost-shop").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CreateWithHistory(context.Background(), booking, history)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryUpdateStatusWithHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM bookings WHERE id = $1 AND customer_id = $2 FOR UPDATE`)).
		WithArgs("booking-1", "cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PENDING"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs(models.BookingCancelled, sqlmock.AnyArg(), "booking-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO booking_history`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatusWithHistory(context.Background(), "booking-1", "cust-1", models.BookingCancelled,
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, "cust-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryUpdateStatusRejected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM bookings WHERE id = $1 AND customer_id = $2 FOR UPDATE`)).
		WithArgs("booking-1", "cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("CANCELLED"))
	mock.ExpectRollback()

	err := repo.UpdateStatusWithHistory(context.Background(), "booking-1", "cust-1", models.BookingCancelled,
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, "cust-1")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListByCustomer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	start := time.Date(2025, 7, 1, 4, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "customer_id", "shop_id", "service_id", "appointment_time", "end_time",
		"total_price", "status", "created_at", "updated_at", "service_title", "shop_name",
	}).AddRow("booking-1", "cust-1", "shop-1", "svc-1", start, start.Add(30*time.Minute),
		350.0, "PENDING", start, start, "Haircut", "Fade Factory")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT b.id`)).
		WithArgs("cust-1", 10, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE customer_id = $1`)).
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	details, total, err := repo.ListByCustomer(context.Background(), "cust-1", 1, 10)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Haircut", details[0].ServiceTitle)
	assert.Equal(t, "Fade Factory", details[0].ShopName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

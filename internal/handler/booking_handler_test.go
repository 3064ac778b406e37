package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/middleware"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/repository"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/export"
)

type serviceRepoStub struct {
	services map[string]*models.ServiceWithShop
}

func (s *serviceRepoStub) FindWithShop(ctx context.Context, serviceID, shopID string) (*models.ServiceWithShop, error) {
	svc, ok := s.services[serviceID+"|"+shopID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return svc, nil
}

type bookingRepoStub struct {
	bookings []*models.Booking
	details  map[string]*models.BookingDetail
}

func (s *bookingRepoStub) CreateWithHistory(ctx context.Context, booking *models.Booking, history *models.BookingHistory) error {
	for _, b := range s.bookings {
		if b.ShopID == booking.ShopID && b.Active() && b.Overlaps(booking.AppointmentTime, booking.EndTime) {
			return repository.ErrSlotTaken
		}
	}
	booking.ID = uuid.NewString()
	history.BookingID = booking.ID
	s.bookings = append(s.bookings, booking)
	return nil
}

func (s *bookingRepoStub) ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]models.BookingDetail, int, error) {
	var out []models.BookingDetail
	for _, d := range s.details {
		if d.CustomerID == customerID {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

func (s *bookingRepoStub) FindDetailForCustomer(ctx context.Context, bookingID, customerID string) (*models.BookingDetail, error) {
	d, ok := s.details[bookingID]
	if !ok || d.CustomerID != customerID {
		return nil, sql.ErrNoRows
	}
	return d, nil
}

func (s *bookingRepoStub) UpdateStatusWithHistory(ctx context.Context, bookingID, customerID string, newStatus models.BookingStatus, allowedFrom []models.BookingStatus, changedBy string) error {
	d, ok := s.details[bookingID]
	if !ok || d.CustomerID != customerID {
		return sql.ErrNoRows
	}
	for _, from := range allowedFrom {
		if d.Status == from {
			d.Status = newStatus
			return nil
		}
	}
	return repository.ErrInvalidTransition
}

func newBookingHandlerFixture(t *testing.T) (*BookingHandler, *bookingRepoStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	services := &serviceRepoStub{services: map[string]*models.ServiceWithShop{
		"svc-1|shop-1": {
			Service:       models.Service{ID: "svc-1", ShopID: "shop-1", Title: "Haircut", Price: 350, Duration: 30},
			ShopName:      "Fade Factory",
			ShopOpenTime:  "09:00",
			ShopCloseTime: "17:00",
		},
	}}
	bookings := &bookingRepoStub{details: map[string]*models.BookingDetail{}}

	svc, err := service.NewBookingService(services, bookings, nil, export.NewReceiptExporter(), nil, zap.NewNop(), service.BookingConfig{UTCOffset: "+05:30"})
	require.NoError(t, err)
	return NewBookingHandler(svc, nil), bookings
}

func bookingContext(t *testing.T, method, path string, payload interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "cust-1",
		Role:   models.RoleUser,
		Email:  "customer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	return w, c
}

func TestBookingHandlerCreate(t *testing.T) {
	handler, _ := newBookingHandlerFixture(t)

	w, c := bookingContext(t, http.MethodPost, "/bookings", dto.BookingRequest{
		ServiceID:       "svc-1",
		ShopID:          "shop-1",
		AppointmentDate: "2026-09-01",
		AppointmentTime: "10:00",
	})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data dto.BookingResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "cust-1", envelope.Data.Booking.CustomerID)
	assert.Equal(t, models.BookingPending, envelope.Data.Booking.Status)
}

func TestBookingHandlerCreateWithoutIdentity(t *testing.T) {
	handler, _ := newBookingHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_IDENTITY")
}

func TestBookingHandlerCreateConflict(t *testing.T) {
	handler, _ := newBookingHandlerFixture(t)

	first, c1 := bookingContext(t, http.MethodPost, "/bookings", dto.BookingRequest{
		ServiceID: "svc-1", ShopID: "shop-1", AppointmentDate: "2026-09-01", AppointmentTime: "10:00",
	})
	handler.Create(c1)
	require.Equal(t, http.StatusCreated, first.Code)

	second, c2 := bookingContext(t, http.MethodPost, "/bookings", dto.BookingRequest{
		ServiceID: "svc-1", ShopID: "shop-1", AppointmentDate: "2026-09-01", AppointmentTime: "10:15",
	})
	handler.Create(c2)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Contains(t, second.Body.String(), "SLOT_CONFLICT")
}

func TestBookingHandlerCancel(t *testing.T) {
	handler, repo := newBookingHandlerFixture(t)
	repo.details["bk-1"] = &models.BookingDetail{
		Booking: models.Booking{ID: "bk-1", CustomerID: "cust-1", Status: models.BookingPending},
	}

	w, c := bookingContext(t, http.MethodPost, "/bookings/cancel", dto.CancelBookingRequest{BookingID: "bk-1"})
	handler.Cancel(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingCancelled, repo.details["bk-1"].Status)
}

func TestBookingHandlerReceipt(t *testing.T) {
	handler, repo := newBookingHandlerFixture(t)
	repo.details["bk-1"] = &models.BookingDetail{
		Booking: models.Booking{
			ID:              "bk-1",
			CustomerID:      "cust-1",
			ShopID:          "shop-1",
			AppointmentTime: time.Date(2026, 9, 1, 4, 30, 0, 0, time.UTC),
			EndTime:         time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC),
			TotalPrice:      350,
			Status:          models.BookingConfirmed,
		},
		ServiceTitle: "Haircut",
		ShopName:     "Fade Factory",
	}

	w, c := bookingContext(t, http.MethodGet, "/bookings/bk-1/receipt", nil)
	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	handler.Receipt(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestBookingHandlerGetUnknownBooking(t *testing.T) {
	handler, _ := newBookingHandlerFixture(t)

	w, c := bookingContext(t, http.MethodGet, "/bookings/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

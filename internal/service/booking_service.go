package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/repository"
	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/export"
)

type bookingServiceRepository interface {
	FindWithShop(ctx context.Context, serviceID, shopID string) (*models.ServiceWithShop, error)
}

type bookingRepository interface {
	CreateWithHistory(ctx context.Context, booking *models.Booking, history *models.BookingHistory) error
	ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]models.BookingDetail, int, error)
	FindDetailForCustomer(ctx context.Context, bookingID, customerID string) (*models.BookingDetail, error)
	UpdateStatusWithHistory(ctx context.Context, bookingID, customerID string, newStatus models.BookingStatus, allowedFrom []models.BookingStatus, changedBy string) error
}

type bookingEventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *models.Booking) error
}

type receiptRenderer interface {
	Render(r export.Receipt) ([]byte, error)
}

// BookingConfig tunes the booking engine.
type BookingConfig struct {
	// UTCOffset pins the wall-clock interpretation of appointment dates
	// and shop hours, e.g. "+05:30".
	UTCOffset string
}

// BookingService implements the appointment booking engine: slot requests,
// conflict prevention, listings, cancellation and receipts.
type BookingService struct {
	services  bookingServiceRepository
	bookings  bookingRepository
	publisher bookingEventPublisher
	exporter  receiptRenderer
	validator *validator.Validate
	logger    *zap.Logger
	config    BookingConfig
	location  *time.Location
}

// NewBookingService constructs a BookingService. The publisher may be nil;
// booking events are then skipped.
func NewBookingService(services bookingServiceRepository, bookings bookingRepository, publisher bookingEventPublisher, exporter receiptRenderer, validate *validator.Validate, logger *zap.Logger, config BookingConfig) (*BookingService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	loc, err := parseUTCOffset(config.UTCOffset)
	if err != nil {
		return nil, fmt.Errorf("booking utc offset: %w", err)
	}
	return &BookingService{
		services:  services,
		bookings:  bookings,
		publisher: publisher,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		config:    config,
		location:  loc,
	}, nil
}

// RequestBooking books an appointment slot for the customer. The requested
// window is [start, start+duration) in the shop's local offset; the start
// must fall inside the shop's open hours and the window must not overlap
// any active booking of the same shop.
func (s *BookingService) RequestBooking(ctx context.Context, customerID string, req dto.BookingRequest) (*dto.BookingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	svc, err := s.services.FindWithShop(ctx, req.ServiceID, req.ShopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrServiceNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to resolve service")
	}

	start, err := s.parseLocal(req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment date or time")
	}
	end := start.Add(time.Duration(svc.Duration) * time.Minute)

	open, err := s.parseLocal(req.AppointmentDate, svc.ShopOpenTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid shop open time")
	}
	closeAt, err := s.parseLocal(req.AppointmentDate, svc.ShopCloseTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid shop close time")
	}

	// Only the start is checked against the closing time, so a service
	// started just before close may run past it.
	if start.Before(open) || !start.Before(closeAt) {
		return nil, appErrors.Clone(appErrors.ErrOutOfHours, "")
	}

	booking := &models.Booking{
		CustomerID:      customerID,
		ServiceID:       svc.ID,
		ShopID:          svc.ShopID,
		AppointmentTime: start.UTC(),
		EndTime:         end.UTC(),
		TotalPrice:      svc.Price,
		Status:          models.BookingPending,
	}
	history := &models.BookingHistory{
		ChangedBy: customerID,
		Status:    models.BookingPending,
	}

	if err := s.bookings.CreateWithHistory(ctx, booking, history); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, appErrors.Clone(appErrors.ErrSlotConflict, "")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrServiceNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save booking")
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBookingCreated(ctx, booking); err != nil {
			s.logger.Warn("failed to publish booking event", zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("shop_id", booking.ShopID),
		zap.Time("starts_at", booking.AppointmentTime))

	return &dto.BookingResult{Booking: booking, History: history}, nil
}

// ListBookings returns the customer's bookings with pagination metadata.
func (s *BookingService) ListBookings(ctx context.Context, customerID string, page, limit int) ([]models.BookingDetail, *models.Pagination, error) {
	if customerID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrMissingIdentity, "")
	}
	details, total, err := s.bookings.ListByCustomer(ctx, customerID, page, limit)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list bookings")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	pagination := &models.Pagination{
		Page:       page,
		PageSize:   limit,
		TotalItems: total,
		TotalPages: (total + limit - 1) / limit,
	}
	return details, pagination, nil
}

// GetBooking resolves one booking of the customer.
func (s *BookingService) GetBooking(ctx context.Context, customerID, bookingID string) (*models.BookingDetail, error) {
	detail, err := s.bookings.FindDetailForCustomer(ctx, bookingID, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load booking")
	}
	return detail, nil
}

// CancelBooking moves a pending or confirmed booking to CANCELLED and
// records the change in the history trail.
func (s *BookingService) CancelBooking(ctx context.Context, customerID string, req dto.CancelBookingRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancel payload")
	}

	err := s.bookings.UpdateStatusWithHistory(ctx, req.BookingID, customerID, models.BookingCancelled,
		[]models.BookingStatus{models.BookingPending, models.BookingConfirmed}, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		if errors.Is(err, repository.ErrInvalidTransition) {
			return appErrors.Clone(appErrors.ErrValidation, "booking can no longer be cancelled")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to cancel booking")
	}
	return nil
}

// Receipt renders a PDF receipt for one of the customer's bookings.
func (s *BookingService) Receipt(ctx context.Context, customerID, bookingID string) ([]byte, error) {
	detail, err := s.GetBooking(ctx, customerID, bookingID)
	if err != nil {
		return nil, err
	}

	receipt := export.Receipt{
		BookingID:   detail.ID,
		ShopName:    detail.ShopName,
		Service:     detail.ServiceTitle,
		Status:      string(detail.Status),
		StartsAt:    detail.AppointmentTime.In(s.location).Format("2006-01-02 15:04"),
		EndsAt:      detail.EndTime.In(s.location).Format("2006-01-02 15:04"),
		TotalPrice:  fmt.Sprintf("%.2f", detail.TotalPrice),
		CustomerRef: detail.CustomerID,
	}

	data, err := s.exporter.Render(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return data, nil
}

func (s *BookingService) parseLocal(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	hour, minute, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, s.location), nil
}

func parseClock(clock string) (int, int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("parse clock %q: want HH:mm", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("parse clock %q: bad hour", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("parse clock %q: bad minute", clock)
	}
	return hour, minute, nil
}

func parseUTCOffset(offset string) (*time.Location, error) {
	if offset == "" {
		return time.UTC, nil
	}
	sign := 1
	switch offset[0] {
	case '+':
		offset = offset[1:]
	case '-':
		sign = -1
		offset = offset[1:]
	}
	hour, minute, err := parseClock(offset)
	if err != nil {
		return nil, err
	}
	seconds := sign * (hour*3600 + minute*60)
	name := "UTC"
	if seconds != 0 {
		name = fmt.Sprintf("UTC%+03d:%02d", sign*hour, minute)
	}
	return time.FixedZone(name, seconds), nil
}

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	_ "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/api/swagger"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/handler"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/queue"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/repository"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/router"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/config"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/database"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/export"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/logger"
)

// @title Appointment Booking User Service
// @version 1.0.0
// @description Appointment booking, cancellation and receipts
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	validate := validator.New()

	services := repository.NewServiceRepository(db)
	bookings := repository.NewBookingRepository(db)

	authSvc := service.NewAuthService(nil, nil, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})
	metrics := service.NewMetricsService()

	var publisher *queue.Publisher
	if cfg.Queue.Enabled {
		publisher, err = queue.NewPublisher(cfg.Queue.URL, logr)
		if err != nil {
			logr.Sugar().Warnw("rabbitmq unavailable, booking events disabled", "error", err)
		} else {
			defer publisher.Close() //nolint:errcheck
		}
	}

	var bookingSvc *service.BookingService
	bookingCfg := service.BookingConfig{UTCOffset: cfg.Booking.UTCOffset}
	exporter := export.NewReceiptExporter()
	if publisher != nil {
		bookingSvc, err = service.NewBookingService(services, bookings, publisher, exporter, validate, logr, bookingCfg)
	} else {
		bookingSvc, err = service.NewBookingService(services, bookings, nil, exporter, validate, logr, bookingCfg)
	}
	if err != nil {
		logr.Sugar().Fatalw("failed to init booking service", "error", err)
	}

	r := router.NewUser(cfg, logr, router.UserDeps{
		Booking:   handler.NewBookingHandler(bookingSvc, metrics),
		Validator: authSvc,
		Metrics:   metrics,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("user service starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

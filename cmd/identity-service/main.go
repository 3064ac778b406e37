package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	_ "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/api/swagger"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/handler"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/repository"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/router"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/config"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/database"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/logger"
)

// @title Appointment Booking Identity Service
// @version 1.0.0
// @description Account signup, login and token lifecycle
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

	users := repository.NewUserRepository(db)
	tokens := repository.NewTokenRepository(db)

	authSvc := service.NewAuthService(users, tokens, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	metrics := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc, cfg.Cookie, int(cfg.JWT.RefreshExpiration.Seconds()))

	r := router.NewIdentity(cfg, logr, router.IdentityDeps{
		Auth:    authHandler,
		Metrics: metrics,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("identity service starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

package main

import (
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	_ "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/api/swagger"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/gateway"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/router"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/cache"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/config"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/logger"
)

// @title Appointment Booking API Gateway
// @version 1.0.0
// @description Public entrypoint fronting the identity, listing and user services
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

	var rdb *redis.Client
	if cfg.Gateway.RateLimitEnabled {
		rdb, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, rate limiting disabled", "error", err)
			rdb = nil
		} else {
			defer rdb.Close() //nolint:errcheck
		}
	}

	proxy, err := gateway.NewProxy([]gateway.Route{
		{Prefix: "/auth-route", Target: cfg.Gateway.IdentityURL, StripPrefix: true},
		{Prefix: "/seller-route", Target: cfg.Gateway.ListingURL, StripPrefix: true},
		{Prefix: "/user-route", Target: cfg.Gateway.UserURL, StripPrefix: true},
	}, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build proxy", "error", err)
	}

	authSvc := service.NewAuthService(nil, nil, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})
	metrics := service.NewMetricsService()

	r := router.NewGateway(cfg, logr, router.GatewayDeps{
		Proxy:     proxy,
		Redis:     rdb,
		Validator: authSvc,
		Metrics:   metrics,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("api gateway starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

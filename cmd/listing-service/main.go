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
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/cache"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/config"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/database"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/logger"
)

// @title Appointment Booking Listing Service
// @version 1.0.0
// @description Seller shop and service catalog plus public search
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

	var cacheRepo *repository.CacheRepository
	if cfg.Search.CacheEnabled {
		rdb, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, search cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(rdb, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()

	shops := repository.NewShopRepository(db)
	services := repository.NewServiceRepository(db)

	authSvc := service.NewAuthService(nil, nil, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})
	metrics := service.NewMetricsService()

	var catalogSvc *service.CatalogService
	var searchSvc *service.SearchService
	if cacheRepo != nil {
		catalogSvc = service.NewCatalogService(shops, services, cacheRepo, validate, logr)
		searchSvc = service.NewSearchService(services, cacheRepo, logr, service.SearchConfig{CacheTTL: cfg.Search.CacheTTL})
	} else {
		catalogSvc = service.NewCatalogService(shops, services, nil, validate, logr)
		searchSvc = service.NewSearchService(services, nil, logr, service.SearchConfig{CacheTTL: cfg.Search.CacheTTL})
	}

	r := router.NewListing(cfg, logr, router.ListingDeps{
		Catalog:   handler.NewCatalogHandler(catalogSvc),
		Search:    handler.NewSearchHandler(searchSvc),
		Validator: authSvc,
		Metrics:   metrics,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("listing service starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

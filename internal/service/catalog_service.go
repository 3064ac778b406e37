package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
)

var errClosedBeforeOpen = errors.New("close time must be after open time")

type catalogShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	FindByUserID(ctx context.Context, userID string) (*models.Shop, error)
	DeleteByUserID(ctx context.Context, userID string) (*models.Shop, error)
	CreateLocation(ctx context.Context, loc *models.Location) error
	FindLocationByShop(ctx context.Context, shopID string) (*models.Location, error)
	UpdateLocation(ctx context.Context, loc *models.Location) error
	DeleteLocation(ctx context.Context, locationID, shopID string) error
}

type catalogServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) error
	Update(ctx context.Context, svc *models.Service) error
	Delete(ctx context.Context, serviceID, shopID string) error
	ListByShop(ctx context.Context, shopID string) ([]models.Service, error)
}

type catalogCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CatalogService manages a seller's shop, its location and its bookable
// services. Every seller owns at most one shop and all writes are scoped
// to it.
type CatalogService struct {
	shops     catalogShopRepository
	services  catalogServiceRepository
	cache     catalogCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService. The cache may be nil;
// search invalidation is then skipped.
func NewCatalogService(shops catalogShopRepository, services catalogServiceRepository, cache catalogCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogService{shops: shops, services: services, cache: cache, validator: validate, logger: logger}
}

// CreateShop registers the seller's shop. A second shop for the same
// seller is rejected.
func (s *CatalogService) CreateShop(ctx context.Context, sellerID string, req dto.ShopRequest) (*models.Shop, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shop payload")
	}
	if _, _, err := parseClockPair(req.OpenTime, req.CloseTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shop hours")
	}

	_, err := s.shops.FindByUserID(ctx, sellerID)
	if err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "seller already owns a shop")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check existing shop")
	}

	shop := &models.Shop{
		UserID:      sellerID,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
	}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create shop")
	}

	s.logger.Info("shop created", zap.String("shop_id", shop.ID), zap.String("seller_id", sellerID))
	return shop, nil
}

// GetShop returns the seller's shop.
func (s *CatalogService) GetShop(ctx context.Context, sellerID string) (*models.Shop, error) {
	shop, err := s.shops.FindByUserID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load shop")
	}
	return shop, nil
}

// DeleteShop removes the seller's shop and invalidates cached search
// results that may reference it.
func (s *CatalogService) DeleteShop(ctx context.Context, sellerID string) (*models.Shop, error) {
	shop, err := s.shops.DeleteByUserID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shop not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete shop")
	}
	s.invalidateSearch(ctx)
	return shop, nil
}

// AddLocation attaches an address to the seller's shop.
func (s *CatalogService) AddLocation(ctx context.Context, sellerID string, req dto.LocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}

	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	loc := &models.Location{
		ShopID:  shop.ID,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
	}
	if err := s.shops.CreateLocation(ctx, loc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create location")
	}
	s.invalidateSearch(ctx)
	return loc, nil
}

// GetLocation returns the address attached to the seller's shop.
func (s *CatalogService) GetLocation(ctx context.Context, sellerID string) (*models.Location, error) {
	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	loc, err := s.shops.FindLocationByShop(ctx, shop.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load location")
	}
	return loc, nil
}

// UpdateLocation replaces the address fields of an existing location.
func (s *CatalogService) UpdateLocation(ctx context.Context, sellerID, locationID string, req dto.LocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}

	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	loc := &models.Location{
		ID:      locationID,
		ShopID:  shop.ID,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
	}
	if err := s.shops.UpdateLocation(ctx, loc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update location")
	}
	s.invalidateSearch(ctx)
	return loc, nil
}

// DeleteLocation removes an address from the seller's shop.
func (s *CatalogService) DeleteLocation(ctx context.Context, sellerID, locationID string) error {
	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return err
	}
	if err := s.shops.DeleteLocation(ctx, locationID, shop.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete location")
	}
	s.invalidateSearch(ctx)
	return nil
}

// AddService creates a bookable catalog entry under the seller's shop.
func (s *CatalogService) AddService(ctx context.Context, sellerID string, req dto.ServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}

	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	svc := &models.Service{
		ShopID:      shop.ID,
		Title:       req.Title,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create service")
	}
	s.invalidateSearch(ctx)
	return svc, nil
}

// UpdateService edits a catalog entry owned by the seller's shop.
func (s *CatalogService) UpdateService(ctx context.Context, sellerID, serviceID string, req dto.ServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}

	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	svc := &models.Service{
		ID:          serviceID,
		ShopID:      shop.ID,
		Title:       req.Title,
		Price:       req.Price,
		Duration:    req.Duration,
		Description: req.Description,
	}
	if err := s.services.Update(ctx, svc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update service")
	}
	s.invalidateSearch(ctx)
	return svc, nil
}

// DeleteService removes a catalog entry from the seller's shop.
func (s *CatalogService) DeleteService(ctx context.Context, sellerID, serviceID string) error {
	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return err
	}
	if err := s.services.Delete(ctx, serviceID, shop.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete service")
	}
	s.invalidateSearch(ctx)
	return nil
}

// ListServices returns all catalog entries of the seller's shop.
func (s *CatalogService) ListServices(ctx context.Context, sellerID string) ([]models.Service, error) {
	shop, err := s.GetShop(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	services, err := s.services.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list services")
	}
	return services, nil
}

func (s *CatalogService) invalidateSearch(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, searchCachePrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate search cache", zap.Error(err))
	}
}

func parseClockPair(open, closeAt string) (int, int, error) {
	oh, om, err := parseClock(open)
	if err != nil {
		return 0, 0, err
	}
	ch, cm, err := parseClock(closeAt)
	if err != nil {
		return 0, 0, err
	}
	if ch*60+cm <= oh*60+om {
		return 0, 0, errClosedBeforeOpen
	}
	return oh*60 + om, ch*60 + cm, nil
}

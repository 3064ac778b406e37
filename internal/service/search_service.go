package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
)

// searchCachePrefix namespaces cached search pages so catalog writes can
// invalidate them wholesale.
const searchCachePrefix = "search:services:"

type searchRepository interface {
	Search(ctx context.Context, filter dto.SearchFilter) ([]dto.SearchResultItem, int, error)
}

type searchCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// SearchConfig governs search result caching.
type SearchConfig struct {
	CacheTTL time.Duration
}

// SearchService serves the public catalog search, caching result pages
// in Redis keyed by the normalized filter.
type SearchService struct {
	repo   searchRepository
	cache  searchCache
	logger *zap.Logger
	config SearchConfig
}

// NewSearchService constructs a SearchService. The cache may be nil; every
// request then hits the database.
func NewSearchService(repo searchRepository, cache searchCache, logger *zap.Logger, config SearchConfig) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &SearchService{repo: repo, cache: cache, logger: logger, config: config}
}

// Search returns catalog entries matching the filter, served from cache
// when a previous identical query is still fresh.
func (s *SearchService) Search(ctx context.Context, filter dto.SearchFilter) (*dto.SearchResult, error) {
	filter = normalizeFilter(filter)
	key := cacheKey(filter)

	if s.cache != nil {
		var cached dto.SearchResult
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	items, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to search services")
	}

	result := &dto.SearchResult{
		Items: items,
		Pagination: models.Pagination{
			Page:       filter.Page,
			PageSize:   filter.Limit,
			TotalItems: total,
			TotalPages: (total + filter.Limit - 1) / filter.Limit,
		},
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.config.CacheTTL); err != nil {
			s.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return result, nil
}

func normalizeFilter(f dto.SearchFilter) dto.SearchFilter {
	f.Title = strings.TrimSpace(f.Title)
	f.Category = strings.TrimSpace(f.Category)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	if f.SortBy == "" {
		f.SortBy = "price"
	}
	f.Order = strings.ToUpper(f.Order)
	if f.Order != "DESC" {
		f.Order = "ASC"
	}
	return f
}

func cacheKey(f dto.SearchFilter) string {
	minPrice, maxPrice := "", ""
	if f.MinPrice != nil {
		minPrice = fmt.Sprintf("%.2f", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%.2f", *f.MaxPrice)
	}
	return searchCachePrefix + strings.ToLower(strings.Join([]string{
		f.Title, f.Category, f.City, f.State,
		minPrice, maxPrice,
		fmt.Sprintf("%d:%d:%s:%s", f.Page, f.Limit, f.SortBy, f.Order),
	}, "|"))
}

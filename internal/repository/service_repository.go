package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/dto"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
)

// ServiceRepository provides database access for bookable catalog entries.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository creates a new instance of ServiceRepository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create inserts a new service under the given shop.
func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now

	const query = `INSERT INTO services (id, shop_id, title, price, duration, description, created_at, updated_at) VALUES (:id, :shop_id, :title, :price, :duration, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a service owned by the shop.
func (r *ServiceRepository) Update(ctx context.Context, svc *models.Service) error {
	svc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE services SET title = :title, price = :price, duration = :duration, description = :description, updated_at = :updated_at WHERE id = :id AND shop_id = :shop_id`
	result, err := r.db.NamedExecContext(ctx, query, svc)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update service rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a service owned by the shop.
func (r *ServiceRepository) Delete(ctx context.Context, serviceID, shopID string) error {
	const query = `DELETE FROM services WHERE id = $1 AND shop_id = $2`
	result, err := r.db.ExecContext(ctx, query, serviceID, shopID)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete service rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByShop returns all services of a shop ordered by title.
func (r *ServiceRepository) ListByShop(ctx context.Context, shopID string) ([]models.Service, error) {
	const query = `SELECT id, shop_id, title, price, duration, description, created_at, updated_at FROM services WHERE shop_id = $1 ORDER BY title`
	services := make([]models.Service, 0)
	if err := r.db.SelectContext(ctx, &services, query, shopID); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// FindWithShop resolves a service together with its owning shop's hours in
// a single read. The shop id is part of the predicate: a service that does
// not belong to the stated shop is reported as missing, never silently
// resolved against another shop.
func (r *ServiceRepository) FindWithShop(ctx context.Context, serviceID, shopID string) (*models.ServiceWithShop, error) {
	const query = `SELECT s.id, s.shop_id, s.title, s.price, s.duration, s.description, s.created_at, s.updated_at,
       sh.name AS shop_name, sh.open_time AS shop_open_time, sh.close_time AS shop_close_time
FROM services s
JOIN shops sh ON sh.id = s.shop_id
WHERE s.id = $1 AND s.shop_id = $2
LIMIT 1`
	var svc models.ServiceWithShop
	if err := r.db.GetContext(ctx, &svc, query, serviceID, shopID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find service with shop: %w", err)
	}
	return &svc, nil
}

// Search returns catalog entries matching the public search filter along
// with the total match count for pagination.
func (r *ServiceRepository) Search(ctx context.Context, filter dto.SearchFilter) ([]dto.SearchResultItem, int, error) {
	baseQuery := `FROM services s
JOIN shops sh ON sh.id = s.shop_id
LEFT JOIN locations l ON l.shop_id = sh.id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("s.title ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Title+"%")
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(sh.category) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(l.city) = LOWER($%d)", len(args)+1))
		args = append(args, filter.City)
	}
	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(l.state) = LOWER($%d)", len(args)+1))
		args = append(args, filter.State)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("s.price BETWEEN $%d AND $%d", len(args)+1, len(args)+2))
		args = append(args, *filter.MinPrice, *filter.MaxPrice)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"price":    "s.price",
		"title":    "s.title",
		"duration": "s.duration",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "s.price"
	}

	order := strings.ToUpper(filter.Order)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf(`SELECT s.id, s.shop_id, s.title, s.price, s.duration, s.description, s.created_at, s.updated_at,
       sh.name AS shop_name, sh.category AS shop_category,
       COALESCE(l.city, '') AS city, COALESCE(l.state, '') AS state
%s ORDER BY %s %s LIMIT %d OFFSET %d`, baseQuery, sortColumn, order, limit, offset)

	items := make([]dto.SearchResultItem, 0)
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("search services: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	return items, total, nil
}

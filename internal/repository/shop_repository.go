package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
)

// ShopRepository provides database access for shops and their locations.
type ShopRepository struct {
	db *sqlx.DB
}

// NewShopRepository creates a new instance of ShopRepository.
func NewShopRepository(db *sqlx.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// Create inserts a new shop. The user_id unique constraint enforces one
// shop per seller.
func (r *ShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	if shop.ID == "" {
		shop.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = now
	}
	shop.UpdatedAt = now

	const query = `INSERT INTO shops (id, user_id, name, category, description, open_time, close_time, created_at, updated_at) VALUES (:id, :user_id, :name, :category, :description, :open_time, :close_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shop); err != nil {
		return fmt.Errorf("create shop: %w", err)
	}
	return nil
}

// FindByUserID returns the seller's shop.
func (r *ShopRepository) FindByUserID(ctx context.Context, userID string) (*models.Shop, error) {
	const query = `SELECT id, user_id, name, category, description, open_time, close_time, created_at, updated_at FROM shops WHERE user_id = $1 LIMIT 1`
	var shop models.Shop
	if err := r.db.GetContext(ctx, &shop, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find shop by user: %w", err)
	}
	return &shop, nil
}

// DeleteByUserID removes the seller's shop and returns the deleted record.
func (r *ShopRepository) DeleteByUserID(ctx context.Context, userID string) (*models.Shop, error) {
	const query = `DELETE FROM shops WHERE user_id = $1 RETURNING id, user_id, name, category, description, open_time, close_time, created_at, updated_at`
	var shop models.Shop
	if err := r.db.GetContext(ctx, &shop, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("delete shop: %w", err)
	}
	return &shop, nil
}

// CreateLocation inserts the shop's address record.
func (r *ShopRepository) CreateLocation(ctx context.Context, loc *models.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = now
	}
	loc.UpdatedAt = now

	const query = `INSERT INTO locations (id, shop_id, address, city, state, pincode, created_at, updated_at) VALUES (:id, :shop_id, :address, :city, :state, :pincode, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, loc); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// FindLocationByShop returns the shop's address record.
func (r *ShopRepository) FindLocationByShop(ctx context.Context, shopID string) (*models.Location, error) {
	const query = `SELECT id, shop_id, address, city, state, pincode, created_at, updated_at FROM locations WHERE shop_id = $1 LIMIT 1`
	var loc models.Location
	if err := r.db.GetContext(ctx, &loc, query, shopID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	return &loc, nil
}

// UpdateLocation overwrites the mutable fields of a location.
func (r *ShopRepository) UpdateLocation(ctx context.Context, loc *models.Location) error {
	loc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE locations SET address = :address, city = :city, state = :state, pincode = :pincode, updated_at = :updated_at WHERE id = :id AND shop_id = :shop_id`
	result, err := r.db.NamedExecContext(ctx, query, loc)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update location rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteLocation removes a location belonging to the given shop.
func (r *ShopRepository) DeleteLocation(ctx context.Context, locationID, shopID string) error {
	const query = `DELETE FROM locations WHERE id = $1 AND shop_id = $2`
	result, err := r.db.ExecContext(ctx, query, locationID, shopID)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete location rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

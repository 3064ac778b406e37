package models

import "time"

// Service is a bookable catalog entry belonging to a shop.
// Duration is in minutes.
type Service struct {
	ID          string    `db:"id" json:"id"`
	ShopID      string    `db:"shop_id" json:"shop_id"`
	Title       string    `db:"title" json:"title"`
	Price       float64   `db:"price" json:"price"`
	Duration    int       `db:"duration" json:"duration"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceWithShop is the single-read projection the booking engine consumes:
// the service joined with its owning shop's hours.
type ServiceWithShop struct {
	Service
	ShopName      string `db:"shop_name" json:"shop_name"`
	ShopOpenTime  string `db:"shop_open_time" json:"shop_open_time"`
	ShopCloseTime string `db:"shop_close_time" json:"shop_close_time"`
}

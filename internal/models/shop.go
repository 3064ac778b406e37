package models

import "time"

// Shop is a seller's storefront. One shop per seller; open_time and
// close_time are wall-clock "HH:mm" strings in the shop's local offset.
type Shop struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	OpenTime    string    `db:"open_time" json:"open_time"`
	CloseTime   string    `db:"close_time" json:"close_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Location is the physical address of a shop, used by search filters.
type Location struct {
	ID        string    `db:"id" json:"id"`
	ShopID    string    `db:"shop_id" json:"shop_id"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	Pincode   string    `db:"pincode" json:"pincode"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package dto

import "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"

// SearchFilter captures the query parameters of the public service search.
type SearchFilter struct {
	Title    string
	Category string
	City     string
	State    string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
	SortBy   string
	Order    string
}

// SearchResultItem is one row of the public search listing.
type SearchResultItem struct {
	models.Service
	ShopName     string `db:"shop_name" json:"shop_name"`
	ShopCategory string `db:"shop_category" json:"shop_category"`
	City         string `db:"city" json:"city"`
	State        string `db:"state" json:"state"`
}

// SearchResult bundles the items with pagination metadata.
type SearchResult struct {
	Items      []SearchResultItem `json:"items"`
	Pagination models.Pagination  `json:"pagination"`
}

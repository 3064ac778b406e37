package dto

// ShopRequest carries a seller's shop details. Times are "HH:mm" strings
// in 24 hour format.
type ShopRequest struct {
	Name        string `json:"name" validate:"required,min=4"`
	Category    string `json:"category" validate:"required,min=4"`
	Description string `json:"description" validate:"required,min=5"`
	OpenTime    string `json:"openTime" validate:"required"`
	CloseTime   string `json:"closeTime" validate:"required"`
}

// LocationRequest carries the shop's address details.
type LocationRequest struct {
	Address string `json:"address" validate:"required,min=5"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,len=6"`
}

// ServiceRequest creates or updates a bookable catalog entry.
type ServiceRequest struct {
	Title       string  `json:"title" validate:"required,min=3"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Duration    int     `json:"duration" validate:"required,gt=0"`
	Description *string `json:"description,omitempty"`
}

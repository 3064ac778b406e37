package models

import "time"

// UserRole distinguishes marketplace customers from shop owners.
type UserRole string

const (
	RoleUser   UserRole = "USER"
	RoleSeller UserRole = "SELLER"
)

// Valid reports whether the role is one of the accepted values.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleSeller
}

// User represents an application user stored in the users table.
// The role is fixed at signup and never changes afterwards.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

package models

import "time"

// UserRole distinguishes the two principals the platform knows about.
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleProvider UserRole = "PROVIDER"
)

// Valid reports whether the role is one the platform recognises.
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleProvider
}

// User is an account row; providers and customers share the table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

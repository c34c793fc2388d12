package domain

import "time"

// Role is the coarse permission level of an account.
type Role string

const (
	// RoleCustomer is the standard shopper account every signup gets.
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type User struct {
	ID           string
	Name         string
	Email        string // trimmed and lowercased, unique
	PasswordHash string // argon2id PHC string
	Verified     bool
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

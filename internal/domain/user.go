package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role controls access to the admin surface (user management, reimbursement
// review, payout export).
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents an account in the system. PasswordHash is a bcrypt hash;
// the plaintext never leaves the user service. WalletAddress is the payout
// destination used when the user's approved reimbursements are batched.
type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	DisplayName   string
	Role          Role
	WalletAddress string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate ensures the user adheres to domain rules
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrValidation)
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return fmt.Errorf("%w: role must be USER or ADMIN", ErrValidation)
	}
	return nil
}

// IsAdmin reports whether the user may access admin-only operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

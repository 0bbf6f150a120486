package identity

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for account storage.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// Account is a locally registered user.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	Name         string    `json:"name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal returns the public view of the account.
func (a Account) Principal() Principal {
	return Principal{
		ID:       a.ID,
		Name:     a.Name,
		Username: a.Username,
		Email:    a.Email,
		ImageURL: a.ImageURL,
		Bio:      a.Bio,
	}
}

// AccountStore defines persistence operations for accounts.
type AccountStore interface {
	// Get returns an account by ID. Returns ErrAccountNotFound if not found.
	Get(ctx context.Context, id string) (Account, error)
	// FindByEmail returns the account registered with email, compared
	// case-insensitively. Returns ErrAccountNotFound if not found.
	FindByEmail(ctx context.Context, email string) (Account, error)
	// Create stores a new account. Returns ErrAccountExists if the ID or
	// email is already registered.
	Create(ctx context.Context, a Account) error
}

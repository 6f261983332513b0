// Package user holds the customer account entity and its credential rules.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/valmere/storefront/internal/domain/cart"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on a failed login or an invalid
	// reset token.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a customer account. Each user exclusively owns one cart, created
// empty at signup and embedded in the user record.
type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	ResetToken          *string
	ResetTokenExpiresAt *time.Time
	Cart                cart.Cart
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// UpdateCart writes back the user's whole cart in one statement.
	UpdateCart(ctx context.Context, userID string, c cart.Cart) error
	// UpdateCredentials persists the password hash and reset token fields.
	UpdateCredentials(ctx context.Context, u *User) error
}

// New creates a user with a bcrypt-hashed password and an empty cart.
func New(email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}, nil
}

// CheckPassword reports whether the given password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IssueResetToken sets a fresh single-use reset token valid for ttl.
// Delivery of the token is out of scope here.
func (u *User) IssueResetToken(ttl time.Duration) string {
	token := uuid.New().String()
	expires := time.Now().Add(ttl)
	u.ResetToken = &token
	u.ResetTokenExpiresAt = &expires
	return token
}

// ResetPassword replaces the password hash if token matches the stored,
// unexpired reset token, then consumes the token.
func (u *User) ResetPassword(token, newPassword string) error {
	if u.ResetToken == nil || u.ResetTokenExpiresAt == nil {
		return ErrInvalidCredentials
	}
	if *u.ResetToken != token || time.Now().After(*u.ResetTokenExpiresAt) {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	u.PasswordHash = string(hash)
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

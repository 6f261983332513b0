package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valmere/storefront/internal/domain/cart"
	"github.com/valmere/storefront/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (id, email, password_hash, cart)
		VALUES ($1, $2, $3, $4)`

	getUserByIDSQL = `SELECT id, email, password_hash, reset_token, reset_token_expires_at, cart
		FROM users WHERE id = $1`

	getUserByEmailSQL = `SELECT id, email, password_hash, reset_token, reset_token_expires_at, cart
		FROM users WHERE email = $1`

	updateUserCartSQL = `UPDATE users SET cart = $2 WHERE id = $1`

	updateUserCredentialsSQL = `UPDATE users
		SET password_hash = $2, reset_token = $3, reset_token_expires_at = $4
		WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL. The cart
// lives in a JSONB column on the user row, so every cart write replaces the
// whole cart in one statement.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new user together with their (normally empty) cart.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	cartJSON, err := json.Marshal(u.Cart)
	if err != nil {
		return fmt.Errorf("marshaling cart: %w", err)
	}

	_, err = r.pool.Exec(ctx, createUserSQL, u.ID, u.Email, u.PasswordHash, cartJSON)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", u.ID, err)
	}
	return nil
}

// GetByID returns a user with their cart by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.get(ctx, getUserByIDSQL, id)
}

// GetByEmail returns a user with their cart by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, getUserByEmailSQL, email)
}

func (r *UserRepository) get(ctx context.Context, query, arg string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// UpdateCart replaces the user's stored cart atomically.
func (r *UserRepository) UpdateCart(ctx context.Context, userID string, c cart.Cart) error {
	cartJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling cart: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateUserCartSQL, userID, cartJSON)
	if err != nil {
		return fmt.Errorf("updating cart for user %q: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdateCredentials persists the password hash and reset token fields.
func (r *UserRepository) UpdateCredentials(ctx context.Context, u *user.User) error {
	tag, err := r.pool.Exec(ctx, updateUserCredentialsSQL,
		u.ID, u.PasswordHash, u.ResetToken, u.ResetTokenExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("updating credentials for user %q: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (*user.User, error) {
	var (
		u        user.User
		cartJSON []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ResetToken, &u.ResetTokenExpiresAt, &cartJSON)
	if err != nil {
		return nil, err
	}
	if len(cartJSON) > 0 {
		if err := json.Unmarshal(cartJSON, &u.Cart); err != nil {
			return nil, fmt.Errorf("unmarshaling cart: %w", err)
		}
	}
	return &u, nil
}

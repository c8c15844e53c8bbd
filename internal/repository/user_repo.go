package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEmail is returned when a profile insert collides on the email column.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines user directory DB operations
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, phone, locality string) (*model.User, error)
	UpdateStripeCustomerID(ctx context.Context, id, customerID string) error
	SetPremium(ctx context.Context, id string, isPremium bool, expiresAt *time.Time) error
	DeleteUser(ctx context.Context, id string) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `user_id, email, name, phone, locality, stripe_customer_id, is_premium, premium_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.UserID, &u.Email, &u.Name, &u.Phone, &u.Locality, &u.StripeCustomerID, &u.IsPremium, &u.PremiumExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
        INSERT INTO user_profiles (user_id, email, name, phone, locality)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, q, u.UserID, u.Email, u.Name, u.Phone, u.Locality)
	err := row.Scan(&u.UserID, &u.Email, &u.Name, &u.Phone, &u.Locality, &u.StripeCustomerID, &u.IsPremium, &u.PremiumExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user %s: %w", u.UserID, err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM user_profiles WHERE user_id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM user_profiles WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err != nil {
		return nil, fmt.Errorf("fetch user by email: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM user_profiles WHERE stripe_customer_id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, customerID))
	if err != nil {
		return nil, fmt.Errorf("fetch user by stripe customer %s: %w", customerID, err)
	}
	return u, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id, name, phone, locality string) (*model.User, error) {
	const q = `
        UPDATE user_profiles
        SET name = $2, phone = $3, locality = $4, updated_at = NOW()
        WHERE user_id = $1
        RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, q, id, name, phone, locality))
	if err != nil {
		return nil, fmt.Errorf("update profile for user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, id, customerID string) error {
	const q = `UPDATE user_profiles SET stripe_customer_id = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, id, customerID); err != nil {
		return fmt.Errorf("store stripe customer id for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) SetPremium(ctx context.Context, id string, isPremium bool, expiresAt *time.Time) error {
	const q = `UPDATE user_profiles SET is_premium = $2, premium_expires_at = $3, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, q, id, isPremium, expiresAt)
	if err != nil {
		return fmt.Errorf("set premium for user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set premium for user %s: no such user", id)
	}
	return nil
}

func (r *userRepo) DeleteUser(ctx context.Context, id string) error {
	const q = `DELETE FROM user_profiles WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

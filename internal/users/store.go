package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

const queryTimeout = 5 * time.Second

type Store interface {
	GetByAuthID(ctx context.Context, authID string) (*User, error)
	UpsertFromClaims(ctx context.Context, authID, email, fullName string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, fullName string, avatarURL *string) (*User, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByAuthID(ctx context.Context, authID string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, auth_id, email, full_name, avatar_url, role, created_at, updated_at
		FROM users
		WHERE auth_id = $1;
	`
	u := &User{}
	if err := r.db.QueryRow(ctx, query, authID).Scan(
		&u.ID, &u.AuthID, &u.Email, &u.FullName, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by auth id: %w", err)
	}
	return u, nil
}

// UpsertFromClaims creates the local profile for a token subject on first
// sight and refreshes the email on later logins. The provider is the source
// of truth for identity; the role stays whatever it was locally.
func (r *Repository) UpsertFromClaims(ctx context.Context, authID, email, fullName string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (auth_id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth_id) DO UPDATE
		SET email = EXCLUDED.email, updated_at = now()
		RETURNING id, auth_id, email, full_name, avatar_url, role, created_at, updated_at;
	`
	u := &User{}
	if err := r.db.QueryRow(ctx, query, authID, email, fullName, RoleCustomer).Scan(
		&u.ID, &u.AuthID, &u.Email, &u.FullName, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id int64, fullName string, avatarURL *string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET full_name = $1, avatar_url = COALESCE($2, avatar_url), updated_at = now()
		WHERE id = $3
		RETURNING id, auth_id, email, full_name, avatar_url, role, created_at, updated_at;
	`
	u := &User{}
	if err := r.db.QueryRow(ctx, query, fullName, avatarURL, id).Scan(
		&u.ID, &u.AuthID, &u.Email, &u.FullName, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

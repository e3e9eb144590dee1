package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rigaestates/listings-api/internal/domain"
)

type StaffRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
	Create(ctx context.Context, email, passwordHash, name, role string) (*domain.StaffUser, error)
}

type staffRepo struct {
	pool *pgxpool.Pool
}

func NewStaffRepo(pool *pgxpool.Pool) StaffRepo {
	return &staffRepo{pool: pool}
}

func (r *staffRepo) FindByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	const q = `
		SELECT id, email, password_hash, name, role, created_at
		FROM staff_users
		WHERE lower(email) = lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.StaffUser
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *staffRepo) Create(ctx context.Context, email, passwordHash, name, role string) (*domain.StaffUser, error) {
	const q = `
		INSERT INTO staff_users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, name, role, created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.StaffUser
	err := r.pool.QueryRow(ctx, q, email, passwordHash, name, role).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rigaestates/listings-api/internal/domain"
)

type AccessRepo interface {
	// Upsert stores or refreshes the single access request row for an
	// email, resetting verification state and the attempt counter.
	Upsert(ctx context.Context, rec *domain.AccessRequest) error
	FindByEmail(ctx context.Context, email string) (*domain.AccessRequest, error)
	FindByMagicToken(ctx context.Context, token string) (*domain.AccessRequest, error)
	MarkVerified(ctx context.Context, email string, validUntil time.Time) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
}

type accessRepo struct {
	pool *pgxpool.Pool
}

func NewAccessRepo(pool *pgxpool.Pool) AccessRepo {
	return &accessRepo{pool: pool}
}

func (r *accessRepo) Upsert(ctx context.Context, rec *domain.AccessRequest) error {
	const q = `
		INSERT INTO access_requests (email, phone, code_hash, magic_token, code_expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			phone           = EXCLUDED.phone,
			code_hash       = EXCLUDED.code_hash,
			magic_token     = EXCLUDED.magic_token,
			code_expires_at = EXCLUDED.code_expires_at,
			attempts        = 0,
			verified        = false,
			valid_until     = NULL,
			updated_at      = now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, rec.Email, rec.Phone, rec.CodeHash, rec.MagicToken, rec.CodeExpiresAt)
	return err
}

func (r *accessRepo) FindByEmail(ctx context.Context, email string) (*domain.AccessRequest, error) {
	const q = `
		SELECT email, phone, code_hash, magic_token, attempts, verified,
		       valid_until, code_expires_at, created_at, updated_at
		FROM access_requests
		WHERE lower(email) = lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanOne(r.pool.QueryRow(ctx, q, email))
}

func (r *accessRepo) FindByMagicToken(ctx context.Context, token string) (*domain.AccessRequest, error) {
	const q = `
		SELECT email, phone, code_hash, magic_token, attempts, verified,
		       valid_until, code_expires_at, created_at, updated_at
		FROM access_requests
		WHERE magic_token = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanOne(r.pool.QueryRow(ctx, q, token))
}

func (r *accessRepo) scanOne(row pgx.Row) (*domain.AccessRequest, error) {
	var rec domain.AccessRequest
	err := row.Scan(
		&rec.Email,
		&rec.Phone,
		&rec.CodeHash,
		&rec.MagicToken,
		&rec.Attempts,
		&rec.Verified,
		&rec.ValidUntil,
		&rec.CodeExpiresAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *accessRepo) MarkVerified(ctx context.Context, email string, validUntil time.Time) error {
	const q = `
		UPDATE access_requests
		SET verified = true, valid_until = $2, updated_at = now()
		WHERE lower(email) = lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, email, validUntil)
	return err
}

func (r *accessRepo) IncrementAttempts(ctx context.Context, email string) (int, error) {
	const q = `
		UPDATE access_requests
		SET attempts = attempts + 1, updated_at = now()
		WHERE lower(email) = lower($1)
		RETURNING attempts`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var attempts int
	err := r.pool.QueryRow(ctx, q, email).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return attempts, err
}

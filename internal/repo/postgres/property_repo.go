package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rigaestates/listings-api/internal/domain"
)

type PropertyRepo interface {
	Create(ctx context.Context, req *domain.CreatePropertyRequest) (*domain.Property, error)
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	List(ctx context.Context) ([]domain.Property, error)
	SetVisibility(ctx context.Context, id int64, visibility domain.Visibility) (bool, error)
}

type propertyRepo struct {
	pool *pgxpool.Pool
}

func NewPropertyRepo(pool *pgxpool.Pool) PropertyRepo {
	return &propertyRepo{pool: pool}
}

const propertyColumns = `
	id, title, price_cents, currency, address, city, bedrooms, area_sqm,
	description, images, visibility, created_at, updated_at`

func (r *propertyRepo) Create(ctx context.Context, req *domain.CreatePropertyRequest) (*domain.Property, error) {
	const q = `
		INSERT INTO properties (title, price_cents, currency, address, city,
		                        bedrooms, area_sqm, description, images, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + propertyColumns

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.pool.QueryRow(ctx, q,
		req.Title, req.PriceCents, req.Currency, req.Address, req.City,
		req.Bedrooms, req.AreaSqm, req.Description, req.Images, req.Visibility,
	)
	return scanProperty(row)
}

func (r *propertyRepo) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	const q = `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProperty(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *propertyRepo) List(ctx context.Context) ([]domain.Property, error) {
	const q = `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

func (r *propertyRepo) SetVisibility(ctx context.Context, id int64, visibility domain.Visibility) (bool, error) {
	const q = `
		UPDATE properties
		SET visibility = $2, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id, visibility)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.PriceCents,
		&p.Currency,
		&p.Address,
		&p.City,
		&p.Bedrooms,
		&p.AreaSqm,
		&p.Description,
		&p.Images,
		&p.Visibility,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

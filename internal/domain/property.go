package domain

import (
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type Property struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	PriceCents  int64      `json:"price_cents"`
	Currency    string     `json:"currency"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Bedrooms    int        `json:"bedrooms"`
	AreaSqm     float64    `json:"area_sqm"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Listing is the shape served to viewers. Private listings are redacted
// for viewers without a live grant so the site can advertise their
// existence without leaking details.
type Listing struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	PriceCents *int64     `json:"price_cents,omitempty"`
	Currency   string     `json:"currency,omitempty"`
	Address    string     `json:"address,omitempty"`
	City       string     `json:"city"`
	Bedrooms   *int       `json:"bedrooms,omitempty"`
	AreaSqm    *float64   `json:"area_sqm,omitempty"`
	Images     []string   `json:"images,omitempty"`
	Visibility Visibility `json:"visibility"`
	Redacted   bool       `json:"redacted"`
}

const redactedPlaceholder = "Private listing"

// ToListing converts a property to its viewer-facing shape. Private
// properties are masked unless revealed.
func (p *Property) ToListing(reveal bool) Listing {
	if p.Visibility == VisibilityPrivate && !reveal {
		return Listing{
			ID:         p.ID,
			Title:      redactedPlaceholder,
			City:       p.City,
			Visibility: p.Visibility,
			Redacted:   true,
		}
	}
	price := p.PriceCents
	bedrooms := p.Bedrooms
	area := p.AreaSqm
	return Listing{
		ID:         p.ID,
		Title:      p.Title,
		PriceCents: &price,
		Currency:   p.Currency,
		Address:    p.Address,
		City:       p.City,
		Bedrooms:   &bedrooms,
		AreaSqm:    &area,
		Images:     p.Images,
		Visibility: p.Visibility,
		Redacted:   false,
	}
}

// CreatePropertyRequest is the admin body for creating a listing.
type CreatePropertyRequest struct {
	Title       string     `json:"title"`
	PriceCents  int64      `json:"price_cents"`
	Currency    string     `json:"currency"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Bedrooms    int        `json:"bedrooms"`
	AreaSqm     float64    `json:"area_sqm"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Visibility  Visibility `json:"visibility"`
}

func (r *CreatePropertyRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = "EUR"
	}
	if r.Visibility == "" {
		r.Visibility = VisibilityPublic
	}
}

func (r *CreatePropertyRequest) Validate() error {
	if r.Title == "" {
		return &ValidationError{Field: "title", Reason: "title is required"}
	}
	if r.PriceCents <= 0 {
		return &ValidationError{Field: "price_cents", Reason: "price must be positive"}
	}
	if r.City == "" {
		return &ValidationError{Field: "city", Reason: "city is required"}
	}
	if !r.Visibility.Valid() {
		return &ValidationError{Field: "visibility", Reason: "visibility must be public or private"}
	}
	return nil
}

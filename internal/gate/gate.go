// Package gate decides, per viewer, whether private listings are
// revealed in full or served as redacted teasers. The decision is made
// against the stored access state on every call; client-side hints are
// never trusted.
package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/repo/postgres"
)

type Gate interface {
	// VisibleListings returns the listing set for the viewer. The second
	// return is the grant's expiry when the viewer holds a live grant.
	VisibleListings(ctx context.Context, viewerEmail string) ([]domain.Listing, *time.Time, error)
}

type gate struct {
	access     postgres.AccessRepo
	properties postgres.PropertyRepo
	now        func() time.Time
}

type Option func(*gate)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *gate) { g.now = now }
}

func New(access postgres.AccessRepo, properties postgres.PropertyRepo, opts ...Option) Gate {
	g := &gate{
		access:     access,
		properties: properties,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gate) VisibleListings(ctx context.Context, viewerEmail string) ([]domain.Listing, *time.Time, error) {
	properties, err := g.properties.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list properties: %w", err)
	}

	reveal, validUntil, err := g.checkGrant(ctx, viewerEmail)
	if err != nil {
		return nil, nil, err
	}

	listings := make([]domain.Listing, 0, len(properties))
	for i := range properties {
		listings = append(listings, properties[i].ToListing(reveal))
	}
	return listings, validUntil, nil
}

func (g *gate) checkGrant(ctx context.Context, viewerEmail string) (bool, *time.Time, error) {
	viewerEmail = strings.ToLower(strings.TrimSpace(viewerEmail))
	if viewerEmail == "" {
		return false, nil, nil
	}

	rec, err := g.access.FindByEmail(ctx, viewerEmail)
	if err != nil {
		return false, nil, fmt.Errorf("failed to look up access state: %w", err)
	}

	if domain.DeriveAccessState(rec, g.now()) != domain.StateGranted {
		return false, nil, nil
	}
	return true, rec.ValidUntil, nil
}

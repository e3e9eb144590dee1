package gate_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/gate"
)

// ---------- Mocks ----------

type mockAccessRepo struct {
	rows map[string]*domain.AccessRequest
}

func (m *mockAccessRepo) FindByEmail(_ context.Context, email string) (*domain.AccessRequest, error) {
	rec, ok := m.rows[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (m *mockAccessRepo) Upsert(context.Context, *domain.AccessRequest) error { return nil }
func (m *mockAccessRepo) FindByMagicToken(context.Context, string) (*domain.AccessRequest, error) {
	return nil, nil
}
func (m *mockAccessRepo) MarkVerified(context.Context, string, time.Time) error { return nil }
func (m *mockAccessRepo) IncrementAttempts(context.Context, string) (int, error) {
	return 0, nil
}

type mockPropertyRepo struct {
	properties []domain.Property
}

func (m *mockPropertyRepo) List(context.Context) ([]domain.Property, error) {
	return m.properties, nil
}

func (m *mockPropertyRepo) Create(context.Context, *domain.CreatePropertyRequest) (*domain.Property, error) {
	return nil, nil
}
func (m *mockPropertyRepo) GetByID(context.Context, int64) (*domain.Property, error) {
	return nil, nil
}
func (m *mockPropertyRepo) SetVisibility(context.Context, int64, domain.Visibility) (bool, error) {
	return false, nil
}

// ---------- Setup ----------

func fixtures() []domain.Property {
	return []domain.Property{
		{
			ID: 1, Title: "Apartment in Old Town", PriceCents: 21000000,
			Currency: "EUR", Address: "Skarnu iela 4, Riga", City: "Riga",
			Visibility: domain.VisibilityPublic,
		},
		{
			ID: 2, Title: "Seaside villa in Jurmala", PriceCents: 145000000,
			Currency: "EUR", Address: "Juras iela 2, Jurmala", City: "Jurmala",
			Images:     []string{"https://cdn.example.com/p2/1.jpg"},
			Visibility: domain.VisibilityPrivate,
		},
	}
}

func setupGate(rows map[string]*domain.AccessRequest, now time.Time) gate.Gate {
	if rows == nil {
		rows = map[string]*domain.AccessRequest{}
	}
	return gate.New(
		&mockAccessRepo{rows: rows},
		&mockPropertyRepo{properties: fixtures()},
		gate.WithClock(func() time.Time { return now }),
	)
}

func findListing(t *testing.T, listings []domain.Listing, id int64) domain.Listing {
	t.Helper()
	for _, l := range listings {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("listing %d not in response", id)
	return domain.Listing{}
}

// ---------- Tests ----------

func TestVisibleListings_NoViewer_PrivateRedacted(t *testing.T) {
	g := setupGate(nil, time.Now())

	listings, validUntil, err := g.VisibleListings(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if validUntil != nil {
		t.Error("anonymous viewer should have no grant expiry")
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	public := findListing(t, listings, 1)
	if public.Redacted || public.Title != "Apartment in Old Town" {
		t.Error("public listing should be served in full")
	}

	private := findListing(t, listings, 2)
	if !private.Redacted {
		t.Fatal("private listing must be redacted without a grant")
	}
	if private.Title == "Seaside villa in Jurmala" || private.PriceCents != nil || private.Address != "" {
		t.Error("redacted listing leaked details")
	}
}

func TestVisibleListings_UnknownEmail_PrivateRedacted(t *testing.T) {
	g := setupGate(nil, time.Now())

	listings, _, err := g.VisibleListings(context.Background(), "never-requested@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !findListing(t, listings, 2).Redacted {
		t.Error("unknown viewer must see the teaser only")
	}
}

func TestVisibleListings_PendingVerification_PrivateRedacted(t *testing.T) {
	now := time.Now()
	rows := map[string]*domain.AccessRequest{
		"a@x.com": {Email: "a@x.com", CodeExpiresAt: now.Add(10 * time.Minute)},
	}
	g := setupGate(rows, now)

	listings, _, err := g.VisibleListings(context.Background(), "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !findListing(t, listings, 2).Redacted {
		t.Error("pending verification must not reveal private listings")
	}
}

func TestVisibleListings_Granted_PrivateRevealed(t *testing.T) {
	now := time.Now()
	until := now.Add(3 * time.Hour)
	rows := map[string]*domain.AccessRequest{
		"a@x.com": {Email: "a@x.com", Verified: true, ValidUntil: &until},
	}
	g := setupGate(rows, now)

	listings, validUntil, err := g.VisibleListings(context.Background(), "A@X.com")
	if err != nil {
		t.Fatal(err)
	}
	if validUntil == nil || !validUntil.Equal(until) {
		t.Errorf("expected grant expiry %v, got %v", until, validUntil)
	}

	private := findListing(t, listings, 2)
	if private.Redacted {
		t.Fatal("granted viewer should see private listings in full")
	}
	if private.Title != "Seaside villa in Jurmala" || private.PriceCents == nil || *private.PriceCents != 145000000 {
		t.Error("revealed listing missing details")
	}
}

func TestVisibleListings_ExpiredGrant_PrivateRedacted(t *testing.T) {
	now := time.Now()
	until := now.Add(-time.Minute)
	rows := map[string]*domain.AccessRequest{
		"a@x.com": {Email: "a@x.com", Verified: true, ValidUntil: &until},
	}
	g := setupGate(rows, now)

	listings, validUntil, err := g.VisibleListings(context.Background(), "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if validUntil != nil {
		t.Error("expired grant should not report an expiry")
	}
	if !findListing(t, listings, 2).Redacted {
		t.Error("expired grant must gate like no request at all")
	}
}

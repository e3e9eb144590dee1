package domain

import (
	"testing"
	"time"
)

func TestDeriveAccessState_NilRecord(t *testing.T) {
	if got := DeriveAccessState(nil, time.Now()); got != StateNoRequest {
		t.Errorf("nil record should derive no_request, got %s", got)
	}
}

func TestDeriveAccessState_Pending(t *testing.T) {
	now := time.Now()
	rec := &AccessRequest{
		Email:         "a@x.com",
		CodeExpiresAt: now.Add(10 * time.Minute),
	}
	if got := DeriveAccessState(rec, now); got != StatePending {
		t.Errorf("unverified record with live code should be pending, got %s", got)
	}
}

func TestDeriveAccessState_PendingCodeLapsed(t *testing.T) {
	now := time.Now()
	rec := &AccessRequest{
		Email:         "a@x.com",
		CodeExpiresAt: now.Add(-time.Minute),
	}
	if got := DeriveAccessState(rec, now); got != StateNoRequest {
		t.Errorf("lapsed pending code should gate like no_request, got %s", got)
	}
}

func TestDeriveAccessState_Granted(t *testing.T) {
	now := time.Now()
	until := now.Add(6 * time.Hour)
	rec := &AccessRequest{
		Email:      "a@x.com",
		Verified:   true,
		ValidUntil: &until,
	}
	if got := DeriveAccessState(rec, now); got != StateGranted {
		t.Errorf("verified record with future valid_until should be granted, got %s", got)
	}
	if !rec.IsGranted(now) {
		t.Error("IsGranted should agree with derived state")
	}
}

func TestDeriveAccessState_Expired(t *testing.T) {
	now := time.Now()
	until := now.Add(-time.Second)
	rec := &AccessRequest{
		Email:      "a@x.com",
		Verified:   true,
		ValidUntil: &until,
	}
	if got := DeriveAccessState(rec, now); got != StateExpired {
		t.Errorf("past valid_until should be expired, got %s", got)
	}
	if rec.IsGranted(now) {
		t.Error("expired grant must not count as granted")
	}
}

func TestCanAttempt(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		attempts int
		codeExp  time.Time
		want     bool
	}{
		{"fresh", 0, now.Add(10 * time.Minute), true},
		{"under budget", 4, now.Add(10 * time.Minute), true},
		{"budget spent", 5, now.Add(10 * time.Minute), false},
		{"code lapsed", 0, now.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &AccessRequest{Attempts: tt.attempts, CodeExpiresAt: tt.codeExp}
			if got := rec.CanAttempt(5, now); got != tt.want {
				t.Errorf("CanAttempt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessSubmission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		phone   string
		wantErr bool
	}{
		{"valid", "a@x.com", "+37120000000", false},
		{"valid no plus", "buyer@example.com", "37120012345", false},
		{"bad email", "not-an-email", "+37120000000", true},
		{"short phone", "a@x.com", "123", true},
		{"phone with letters", "a@x.com", "+371abc0000", true},
		{"phone too long", "a@x.com", "+1234567890123456", true},
		{"empty email", "", "+37120000000", true},
		{"empty phone", "a@x.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := AccessSubmission{Email: tt.email, Phone: tt.phone}
			sub.Normalize()
			err := sub.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*ValidationError); !ok {
					t.Errorf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestCodeSubmission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid", "482913", false},
		{"too short", "12345", true},
		{"too long", "1234567", true},
		{"letters", "12a456", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := CodeSubmission{Email: "a@x.com", Code: tt.code}
			sub.Normalize()
			if err := sub.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProperty_ToListing_Redaction(t *testing.T) {
	p := &Property{
		ID:         7,
		Title:      "Penthouse on Elizabetes iela",
		PriceCents: 85000000,
		Currency:   "EUR",
		Address:    "Elizabetes iela 21, Riga",
		City:       "Riga",
		Bedrooms:   4,
		AreaSqm:    210,
		Images:     []string{"https://cdn.example.com/p7/1.jpg"},
		Visibility: VisibilityPrivate,
	}

	masked := p.ToListing(false)
	if !masked.Redacted {
		t.Fatal("private listing without reveal should be redacted")
	}
	if masked.Title == p.Title {
		t.Error("redacted listing must not expose the real title")
	}
	if masked.PriceCents != nil || masked.Address != "" || len(masked.Images) != 0 {
		t.Error("redacted listing must not expose price, address or images")
	}

	full := p.ToListing(true)
	if full.Redacted {
		t.Fatal("revealed listing should not be redacted")
	}
	if full.Title != p.Title || full.PriceCents == nil || *full.PriceCents != p.PriceCents {
		t.Error("revealed listing should carry full details")
	}
}

func TestProperty_ToListing_PublicAlwaysFull(t *testing.T) {
	p := &Property{ID: 1, Title: "Studio in Agenskalns", PriceCents: 9500000, City: "Riga", Visibility: VisibilityPublic}
	l := p.ToListing(false)
	if l.Redacted || l.Title != p.Title {
		t.Error("public listings are never redacted")
	}
}

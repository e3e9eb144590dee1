package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AccessRequest is the single row kept per email for the private-listing
// gate. A fresh submission overwrites the row, superseding any earlier
// code. Expiry is computed at read time; rows are never hard-deleted.
type AccessRequest struct {
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	CodeHash      string     `json:"-"`
	MagicToken    string     `json:"-"`
	Attempts      int        `json:"attempts"`
	Verified      bool       `json:"verified"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	CodeExpiresAt time.Time  `json:"code_expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AccessState is a derived view over AccessRequest fields, never stored.
type AccessState int

const (
	StateNoRequest AccessState = iota
	StatePending
	StateGranted
	StateExpired
)

func (s AccessState) String() string {
	switch s {
	case StateNoRequest:
		return "no_request"
	case StatePending:
		return "pending"
	case StateGranted:
		return "granted"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// DeriveAccessState computes the gate state for a stored record at a
// given instant. A nil record, or a pending record whose code window
// has lapsed, gates identically to no request at all.
func DeriveAccessState(rec *AccessRequest, now time.Time) AccessState {
	if rec == nil {
		return StateNoRequest
	}
	if rec.Verified && rec.ValidUntil != nil {
		if now.After(*rec.ValidUntil) {
			return StateExpired
		}
		return StateGranted
	}
	if now.After(rec.CodeExpiresAt) {
		return StateNoRequest
	}
	return StatePending
}

// IsGranted reports whether the record holds a live grant.
func (r *AccessRequest) IsGranted(now time.Time) bool {
	return DeriveAccessState(r, now) == StateGranted
}

// CanAttempt reports whether another code check is allowed.
func (r *AccessRequest) CanAttempt(maxAttempts int, now time.Time) bool {
	return r.Attempts < maxAttempts && !now.After(r.CodeExpiresAt)
}

// AccessSubmission is the body of POST /v1/access/request.
type AccessSubmission struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CodeSubmission is the body of POST /v1/access/verify.
type CodeSubmission struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// AccessGrant is returned on successful verification.
type AccessGrant struct {
	ValidUntil time.Time `json:"valid_until"`
	ValidFor   int64     `json:"valid_for"` // seconds
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?\d{8,15}$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)
)

func (r *AccessSubmission) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *AccessSubmission) Validate() error {
	if r.Email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !emailPattern.MatchString(r.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	}
	if r.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "phone is required"}
	}
	if !phonePattern.MatchString(r.Phone) {
		return &ValidationError{Field: "phone", Reason: "invalid phone format"}
	}
	return nil
}

func (r *CodeSubmission) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)
}

func (r *CodeSubmission) Validate() error {
	if r.Email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !emailPattern.MatchString(r.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	}
	if !codePattern.MatchString(r.Code) {
		return &ValidationError{Field: "code", Reason: "code must be 6 digits"}
	}
	return nil
}

// ValidationError marks malformed user input. It is always translated
// into a 400 and never surfaced as a server fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	// ErrNoPendingRequest means verification was attempted with no prior
	// access request on file for the email.
	ErrNoPendingRequest = errors.New("no pending access request")

	// ErrInvalidCode means the submitted code did not match the stored one.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrTooManyAttempts means the attempt budget for the current code is
	// spent; a fresh access request is required.
	ErrTooManyAttempts = errors.New("too many failed attempts")

	// ErrDelivery means the outbound notification could not be sent. The
	// stored request survives so verification can be retried after a resend.
	ErrDelivery = errors.New("failed to deliver access code")
)

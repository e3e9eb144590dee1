// Package access implements the private-listing access workflow: a
// contact-info submission issues a one-time code, and a matching code
// verification opens a time-boxed grant for the email.
package access

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/rigaestates/listings-api/internal/domain"
	"github.com/rigaestates/listings-api/internal/platform/mailer"
	"github.com/rigaestates/listings-api/internal/repo/postgres"
	"github.com/rigaestates/listings-api/pkg/config"
	"github.com/rigaestates/listings-api/pkg/events"
	"github.com/rigaestates/listings-api/pkg/logger"
)

type Service interface {
	RequestAccess(ctx context.Context, sub *domain.AccessSubmission) error
	VerifyCode(ctx context.Context, sub *domain.CodeSubmission) (*domain.AccessGrant, error)
	VerifyMagicLink(ctx context.Context, token string) (string, *domain.AccessGrant, error)
}

type service struct {
	repo   postgres.AccessRepo
	mailer mailer.Service
	bus    events.Publisher
	codes  CodeGenerator
	cfg    *config.Config
	now    func() time.Time
}

type Option func(*service)

// WithCodeGenerator overrides the code source, used by tests.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(s *service) { s.codes = g }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	repo postgres.AccessRepo,
	mailSvc mailer.Service,
	bus events.Publisher,
	cfg *config.Config,
	opts ...Option,
) Service {
	s := &service{
		repo:   repo,
		mailer: mailSvc,
		bus:    bus,
		codes:  NewRandomGenerator(),
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RequestAccess(ctx context.Context, sub *domain.AccessSubmission) error {
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return err
	}

	code, err := s.codes.Code()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	codeHash, err := argon2id.CreateHash(code, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	now := s.now()
	rec := &domain.AccessRequest{
		Email:         sub.Email,
		Phone:         sub.Phone,
		CodeHash:      codeHash,
		MagicToken:    uuid.NewString(),
		CodeExpiresAt: now.Add(s.cfg.Access.CodeTTL),
	}

	// Upsert keyed by email: a resubmission supersedes the earlier code.
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to store access request: %w", err)
	}

	if err := s.bus.Publish(ctx, events.AccessRequested, events.AccessRequestedEvent{
		Email:       rec.Email,
		RequestedAt: now,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish access.requested", "error", err)
	}

	magicLink := s.buildMagicLink(rec.MagicToken)
	if err := s.mailer.SendAccessCode(rec.Email, code, magicLink); err != nil {
		// The row is already persisted; verification stays possible once
		// delivery is fixed or the user requests a fresh code.
		logger.ErrorContext(ctx, "Failed to send access code email", "error", err, "email", rec.Email)
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}

	return nil
}

func (s *service) VerifyCode(ctx context.Context, sub *domain.CodeSubmission) (*domain.AccessGrant, error) {
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.repo.FindByEmail(ctx, sub.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up access request: %w", err)
	}

	now := s.now()
	switch domain.DeriveAccessState(rec, now) {
	case domain.StateNoRequest, domain.StateExpired:
		return nil, domain.ErrNoPendingRequest
	case domain.StateGranted:
		// Re-verifying the live code re-confirms the same grant.
		match, err := argon2id.ComparePasswordAndHash(sub.Code, rec.CodeHash)
		if err != nil {
			return nil, fmt.Errorf("failed to compare code: %w", err)
		}
		if !match {
			return nil, domain.ErrInvalidCode
		}
		return s.grant(*rec.ValidUntil, now), nil
	}

	if !rec.CanAttempt(s.cfg.Access.MaxAttempts, now) {
		return nil, domain.ErrTooManyAttempts
	}

	match, err := argon2id.ComparePasswordAndHash(sub.Code, rec.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to compare code: %w", err)
	}
	if !match {
		if _, err := s.repo.IncrementAttempts(ctx, sub.Email); err != nil {
			logger.WarnContext(ctx, "Failed to increment attempts", "error", err, "email", sub.Email)
		}
		if err := s.bus.Publish(ctx, events.AccessDenied, events.AccessDeniedEvent{
			Email:    sub.Email,
			Reason:   "invalid_code",
			DeniedAt: now,
		}); err != nil {
			logger.WarnContext(ctx, "Failed to publish access.denied", "error", err)
		}
		return nil, domain.ErrInvalidCode
	}

	validUntil := now.Add(s.cfg.Access.GrantTTL)
	if err := s.repo.MarkVerified(ctx, sub.Email, validUntil); err != nil {
		return nil, fmt.Errorf("failed to persist grant: %w", err)
	}

	if err := s.bus.Publish(ctx, events.AccessGranted, events.AccessGrantedEvent{
		Email:      sub.Email,
		ValidUntil: validUntil,
		GrantedAt:  now,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish access.granted", "error", err)
	}

	return s.grant(validUntil, now), nil
}

func (s *service) VerifyMagicLink(ctx context.Context, token string) (string, *domain.AccessGrant, error) {
	if token == "" {
		return "", nil, &domain.ValidationError{Field: "token", Reason: "token is required"}
	}

	rec, err := s.repo.FindByMagicToken(ctx, token)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up magic token: %w", err)
	}

	now := s.now()
	switch domain.DeriveAccessState(rec, now) {
	case domain.StateNoRequest, domain.StateExpired:
		return "", nil, domain.ErrNoPendingRequest
	case domain.StateGranted:
		return rec.Email, s.grant(*rec.ValidUntil, now), nil
	}

	validUntil := now.Add(s.cfg.Access.GrantTTL)
	if err := s.repo.MarkVerified(ctx, rec.Email, validUntil); err != nil {
		return "", nil, fmt.Errorf("failed to persist grant: %w", err)
	}

	if err := s.bus.Publish(ctx, events.AccessGranted, events.AccessGrantedEvent{
		Email:      rec.Email,
		ValidUntil: validUntil,
		GrantedAt:  now,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish access.granted", "error", err)
	}

	return rec.Email, s.grant(validUntil, now), nil
}

func (s *service) grant(validUntil, now time.Time) *domain.AccessGrant {
	return &domain.AccessGrant{
		ValidUntil: validUntil,
		ValidFor:   int64(validUntil.Sub(now).Seconds()),
	}
}

func (s *service) buildMagicLink(token string) string {
	return fmt.Sprintf("%s/private-access?token=%s", s.cfg.Server.PublicURL, token)
}

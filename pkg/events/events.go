package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rigaestates/listings-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher is used in dev and tests when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }

// Event subjects
const (
	AccessRequested = "access.requested"
	AccessGranted   = "access.granted"
	AccessDenied    = "access.denied"

	ListingPublished  = "listing.published"
	ListingVisibility = "listing.visibility.changed"
)

// Event payloads
type AccessRequestedEvent struct {
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requested_at"`
}

type AccessGrantedEvent struct {
	Email      string    `json:"email"`
	ValidUntil time.Time `json:"valid_until"`
	GrantedAt  time.Time `json:"granted_at"`
}

type AccessDeniedEvent struct {
	Email    string    `json:"email"`
	Reason   string    `json:"reason"`
	DeniedAt time.Time `json:"denied_at"`
}

type ListingPublishedEvent struct {
	PropertyID  int64     `json:"property_id"`
	Visibility  string    `json:"visibility"`
	PublishedAt time.Time `json:"published_at"`
}

type ListingVisibilityEvent struct {
	PropertyID int64     `json:"property_id"`
	Visibility string    `json:"visibility"`
	ChangedAt  time.Time `json:"changed_at"`
}

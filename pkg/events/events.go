package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aimarketing/accounts/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	AccountRegistered = "account.registered"
	AccountVerified   = "account.verified"
	AccountLogin      = "account.login"
	ProfileUpdated    = "profile.updated"
	FavouriteToggled  = "favourite.toggled"
)

// Event payloads
type AccountRegisteredEvent struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type AccountVerifiedEvent struct {
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}

type AccountLoginEvent struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	LoginAt  time.Time `json:"login_at"`
}

type ProfileUpdatedEvent struct {
	UserID    int64     `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FavouriteToggledEvent struct {
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	ItemID    int64     `json:"item_id"`
	Status    string    `json:"status"`
	ToggledAt time.Time `json:"toggled_at"`
}

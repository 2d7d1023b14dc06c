package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// NATSNotifier publishes refresh events to a NATS subject so other systems
// (search indexers, edge caches) can react to content changes.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to a NATS server.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		return nil, fmt.Errorf("notifier subject is required")
	}

	conn, err := nats.Connect(url,
		nats.Name("docserve"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS notifier connected",
		slog.String("url", url),
		logfields.Subject(subject))

	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Publish marshals the event and publishes it. The subject is extended with
// the event type so subscribers can filter with wildcards.
func (n *NATSNotifier) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject+"."+event.Type, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains the connection so queued events flush first.
func (n *NATSNotifier) Close() error {
	if n.conn == nil || n.conn.IsClosed() {
		return nil
	}
	return n.conn.Drain()
}

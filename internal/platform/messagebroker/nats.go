package messagebroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the publish surface handed to application services, so tests
// can substitute a mock instead of a live connection.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NatsClient wraps a NATS connection for fire-and-forget event publishing.
type NatsClient struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNatsClient connects to NATS. natsURL example: "nats://localhost:4222".
func NewNatsClient(natsURL, appName string, logger *slog.Logger) (*NatsClient, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name(appName),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Error("NATS connection closed", "error", nc.LastError())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsClient{conn: nc, logger: logger}, nil
}

func (c *NatsClient) Publish(ctx context.Context, subject string, data []byte) error {
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection so queued publishes are flushed.
func (c *NatsClient) Close() {
	if c.conn != nil && !c.conn.IsClosed() {
		c.conn.Drain()
	}
}

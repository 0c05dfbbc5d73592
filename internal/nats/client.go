package nats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Close()
}

type marshaler interface {
	Marshal() ([]byte, error)
}

// Publisher sends telemetry to NATS. It degrades to a no-op when the
// server is unavailable and reconnects in the background.
type Publisher struct {
	url    string
	name   string
	logger *slog.Logger

	mu   sync.RWMutex
	conn conn
}

// NewPublisher creates a publisher for url. Call Connect before use.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		url:    url,
		name:   "sdnbridge",
		logger: logger.With("component", "nats-publisher"),
	}
}

// Connect dials the server. On failure the publisher stays usable and
// drops messages; the error is returned for logging.
func (p *Publisher) Connect() error {
	opts := []nats.Option{
		nats.Name(p.name),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(false),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				p.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			p.logger.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(p.url, opts...)
	if err != nil {
		p.logger.Warn("Failed to connect to NATS, telemetry disabled", "url", p.url, "error", err)
		return err
	}

	p.mu.Lock()
	p.conn = nc
	p.mu.Unlock()
	p.logger.Info("Connected to NATS", "url", p.url)
	return nil
}

// Publish marshals m and sends it on subject. No-op while disconnected.
func (p *Publisher) Publish(subject string, m marshaler) {
	p.mu.RLock()
	c := p.conn
	p.mu.RUnlock()

	if c == nil || !c.IsConnected() {
		return
	}

	data, err := m.Marshal()
	if err != nil {
		p.logger.Warn("Failed to marshal telemetry", "subject", subject, "error", err)
		return
	}
	if err := c.Publish(subject, data); err != nil {
		p.logger.Warn("Failed to publish telemetry", "subject", subject, "error", err)
	}
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

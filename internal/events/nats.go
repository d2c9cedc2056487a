package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// subjectPrefix - события уходят в subject dispatch.events.<type>
const subjectPrefix = "dispatch.events."

const flushTimeout = 2 * time.Second

// NATSPublisher публикует события в NATS
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSConn подключается к NATS с переподключением
func NewNATSConn(url, name string, timeout time.Duration) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Subject возвращает subject для типа события
func Subject(t EventType) string {
	return subjectPrefix + string(t)
}

func (p *NATSPublisher) Publish(ctx context.Context, event DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}
	if err := p.conn.Publish(Subject(event.Type), payload); err != nil {
		return fmt.Errorf("failed to publish dispatch event to NATS: %w", err)
	}
	// FlushWithContext требует контекст с дедлайном
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	return nil
}

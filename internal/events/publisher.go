package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

const (
	eventQueueKey = "dispatch_events"
)

// EventType - тип события диспетчеризации
type EventType string

const (
	IncidentReported      EventType = "incident.reported"
	IncidentAssigned      EventType = "incident.assigned"
	IncidentStatusChanged EventType = "incident.status_changed"
	ProviderStatusChanged EventType = "provider.status_changed"
)

// DispatchEvent - событие, которое уходит внешним потребителям
type DispatchEvent struct {
	Type       EventType  `json:"type"`
	IncidentID *uuid.UUID `json:"incident_id,omitempty"`
	Code       string     `json:"code,omitempty"`
	ProviderID *uuid.UUID `json:"provider_id,omitempty"`
	Status     string     `json:"status"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Publisher - интерфейс для публикации событий
type Publisher interface {
	Publish(ctx context.Context, event DispatchEvent) error
}

// NopPublisher отбрасывает события
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, DispatchEvent) error { return nil }

// RedisPublisher - реализация Publisher, складывающая события в очередь Redis
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisPublisher) Publish(ctx context.Context, event DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста
	if err := p.redisClient.LPush(ctx, eventQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish dispatch event to Redis: %w", err)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderPing представляет запись о сигнале исполнителя (координаты и статус)
type ProviderPing struct {
	ID         int64          `json:"id"`
	ProviderID uuid.UUID      `json:"provider_id"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Status     ProviderStatus `json:"status"`
	RecordedAt time.Time      `json:"recorded_at"`
}

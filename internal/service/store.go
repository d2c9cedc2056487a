package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/identifier"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Store определяет контракт транзакционного хранилища инцидентов и исполнителей.
// Чтения вне транзакции видят только зафиксированное состояние.
type Store interface {
	// InTx выполняет fn в одной транзакции. Ошибка fn откатывает все записи.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	// Nearest ищет ближайших подходящих исполнителей по зафиксированному состоянию
	Nearest(ctx context.Context, q geo.Query) (geo.Candidates, error)
}

// Tx - операции внутри транзакции. Lock* блокирует запись до конца транзакции.
// Порядок блокировок: сначала инцидент, затем исполнитель.
type Tx interface {
	identifier.Counter

	CreateIncident(ctx context.Context, incident *models.Incident) error
	LockIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	UpdateIncident(ctx context.Context, incident *models.Incident) error

	CreateProvider(ctx context.Context, provider *models.Provider) error
	LockProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	UpdateProvider(ctx context.Context, provider *models.Provider) error

	SavePing(ctx context.Context, ping *models.ProviderPing) error
}

// IncidentCache - кэш карточек инцидентов
type IncidentCache interface {
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// IncidentFilter - параметры выборки списка инцидентов
type IncidentFilter struct {
	Status     models.IncidentStatus
	ActiveOnly bool
	Page       int
	PageSize   int
}

// Normalize приводит пагинацию к допустимым значениям
func (f IncidentFilter) Normalize() IncidentFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	return f
}

// Matches проверяет инцидент на соответствие фильтру без учёта пагинации
func (f IncidentFilter) Matches(incident *models.Incident) bool {
	if f.Status != "" && incident.Status != f.Status {
		return false
	}
	if f.ActiveOnly && incident.Status.Terminal() {
		return false
	}
	return true
}

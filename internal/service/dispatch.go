package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/events"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=dispatch.go -destination=mocks/mock_dispatch.go -package=mocks

// DispatchService определяет контракт координатора: приём вызовов, подбор, назначение и жизненный цикл
type DispatchService interface {
	ReportIncident(ctx context.Context, req ReportRequest) (*models.Incident, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error)
	FindCandidates(ctx context.Context, incidentID uuid.UUID, opts CandidateOptions) (geo.Candidates, error)
	Assign(ctx context.Context, incidentID, providerID uuid.UUID) (*Assignment, error)
	AdvanceStatus(ctx context.Context, incidentID uuid.UUID, target models.IncidentStatus) (*models.Incident, error)

	RegisterProvider(ctx context.Context, req RegisterProviderRequest) (*models.Provider, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	NearbyProviders(ctx context.Context, req NearbyRequest) (geo.Candidates, error)
	UpdateProviderStatus(ctx context.Context, providerID uuid.UUID, status models.ProviderStatus) (*models.Provider, error)
	RecordPing(ctx context.Context, req PingRequest) (*models.Provider, error)
	VerifyProvider(ctx context.Context, providerID uuid.UUID) (*models.Provider, error)
	SetProviderActive(ctx context.Context, providerID uuid.UUID, active bool) (*models.Provider, error)
	RateProvider(ctx context.Context, providerID uuid.UUID, score float64) (*models.Provider, error)
}

type dispatchService struct {
	store     Store
	cache     IncidentCache
	publisher events.Publisher
	logger    *logrus.Logger
	cfg       *config.Config
	now       func() time.Time
}

// NewDispatchService собирает координатор. cache и publisher могут быть nil.
func NewDispatchService(store Store, cache IncidentCache, logger *logrus.Logger, cfg *config.Config, publisher events.Publisher) DispatchService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &dispatchService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// withTx выполняет транзакцию с таймаутом на попытку и повторяет её при сбоях хранилища
func (s *dispatchService) withTx(ctx context.Context, method string, fn func(ctx context.Context, tx Tx) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.StoreRetryBaseDelay

	attempt := func() (struct{}, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		defer cancel()

		err := s.store.InTx(attemptCtx, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if ctx.Err() != nil {
			// вызывающий отменил запрос, транзакция уже откатилась
			return struct{}{}, backoff.Permanent(err)
		}
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrPersistence) {
			err = fmt.Errorf("%w: store call timed out: %w", ErrPersistence, err)
		}
		if errors.Is(err, ErrPersistence) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.cfg.StoreMaxRetries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.WithFields(logrus.Fields{
				"service": "dispatch",
				"method":  method,
				"retry":   next.String(),
			}).WithError(err).Warn("Store transaction failed, retrying")
		}),
	)
	return err
}

// boundedRead ограничивает чтение из хранилища STORE_TIMEOUT; истечение таймаута считается ErrPersistence
func boundedRead[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(readCtx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrPersistence) {
		err = fmt.Errorf("%w: store call timed out: %w", ErrPersistence, err)
	}
	return v, err
}

// stamp возвращает отметку времени не раньше последней отметки инцидента
func (s *dispatchService) stamp(incident *models.Incident) time.Time {
	now := s.now()
	if latest := incident.LatestTimestamp(); now.Before(latest) {
		return latest
	}
	return now
}

// afterIncidentChange сбрасывает кэш и публикует событие; ошибки не влияют на результат операции
func (s *dispatchService) afterIncidentChange(ctx context.Context, log *logrus.Entry, incident *models.Incident, eventType events.EventType) {
	if s.cache != nil {
		if err := s.cache.InvalidateIncidentCache(ctx, incident.ID); err != nil {
			log.WithError(err).Warn("Failed to invalidate incident cache")
		}
	}
	id := incident.ID
	s.publish(ctx, log, events.DispatchEvent{
		Type:       eventType,
		IncidentID: &id,
		Code:       incident.Code,
		ProviderID: incident.AssignedProviderID,
		Status:     string(incident.Status),
		OccurredAt: incident.UpdatedAt,
	})
}

func (s *dispatchService) publish(ctx context.Context, log *logrus.Entry, event events.DispatchEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event_type", event.Type).Warn("Failed to publish dispatch event")
	}
}

package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/events"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RegisterProviderRequest - данные для подключения исполнителя
type RegisterProviderRequest struct {
	AccountID           uuid.UUID
	ServiceTypes        []models.ServiceType
	CertificationLevel  string
	LicenseNumber       string
	VehicleType         string
	VehicleNumber       string
	VehicleCapacity     int
	ServiceRadiusMeters int
}

// NearbyRequest - прямой поиск исполнителей около точки
type NearbyRequest struct {
	Location     models.Location
	RadiusMeters float64
	ServiceType  models.ServiceType
	Limit        int
}

// PingRequest - сигнал доступности от исполнителя
type PingRequest struct {
	ProviderID uuid.UUID
	Location   models.Location
	// Status - необязательная смена статуса вместе с сигналом
	Status     models.ProviderStatus
	RecordedAt time.Time
}

var (
	minRating = decimal.NewFromInt(1)
	maxRating = decimal.NewFromInt(models.MaxRating)
)

// RegisterProvider создаёт исполнителя в статусе OFFLINE
func (s *dispatchService) RegisterProvider(ctx context.Context, req RegisterProviderRequest) (*models.Provider, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "dispatch",
		"method":     "RegisterProvider",
		"account_id": req.AccountID,
	})
	log.Info("Attempting to register provider")

	if req.AccountID == uuid.Nil {
		return nil, validationError("account id is required")
	}
	if len(req.ServiceTypes) == 0 {
		return nil, validationError("at least one service type is required")
	}
	services := make([]models.ServiceType, 0, len(req.ServiceTypes))
	seen := make(map[models.ServiceType]struct{}, len(req.ServiceTypes))
	for _, st := range req.ServiceTypes {
		if !st.Valid() {
			return nil, validationError("unknown service type %q", st)
		}
		if _, dup := seen[st]; dup {
			continue
		}
		seen[st] = struct{}{}
		services = append(services, st)
	}
	if req.ServiceRadiusMeters < 0 {
		return nil, validationError("service radius must be positive")
	}
	if req.VehicleCapacity < 0 {
		return nil, validationError("vehicle capacity must not be negative")
	}

	radius := req.ServiceRadiusMeters
	if radius == 0 {
		radius = models.DefaultServiceRadiusMeters
	}
	capacity := req.VehicleCapacity
	if capacity == 0 {
		capacity = 1
	}

	now := s.now()
	provider := &models.Provider{
		ID:                  uuid.New(),
		AccountID:           req.AccountID,
		ServiceTypes:        services,
		CertificationLevel:  req.CertificationLevel,
		LicenseNumber:       req.LicenseNumber,
		IsActive:            true,
		Status:              models.ProviderOffline,
		VehicleType:         req.VehicleType,
		VehicleNumber:       req.VehicleNumber,
		VehicleCapacity:     capacity,
		Rating:              decimal.Zero,
		ServiceRadiusMeters: radius,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err := s.withTx(ctx, "RegisterProvider", func(ctx context.Context, tx Tx) error {
		return tx.CreateProvider(ctx, provider)
	})
	if err != nil {
		log.WithError(err).Error("Failed to create provider in store")
		return nil, fmt.Errorf("service: could not register provider: %w", err)
	}

	log.WithField("provider_id", provider.ID).Info("Provider registered successfully")
	return provider, nil
}

// GetProvider получает исполнителя по ID
func (s *dispatchService) GetProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	provider, err := boundedRead(ctx, s.cfg.StoreTimeout, func(ctx context.Context) (*models.Provider, error) {
		return s.store.GetProvider(ctx, id)
	})
	if err != nil {
		s.logger.WithField("provider_id", id).WithError(err).Warn("Failed to get provider from store")
		return nil, fmt.Errorf("service: could not get provider: %w", err)
	}
	return provider, nil
}

// NearbyProviders ищет доступных исполнителей около произвольной точки
func (s *dispatchService) NearbyProviders(ctx context.Context, req NearbyRequest) (geo.Candidates, error) {
	if !req.Location.Valid() {
		return nil, validationError("location (%v, %v) is out of range", req.Location.Latitude, req.Location.Longitude)
	}
	if req.ServiceType != "" && !req.ServiceType.Valid() {
		return nil, validationError("unknown service type %q", req.ServiceType)
	}

	candidates, err := s.nearest(ctx, geo.Query{
		Point:        req.Location,
		RadiusMeters: req.RadiusMeters,
		ServiceType:  req.ServiceType,
		Limit:        req.Limit,
	})
	if err != nil {
		s.logger.WithField("method", "NearbyProviders").WithError(err).Error("Failed to query geospatial index")
		return nil, fmt.Errorf("service: could not find nearby providers: %w", err)
	}
	return candidates, nil
}

// UpdateProviderStatus меняет статус по запросу самого исполнителя.
// IN_EMERGENCY так выставить или снять нельзя.
func (s *dispatchService) UpdateProviderStatus(ctx context.Context, providerID uuid.UUID, status models.ProviderStatus) (*models.Provider, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "UpdateProviderStatus",
		"provider_id": providerID,
		"target":      status,
	})

	if !status.Valid() {
		return nil, validationError("unknown provider status %q", status)
	}

	provider, err := s.mutateProvider(ctx, "UpdateProviderStatus", providerID, func(p *models.Provider) error {
		return applyClientStatus(p, status)
	})
	if err != nil {
		log.WithError(err).Warn("Failed to update provider status")
		return nil, fmt.Errorf("service: could not update provider status: %w", err)
	}

	log.Info("Provider status updated successfully")
	s.publishProviderStatus(ctx, log, provider)
	return provider, nil
}

func applyClientStatus(p *models.Provider, status models.ProviderStatus) error {
	if p.Status == status {
		return fmt.Errorf("provider %s is %s: %w", p.ID, status, ErrAlreadyInState)
	}
	if !models.CanTransitionProvider(p.Status, status, models.ActorClient) {
		return transitionError(p.Status, status)
	}
	p.Status = status
	return nil
}

// RecordPing принимает координаты от фида доступности.
// Сигнал старше текущей позиции не сдвигает её.
func (s *dispatchService) RecordPing(ctx context.Context, req PingRequest) (*models.Provider, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "RecordPing",
		"provider_id": req.ProviderID,
	})

	if !req.Location.Valid() {
		return nil, validationError("location (%v, %v) is out of range", req.Location.Latitude, req.Location.Longitude)
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, validationError("unknown provider status %q", req.Status)
	}

	statusChanged := false
	var provider *models.Provider
	err := s.withTx(ctx, "RecordPing", func(ctx context.Context, tx Tx) error {
		statusChanged = false
		p, err := tx.LockProvider(ctx, req.ProviderID)
		if err != nil {
			return err
		}

		now := s.now()
		recordedAt := req.RecordedAt
		if recordedAt.IsZero() || recordedAt.After(now) {
			recordedAt = now
		}

		if req.Status != "" && req.Status != p.Status {
			if err := applyClientStatus(p, req.Status); err != nil {
				return err
			}
			statusChanged = true
		}

		if p.Position == nil || !recordedAt.Before(p.Position.UpdatedAt) {
			p.Position = &models.Position{
				Latitude:  req.Location.Latitude,
				Longitude: req.Location.Longitude,
				UpdatedAt: recordedAt,
			}
		} else {
			log.WithField("recorded_at", recordedAt).Debug("Ignoring stale position")
		}
		if p.LastPingAt == nil || p.LastPingAt.Before(recordedAt) {
			p.LastPingAt = &recordedAt
		}
		p.UpdatedAt = now

		if err := tx.UpdateProvider(ctx, p); err != nil {
			return err
		}
		if err := tx.SavePing(ctx, &models.ProviderPing{
			ProviderID: p.ID,
			Latitude:   req.Location.Latitude,
			Longitude:  req.Location.Longitude,
			Status:     p.Status,
			RecordedAt: recordedAt,
		}); err != nil {
			return err
		}
		provider = p
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to record provider ping")
		return nil, fmt.Errorf("service: could not record ping: %w", err)
	}

	log.Debug("Provider ping recorded")
	if statusChanged {
		s.publishProviderStatus(ctx, log, provider)
	}
	return provider, nil
}

// VerifyProvider отмечает исполнителя проверенным; повторный вызов ничего не меняет
func (s *dispatchService) VerifyProvider(ctx context.Context, providerID uuid.UUID) (*models.Provider, error) {
	provider, err := s.mutateProvider(ctx, "VerifyProvider", providerID, func(p *models.Provider) error {
		if p.IsVerified {
			return nil
		}
		now := s.now()
		p.IsVerified = true
		p.VerifiedAt = &now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service: could not verify provider: %w", err)
	}
	return provider, nil
}

// SetProviderActive включает или отключает исполнителя. Занятого исполнителя отключить нельзя.
func (s *dispatchService) SetProviderActive(ctx context.Context, providerID uuid.UUID, active bool) (*models.Provider, error) {
	provider, err := s.mutateProvider(ctx, "SetProviderActive", providerID, func(p *models.Provider) error {
		if !active && p.CurrentIncidentID != nil {
			return conflictError("provider %s holds incident %s", p.ID, *p.CurrentIncidentID)
		}
		p.IsActive = active
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service: could not change provider activity: %w", err)
	}
	return provider, nil
}

// RateProvider учитывает оценку от 1 до 5
func (s *dispatchService) RateProvider(ctx context.Context, providerID uuid.UUID, score float64) (*models.Provider, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, validationError("rating must be a finite number")
	}
	value := decimal.NewFromFloat(score)
	if value.LessThan(minRating) || value.GreaterThan(maxRating) {
		return nil, validationError("rating must be between %s and %s", minRating, maxRating)
	}

	provider, err := s.mutateProvider(ctx, "RateProvider", providerID, func(p *models.Provider) error {
		p.AddRating(value)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service: could not rate provider: %w", err)
	}
	return provider, nil
}

// mutateProvider блокирует исполнителя, применяет fn и сохраняет результат
func (s *dispatchService) mutateProvider(ctx context.Context, method string, providerID uuid.UUID, fn func(p *models.Provider) error) (*models.Provider, error) {
	var provider *models.Provider
	err := s.withTx(ctx, method, func(ctx context.Context, tx Tx) error {
		p, err := tx.LockProvider(ctx, providerID)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now()
		if err := tx.UpdateProvider(ctx, p); err != nil {
			return err
		}
		provider = p
		return nil
	})
	return provider, err
}

func (s *dispatchService) publishProviderStatus(ctx context.Context, log *logrus.Entry, provider *models.Provider) {
	id := provider.ID
	s.publish(ctx, log, events.DispatchEvent{
		Type:       events.ProviderStatusChanged,
		IncidentID: provider.CurrentIncidentID,
		ProviderID: &id,
		Status:     string(provider.Status),
		OccurredAt: provider.UpdatedAt,
	})
}

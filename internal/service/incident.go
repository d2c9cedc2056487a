package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/events"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/identifier"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

// ReportRequest - данные нового вызова
type ReportRequest struct {
	ReporterID  *uuid.UUID
	IsAnonymous bool
	Category    models.Category
	Priority    models.Priority
	Location    models.Location
	Address     string
	City        string
	Description string
	Symptoms    []string
	PatientInfo map[string]any
	Attachments []string
}

func (r ReportRequest) validate() error {
	if !r.Location.Valid() {
		return validationError("location (%v, %v) is out of range", r.Location.Latitude, r.Location.Longitude)
	}
	if !r.Category.Valid() {
		return validationError("unknown category %q, expected one of %v", r.Category, models.Categories())
	}
	if r.Priority != "" && !r.Priority.Valid() {
		return validationError("unknown priority %q", r.Priority)
	}
	if !r.IsAnonymous && r.ReporterID == nil {
		return validationError("reporter is required for non-anonymous reports")
	}
	return nil
}

// CandidateOptions - параметры подбора исполнителей для инцидента
type CandidateOptions struct {
	Limit        int
	RadiusMeters float64
	// ServiceType переопределяет тип службы, выведенный из категории
	ServiceType models.ServiceType
}

// Assignment - результат назначения: обе стороны связи после фиксации
type Assignment struct {
	Incident *models.Incident
	Provider *models.Provider
}

// ReportIncident регистрирует новый инцидент в статусе PENDING
func (s *dispatchService) ReportIncident(ctx context.Context, req ReportRequest) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "dispatch",
		"method":   "ReportIncident",
		"category": req.Category,
	})
	log.Info("Attempting to report a new incident")

	if err := req.validate(); err != nil {
		log.WithError(err).Warn("Rejected incident report")
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}
	reporter := req.ReporterID
	if req.IsAnonymous {
		reporter = nil
	}

	var created *models.Incident
	err := s.withTx(ctx, "ReportIncident", func(ctx context.Context, tx Tx) error {
		now := s.now()
		code, err := identifier.NewGenerator(s.cfg.CodePrefix, tx).NextCode(ctx, now.Year())
		if err != nil {
			return err
		}
		incident := &models.Incident{
			ID:          uuid.New(),
			Code:        code,
			Category:    req.Category,
			Priority:    priority,
			Status:      models.IncidentPending,
			Location:    req.Location,
			Address:     req.Address,
			City:        req.City,
			Description: req.Description,
			Symptoms:    req.Symptoms,
			PatientInfo: req.PatientInfo,
			Attachments: req.Attachments,
			IsAnonymous: req.IsAnonymous,
			ReporterID:  reporter,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateIncident(ctx, incident); err != nil {
			return err
		}
		created = incident
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to create incident in store")
		return nil, fmt.Errorf("service: could not report incident: %w", err)
	}

	log = log.WithField("incident_id", created.ID).WithField("code", created.Code)
	log.Info("Incident reported successfully")
	s.afterIncidentChange(ctx, log, created, events.IncidentReported)
	return created, nil
}

// GetIncident получает инцидент по ID, сначала из кэша
func (s *dispatchService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Debug("Fetching incident by ID")

	if s.cache != nil {
		cached, err := s.cache.GetIncidentFromCache(ctx, id)
		if err != nil {
			log.WithError(err).Warn("Failed to read incident cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	incident, err := boundedRead(ctx, s.cfg.StoreTimeout, func(ctx context.Context) (*models.Incident, error) {
		return s.store.GetIncident(ctx, id)
	})
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from store")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetIncidentCache(ctx, incident); err != nil {
			log.WithError(err).Warn("Failed to write incident cache")
		}
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *dispatchService) ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error) {
	filter = filter.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("unknown status %q", filter.Status)
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "dispatch",
		"method":    "ListIncidents",
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})

	incidents, err := boundedRead(ctx, s.cfg.StoreTimeout, func(ctx context.Context) ([]*models.Incident, error) {
		return s.store.ListIncidents(ctx, filter)
	})
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from store")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Debug("Incidents listed successfully")
	return incidents, nil
}

// FindCandidates подбирает ближайших доступных исполнителей для инцидента
func (s *dispatchService) FindCandidates(ctx context.Context, incidentID uuid.UUID, opts CandidateOptions) (geo.Candidates, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "FindCandidates",
		"incident_id": incidentID,
	})

	if opts.ServiceType != "" && !opts.ServiceType.Valid() {
		return nil, validationError("unknown service type %q", opts.ServiceType)
	}

	incident, err := boundedRead(ctx, s.cfg.StoreTimeout, func(ctx context.Context) (*models.Incident, error) {
		return s.store.GetIncident(ctx, incidentID)
	})
	if err != nil {
		log.WithError(err).Warn("Failed to get incident for candidate search")
		return nil, fmt.Errorf("service: could not find candidates: %w", err)
	}

	serviceType := opts.ServiceType
	if serviceType == "" {
		serviceType, _ = incident.Category.ServiceType()
	}

	candidates, err := s.nearest(ctx, geo.Query{
		Point:        incident.Location,
		RadiusMeters: opts.RadiusMeters,
		ServiceType:  serviceType,
		Limit:        opts.Limit,
	})
	if err != nil {
		log.WithError(err).Error("Failed to query geospatial index")
		return nil, fmt.Errorf("service: could not find candidates: %w", err)
	}

	log.WithFields(logrus.Fields{
		"service_type": serviceType,
		"count":        len(candidates),
	}).Info("Candidate search completed")
	return candidates, nil
}

// nearest дополняет запрос настройками по умолчанию и ограничивает время запроса
func (s *dispatchService) nearest(ctx context.Context, q geo.Query) (geo.Candidates, error) {
	if q.RadiusMeters <= 0 {
		q.RadiusMeters = s.cfg.DefaultSearchRadiusMeters
	}
	if q.Limit <= 0 {
		q.Limit = s.cfg.DefaultCandidateLimit
	}
	q.MaxAge = s.cfg.LocationMaxAge
	q.Now = s.now()

	q = q.Normalize()
	return boundedRead(ctx, s.cfg.StoreTimeout, func(ctx context.Context) (geo.Candidates, error) {
		return s.store.Nearest(ctx, q)
	})
}

// Assign связывает инцидент и исполнителя. Все четыре записи фиксируются в одной транзакции.
func (s *dispatchService) Assign(ctx context.Context, incidentID, providerID uuid.UUID) (*Assignment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "Assign",
		"incident_id": incidentID,
		"provider_id": providerID,
	})
	log.Info("Attempting to assign provider")

	var result *Assignment
	err := s.withTx(ctx, "Assign", func(ctx context.Context, tx Tx) error {
		incident, err := tx.LockIncident(ctx, incidentID)
		if err != nil {
			return err
		}
		provider, err := tx.LockProvider(ctx, providerID)
		if err != nil {
			return err
		}

		if incident.Status.Terminal() {
			return transitionError(incident.Status, models.IncidentDispatched)
		}
		if incident.AssignedProviderID != nil {
			return conflictError("incident %s already assigned to provider %s", incident.Code, *incident.AssignedProviderID)
		}
		if incident.Status != models.IncidentPending && incident.Status != models.IncidentDispatched {
			return conflictError("incident %s is %s", incident.Code, incident.Status)
		}
		if !provider.IsActive {
			return conflictError("provider %s is not active", provider.ID)
		}
		if provider.CurrentIncidentID != nil {
			return conflictError("provider %s already holds incident %s", provider.ID, *provider.CurrentIncidentID)
		}
		if !models.CanTransitionProvider(provider.Status, models.ProviderInEmergency, models.ActorDispatcher) {
			return conflictError("provider %s is %s", provider.ID, provider.Status)
		}

		now := s.stamp(incident)
		pid := provider.ID
		incident.AssignedProviderID = &pid
		lastPID := pid
		incident.LastProviderID = &lastPID
		incident.Status = models.IncidentDispatched
		if incident.DispatchedAt == nil {
			incident.DispatchedAt = &now
		}
		incident.UpdatedAt = now

		iid := incident.ID
		provider.CurrentIncidentID = &iid
		provider.Status = models.ProviderInEmergency
		provider.UpdatedAt = now

		if err := tx.UpdateIncident(ctx, incident); err != nil {
			return err
		}
		if err := tx.UpdateProvider(ctx, provider); err != nil {
			return err
		}
		result = &Assignment{Incident: incident, Provider: provider}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to assign provider")
		return nil, fmt.Errorf("service: could not assign provider: %w", err)
	}

	log.WithField("code", result.Incident.Code).Info("Provider assigned successfully")
	s.afterIncidentChange(ctx, log, result.Incident, events.IncidentAssigned)
	s.publishProviderStatus(ctx, log, result.Provider)
	return result, nil
}

// AdvanceStatus переводит инцидент по жизненному циклу.
// При RESOLVED/CANCELLED исполнитель освобождается и его счётчики обновляются.
func (s *dispatchService) AdvanceStatus(ctx context.Context, incidentID uuid.UUID, target models.IncidentStatus) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "AdvanceStatus",
		"incident_id": incidentID,
		"target":      target,
	})
	log.Info("Attempting to advance incident status")

	if !target.Valid() {
		return nil, validationError("unknown status %q", target)
	}

	var (
		updated  *models.Incident
		released *models.Provider
	)
	err := s.withTx(ctx, "AdvanceStatus", func(ctx context.Context, tx Tx) error {
		released = nil

		incident, err := tx.LockIncident(ctx, incidentID)
		if err != nil {
			return err
		}
		if incident.Status == target {
			return fmt.Errorf("incident %s is %s: %w", incident.Code, target, ErrAlreadyInState)
		}
		// DISPATCHED требует исполнителя и выставляется только через Assign
		if target == models.IncidentDispatched || !models.CanTransitionIncident(incident.Status, target) {
			return transitionError(incident.Status, target)
		}

		now := s.stamp(incident)
		switch target {
		case models.IncidentOnSite:
			incident.ArrivedAt = &now
		case models.IncidentResolved:
			incident.ResolvedAt = &now
		case models.IncidentCancelled:
			incident.CancelledAt = &now
		}
		incident.Status = target
		incident.UpdatedAt = now

		if target.Terminal() && incident.AssignedProviderID != nil {
			provider, err := tx.LockProvider(ctx, *incident.AssignedProviderID)
			if err != nil {
				return err
			}
			if s.releaseProvider(log, provider, incident, now) {
				if err := tx.UpdateProvider(ctx, provider); err != nil {
					return err
				}
				released = provider
			}
			incident.AssignedProviderID = nil
		}

		if err := tx.UpdateIncident(ctx, incident); err != nil {
			return err
		}
		updated = incident
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to advance incident status")
		return nil, fmt.Errorf("service: could not advance incident status: %w", err)
	}

	log.WithField("code", updated.Code).Info("Incident status advanced successfully")
	s.afterIncidentChange(ctx, log, updated, events.IncidentStatusChanged)
	if released != nil {
		s.publishProviderStatus(ctx, log, released)
	}
	return updated, nil
}

// releaseProvider снимает связь исполнителя с завершённым инцидентом и учитывает его в счётчиках.
// false - исполнитель уже не держит этот инцидент и не изменялся.
func (s *dispatchService) releaseProvider(log *logrus.Entry, provider *models.Provider, incident *models.Incident, now time.Time) bool {
	if provider.CurrentIncidentID == nil || *provider.CurrentIncidentID != incident.ID {
		log.WithField("provider_id", provider.ID).Warn("Assigned provider does not hold the incident, leaving provider untouched")
		return false
	}

	provider.CurrentIncidentID = nil
	if models.CanTransitionProvider(provider.Status, models.ProviderAvailable, models.ActorDispatcher) {
		provider.Status = models.ProviderAvailable
	}
	provider.TotalEmergencies++
	if incident.Status == models.IncidentResolved {
		provider.CompletedEmergencies++
	}
	if incident.ArrivedAt != nil {
		provider.RecordResponse(incident.ArrivedAt.Sub(incident.CreatedAt))
	}
	provider.UpdatedAt = now
	return true
}

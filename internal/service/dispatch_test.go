package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/events"
	event_mocks "github.com/shenikar/emergency_dispatch/internal/events/mocks"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shenikar/emergency_dispatch/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testDeps struct {
	store     *mocks.MockStore
	tx        *mocks.MockTx
	cache     *mocks.MockIncidentCache
	publisher *event_mocks.MockPublisher
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.StorageDriver = config.StorageMemory
	cfg.StoreRetryBaseDelay = time.Millisecond
	cfg.StoreTimeout = time.Second
	return cfg
}

// newTestDispatchService - вспомогательная функция для создания сервиса с моками.
func newTestDispatchService(t *testing.T) (service.DispatchService, testDeps) {
	return newTestDispatchServiceWithConfig(t, testConfig())
}

func newTestDispatchServiceWithConfig(t *testing.T, cfg *config.Config) (service.DispatchService, testDeps) {
	ctrl := gomock.NewController(t)
	deps := testDeps{
		store:     mocks.NewMockStore(ctrl),
		tx:        mocks.NewMockTx(ctrl),
		cache:     mocks.NewMockIncidentCache(ctrl),
		publisher: event_mocks.NewMockPublisher(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := service.NewDispatchService(deps.store, deps.cache, logger, cfg, deps.publisher)
	return svc, deps
}

// runTx настраивает InTx так, чтобы fn выполнялась на моке транзакции
func (d testDeps) runTx() *gomock.Call {
	return d.store.EXPECT().
		InTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, service.Tx) error) error {
			return fn(ctx, d.tx)
		})
}

func validReport() service.ReportRequest {
	reporter := uuid.New()
	return service.ReportRequest{
		ReporterID: &reporter,
		Category:   models.CategoryMedical,
		Location:   models.Location{Latitude: 14.5995, Longitude: 120.9842},
		Address:    "Rizal Park",
		City:       "Manila",
	}
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expected := &models.Incident{ID: incidentID, Code: "EMT-2026-0001"}

	// Ожидания
	deps.cache.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(expected, nil).
		Times(1)

	// Действие
	incident, err := svc.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incident)
}

func TestGetIncident_Success_FromStoreAndSetCache(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expected := &models.Incident{ID: incidentID, Code: "EMT-2026-0001"}

	// Ожидания
	gomock.InOrder(
		deps.cache.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, nil),
		deps.store.EXPECT().GetIncident(gomock.Any(), incidentID).Return(expected, nil),
		deps.cache.EXPECT().SetIncidentCache(ctx, expected).Return(nil),
	)

	// Действие
	incident, err := svc.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incident)
}

func TestGetIncident_CacheErrorFallsBackToStore(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expected := &models.Incident{ID: incidentID}

	// Ожидания
	deps.cache.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, errors.New("redis down"))
	deps.store.EXPECT().GetIncident(gomock.Any(), incidentID).Return(expected, nil)
	deps.cache.EXPECT().SetIncidentCache(ctx, expected).Return(errors.New("redis down"))

	// Действие
	incident, err := svc.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	deps.cache.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, nil)
	deps.store.EXPECT().
		GetIncident(gomock.Any(), incidentID).
		Return(nil, fmt.Errorf("get incident: %w", service.ErrNotFound))

	// Действие
	incident, err := svc.GetIncident(ctx, incidentID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestReportIncident_Success(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx := context.Background()
	req := validReport()
	year := time.Now().UTC().Year()

	var stored *models.Incident

	// Ожидания
	deps.runTx()
	deps.tx.EXPECT().Next(gomock.Any(), year).Return(int64(7), nil)
	deps.tx.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, incident *models.Incident) error {
			stored = incident
			return nil
		})
	deps.cache.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Return(nil)
	deps.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event events.DispatchEvent) error {
			assert.Equal(t, events.IncidentReported, event.Type)
			assert.Equal(t, string(models.IncidentPending), event.Status)
			return nil
		})

	// Действие
	incident, err := svc.ReportIncident(ctx, req)

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, fmt.Sprintf("EMT-%d-0007", year), incident.Code)
	assert.Equal(t, models.IncidentPending, incident.Status)
	assert.Equal(t, models.DefaultPriority, incident.Priority)
	assert.Equal(t, req.ReporterID, incident.ReporterID)
	assert.Nil(t, incident.AssignedProviderID)
	assert.Equal(t, stored.ID, incident.ID)
}

func TestReportIncident_AnonymousDropsReporter(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	req := validReport()
	req.IsAnonymous = true

	// Ожидания
	deps.runTx()
	deps.tx.EXPECT().Next(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	deps.tx.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Return(nil)
	deps.cache.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Return(nil)
	deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	// Действие
	incident, err := svc.ReportIncident(context.Background(), req)

	// Проверки
	require.NoError(t, err)
	assert.True(t, incident.IsAnonymous)
	assert.Nil(t, incident.ReporterID)
}

func TestReportIncident_ValidationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *service.ReportRequest)
	}{
		{"latitude out of range", func(r *service.ReportRequest) { r.Location.Latitude = 91 }},
		{"longitude out of range", func(r *service.ReportRequest) { r.Location.Longitude = -181 }},
		{"unknown category", func(r *service.ReportRequest) { r.Category = "EARTHQUAKE" }},
		{"unknown priority", func(r *service.ReportRequest) { r.Priority = "BLUE" }},
		{"missing reporter", func(r *service.ReportRequest) { r.ReporterID = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Подготовка
			svc, _ := newTestDispatchService(t)
			req := validReport()
			tt.mutate(&req)

			// Действие
			incident, err := svc.ReportIncident(context.Background(), req)

			// Проверки: хранилище не вызывается
			require.Error(t, err)
			assert.Nil(t, incident)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestReportIncident_UnknownCategoryListsAllowed(t *testing.T) {
	svc, _ := newTestDispatchService(t)
	req := validReport()
	req.Category = "EARTHQUAKE"

	_, err := svc.ReportIncident(context.Background(), req)

	require.ErrorIs(t, err, service.ErrValidation)
	for _, c := range models.Categories() {
		assert.Contains(t, err.Error(), string(c))
	}
}

func TestReportIncident_RetriesPersistenceErrors(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)

	// Ожидания
	gomock.InOrder(
		deps.store.EXPECT().
			InTx(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("commit: %w", service.ErrPersistence)),
		deps.runTx(),
	)
	deps.tx.EXPECT().Next(gomock.Any(), gomock.Any()).Return(int64(2), nil)
	deps.tx.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Return(nil)
	deps.cache.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Return(nil)
	deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	// Действие
	incident, err := svc.ReportIncident(context.Background(), validReport())

	// Проверки
	require.NoError(t, err)
	assert.NotEmpty(t, incident.Code)
}

func TestReportIncident_GivesUpAfterMaxRetries(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)

	// Ожидания
	deps.store.EXPECT().
		InTx(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("begin: %w", service.ErrPersistence)).
		Times(testConfig().StoreMaxRetries)

	// Действие
	incident, err := svc.ReportIncident(context.Background(), validReport())

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, service.ErrPersistence)
}

func TestReportIncident_ConflictIsNotRetried(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)

	// Ожидания
	deps.store.EXPECT().
		InTx(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("insert: %w", service.ErrConflict)).
		Times(1)

	// Действие
	_, err := svc.ReportIncident(context.Background(), validReport())

	// Проверки
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestReportIncident_PublishFailureIsNotFatal(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)

	// Ожидания
	deps.runTx()
	deps.tx.EXPECT().Next(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	deps.tx.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Return(nil)
	deps.cache.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("queue down"))

	// Действие
	incident, err := svc.ReportIncident(context.Background(), validReport())

	// Проверки
	require.NoError(t, err)
	assert.NotNil(t, incident)
}

func TestFindCandidates_UsesCategoryAndDefaults(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx := context.Background()
	incident := &models.Incident{
		ID:       uuid.New(),
		Category: models.CategoryFire,
		Status:   models.IncidentPending,
		Location: models.Location{Latitude: 14.5995, Longitude: 120.9842},
	}
	expected := geo.Candidates{{ProviderID: uuid.New(), DistanceMeters: 120}}

	// Ожидания
	deps.store.EXPECT().GetIncident(gomock.Any(), incident.ID).Return(incident, nil)
	deps.store.EXPECT().
		Nearest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q geo.Query) (geo.Candidates, error) {
			assert.Equal(t, models.ServiceFireTruck, q.ServiceType)
			assert.Equal(t, incident.Location, q.Point)
			assert.InDelta(t, 5000, q.RadiusMeters, 0.001)
			assert.Equal(t, 10, q.Limit)
			assert.Equal(t, 15*time.Minute, q.MaxAge)
			return expected, nil
		})

	// Действие
	candidates, err := svc.FindCandidates(ctx, incident.ID, service.CandidateOptions{})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, candidates)
}

func TestFindCandidates_UnknownServiceType(t *testing.T) {
	svc, _ := newTestDispatchService(t)

	_, err := svc.FindCandidates(context.Background(), uuid.New(), service.CandidateOptions{ServiceType: "BOAT"})

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAssign_ProviderBusy(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	other := uuid.New()
	incident := &models.Incident{ID: uuid.New(), Code: "EMT-2026-0001", Status: models.IncidentPending}
	provider := &models.Provider{
		ID:                uuid.New(),
		IsActive:          true,
		Status:            models.ProviderInEmergency,
		CurrentIncidentID: &other,
	}

	// Ожидания: обновления не выполняются
	deps.runTx()
	deps.tx.EXPECT().LockIncident(gomock.Any(), incident.ID).Return(incident, nil)
	deps.tx.EXPECT().LockProvider(gomock.Any(), provider.ID).Return(provider, nil)

	// Действие
	result, err := svc.Assign(context.Background(), incident.ID, provider.ID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestAssign_TerminalIncident(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	incident := &models.Incident{ID: uuid.New(), Status: models.IncidentResolved}
	provider := &models.Provider{ID: uuid.New(), IsActive: true, Status: models.ProviderAvailable}

	// Ожидания
	deps.runTx()
	deps.tx.EXPECT().LockIncident(gomock.Any(), incident.ID).Return(incident, nil)
	deps.tx.EXPECT().LockProvider(gomock.Any(), provider.ID).Return(provider, nil)

	// Действие
	_, err := svc.Assign(context.Background(), incident.ID, provider.ID)

	// Проверки
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestAssign_UpdatesBothSides(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	incident := &models.Incident{
		ID:        uuid.New(),
		Code:      "EMT-2026-0003",
		Status:    models.IncidentPending,
		CreatedAt: time.Now().UTC(),
	}
	provider := &models.Provider{ID: uuid.New(), IsActive: true, Status: models.ProviderAvailable}

	// Ожидания
	deps.runTx()
	deps.tx.EXPECT().LockIncident(gomock.Any(), incident.ID).Return(incident, nil)
	deps.tx.EXPECT().LockProvider(gomock.Any(), provider.ID).Return(provider, nil)
	deps.tx.EXPECT().UpdateIncident(gomock.Any(), gomock.Any()).Return(nil)
	deps.tx.EXPECT().UpdateProvider(gomock.Any(), gomock.Any()).Return(nil)
	deps.cache.EXPECT().InvalidateIncidentCache(gomock.Any(), incident.ID).Return(nil)
	deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	// Действие
	result, err := svc.Assign(context.Background(), incident.ID, provider.ID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentDispatched, result.Incident.Status)
	assert.Equal(t, provider.ID, *result.Incident.AssignedProviderID)
	assert.NotNil(t, result.Incident.DispatchedAt)
	assert.Equal(t, models.ProviderInEmergency, result.Provider.Status)
	assert.Equal(t, incident.ID, *result.Provider.CurrentIncidentID)
}

func TestAdvanceStatus_AlreadyInState(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	incident := &models.Incident{ID: uuid.New(), Status: models.IncidentCancelled}

	// Ожидания
	deps.runTx()
	deps.tx.EXPECT().LockIncident(gomock.Any(), incident.ID).Return(incident, nil)

	// Действие
	_, err := svc.AdvanceStatus(context.Background(), incident.ID, models.IncidentCancelled)

	// Проверки
	assert.ErrorIs(t, err, service.ErrAlreadyInState)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.False(t, service.IsRetryable(err))
}

func TestAdvanceStatus_UnknownTarget(t *testing.T) {
	svc, _ := newTestDispatchService(t)

	_, err := svc.AdvanceStatus(context.Background(), uuid.New(), "ARCHIVED")

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestListIncidents_NormalizesPaging(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx := context.Background()

	// Ожидания
	deps.store.EXPECT().
		ListIncidents(gomock.Any(), service.IncidentFilter{Page: 1, PageSize: 20}).
		Return([]*models.Incident{}, nil)

	// Действие
	incidents, err := svc.ListIncidents(ctx, service.IncidentFilter{Page: 0, PageSize: 1000})

	// Проверки
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestListIncidents_UnknownStatus(t *testing.T) {
	svc, _ := newTestDispatchService(t)

	_, err := svc.ListIncidents(context.Background(), service.IncidentFilter{Status: "LOST"})

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRateProvider_OutOfRange(t *testing.T) {
	svc, _ := newTestDispatchService(t)

	for _, score := range []float64{0, 0.99, 5.01, -3} {
		_, err := svc.RateProvider(context.Background(), uuid.New(), score)
		assert.ErrorIs(t, err, service.ErrValidation, "score %v", score)
	}
}

func TestRateProvider_NonFiniteScore(t *testing.T) {
	svc, _ := newTestDispatchService(t)

	for _, score := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		var err error
		require.NotPanics(t, func() {
			_, err = svc.RateProvider(context.Background(), uuid.New(), score)
		})
		assert.ErrorIs(t, err, service.ErrValidation, "score %v", score)
	}
}

// blockUntilDone имитирует зависший запрос к хранилищу
func blockUntilDone[T any](ctx context.Context) (T, error) {
	var zero T
	<-ctx.Done()
	return zero, ctx.Err()
}

func TestStoreReads_TimeOutAsPersistence(t *testing.T) {
	// Подготовка
	cfg := testConfig()
	cfg.StoreTimeout = 20 * time.Millisecond
	svc, deps := newTestDispatchServiceWithConfig(t, cfg)
	ctx := context.Background()
	incidentID := uuid.New()
	providerID := uuid.New()

	// Ожидания
	deps.cache.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, nil)
	deps.store.EXPECT().
		GetIncident(gomock.Any(), incidentID).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID) (*models.Incident, error) {
			return blockUntilDone[*models.Incident](ctx)
		}).
		Times(2)
	deps.store.EXPECT().
		ListIncidents(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ service.IncidentFilter) ([]*models.Incident, error) {
			return blockUntilDone[[]*models.Incident](ctx)
		})
	deps.store.EXPECT().
		GetProvider(gomock.Any(), providerID).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID) (*models.Provider, error) {
			return blockUntilDone[*models.Provider](ctx)
		})

	// Действие и проверки
	calls := map[string]func() error{
		"GetIncident": func() error {
			_, err := svc.GetIncident(ctx, incidentID)
			return err
		},
		"FindCandidates": func() error {
			_, err := svc.FindCandidates(ctx, incidentID, service.CandidateOptions{})
			return err
		},
		"ListIncidents": func() error {
			_, err := svc.ListIncidents(ctx, service.IncidentFilter{})
			return err
		},
		"GetProvider": func() error {
			_, err := svc.GetProvider(ctx, providerID)
			return err
		},
	}
	for name, call := range calls {
		start := time.Now()
		err := call()
		assert.ErrorIs(t, err, service.ErrPersistence, name)
		assert.Less(t, time.Since(start), time.Second, name)
	}
}

func TestStoreReads_CallerCancelNotPersistence(t *testing.T) {
	// Подготовка
	svc, deps := newTestDispatchService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	providerID := uuid.New()

	// Ожидания
	deps.store.EXPECT().
		GetProvider(gomock.Any(), providerID).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID) (*models.Provider, error) {
			return blockUntilDone[*models.Provider](ctx)
		})

	// Действие
	_, err := svc.GetProvider(ctx, providerID)

	// Проверки
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, service.ErrPersistence)
}

func TestRegisterProvider_Validation(t *testing.T) {
	svc, _ := newTestDispatchService(t)

	_, err := svc.RegisterProvider(context.Background(), service.RegisterProviderRequest{
		AccountID:    uuid.New(),
		ServiceTypes: []models.ServiceType{"SPACESHIP"},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.RegisterProvider(context.Background(), service.RegisterProviderRequest{AccountID: uuid.New()})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, service.IsRetryable(fmt.Errorf("x: %w", service.ErrPersistence)))
	assert.True(t, service.IsRetryable(fmt.Errorf("x: %w", service.ErrConflict)))
	assert.False(t, service.IsRetryable(service.ErrAlreadyInState))
	assert.False(t, service.IsRetryable(fmt.Errorf("x: %w", service.ErrValidation)))
	assert.False(t, service.IsRetryable(fmt.Errorf("x: %w", service.ErrInvalidTransition)))
}

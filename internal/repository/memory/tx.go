package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

type memTx struct {
	store *Store

	held []string
	// staged записи, видимые только этой транзакции
	incidents        map[uuid.UUID]*models.Incident
	providers        map[uuid.UUID]*models.Provider
	created          []*models.Incident
	createdProviders []*models.Provider
	pings            []models.ProviderPing
}

var _ service.Tx = (*memTx)(nil)

func newTx(s *Store) *memTx {
	return &memTx{
		store:     s,
		incidents: make(map[uuid.UUID]*models.Incident),
		providers: make(map[uuid.UUID]*models.Provider),
	}
}

func incidentKey(id uuid.UUID) string { return "incident:" + id.String() }
func providerKey(id uuid.UUID) string { return "provider:" + id.String() }

func (tx *memTx) holds(key string) bool {
	for _, k := range tx.held {
		if k == key {
			return true
		}
	}
	return false
}

func (tx *memTx) acquire(ctx context.Context, key string) error {
	if tx.holds(key) {
		return nil
	}
	if err := tx.store.locks.lock(ctx, key); err != nil {
		return err
	}
	tx.held = append(tx.held, key)
	return nil
}

// release снимает блокировки в обратном порядке
func (tx *memTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.store.locks.unlock(tx.held[i])
	}
	tx.held = nil
}

// Next выделяет номер кода. Счётчик не откатывается: отменённая транзакция оставляет пропуск.
func (tx *memTx) Next(ctx context.Context, year int) (int64, error) {
	return tx.store.counter.Next(ctx, year)
}

func (tx *memTx) CreateIncident(ctx context.Context, incident *models.Incident) error {
	if err := tx.acquire(ctx, incidentKey(incident.ID)); err != nil {
		return err
	}

	tx.store.mu.RLock()
	_, idTaken := tx.store.incidents[incident.ID]
	_, codeTaken := tx.store.codes[incident.Code]
	tx.store.mu.RUnlock()
	if idTaken || codeTaken {
		return fmt.Errorf("%w: incident %s (%s) already exists", service.ErrConflict, incident.ID, incident.Code)
	}

	c := incident.Clone()
	tx.incidents[c.ID] = c
	tx.created = append(tx.created, c)
	return nil
}

func (tx *memTx) LockIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	if err := tx.acquire(ctx, incidentKey(id)); err != nil {
		return nil, err
	}
	if staged, ok := tx.incidents[id]; ok {
		return staged.Clone(), nil
	}
	return tx.store.GetIncident(ctx, id)
}

func (tx *memTx) UpdateIncident(ctx context.Context, incident *models.Incident) error {
	if !tx.holds(incidentKey(incident.ID)) {
		return fmt.Errorf("incident %s must be locked before update", incident.ID)
	}
	if _, ok := tx.incidents[incident.ID]; !ok {
		if _, err := tx.store.GetIncident(ctx, incident.ID); err != nil {
			return err
		}
	}
	tx.incidents[incident.ID] = incident.Clone()
	return nil
}

func (tx *memTx) CreateProvider(ctx context.Context, provider *models.Provider) error {
	if err := tx.acquire(ctx, providerKey(provider.ID)); err != nil {
		return err
	}

	tx.store.mu.RLock()
	_, idTaken := tx.store.providers[provider.ID]
	_, accountTaken := tx.store.accounts[provider.AccountID]
	tx.store.mu.RUnlock()
	if idTaken || accountTaken {
		return fmt.Errorf("%w: provider for account %s already exists", service.ErrConflict, provider.AccountID)
	}

	c := provider.Clone()
	tx.providers[c.ID] = c
	tx.createdProviders = append(tx.createdProviders, c)
	return nil
}

func (tx *memTx) LockProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	if err := tx.acquire(ctx, providerKey(id)); err != nil {
		return nil, err
	}
	if staged, ok := tx.providers[id]; ok {
		return staged.Clone(), nil
	}
	return tx.store.GetProvider(ctx, id)
}

func (tx *memTx) UpdateProvider(ctx context.Context, provider *models.Provider) error {
	if !tx.holds(providerKey(provider.ID)) {
		return fmt.Errorf("provider %s must be locked before update", provider.ID)
	}
	if _, ok := tx.providers[provider.ID]; !ok {
		if _, err := tx.store.GetProvider(ctx, provider.ID); err != nil {
			return err
		}
	}
	tx.providers[provider.ID] = provider.Clone()
	return nil
}

func (tx *memTx) SavePing(_ context.Context, ping *models.ProviderPing) error {
	tx.pings = append(tx.pings, *ping)
	return nil
}

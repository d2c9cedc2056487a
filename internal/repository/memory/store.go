// Package memory - транзакционное хранилище в памяти процесса.
//
// Записи блокируются поштучно на время транзакции, изменения копятся в транзакции
// и становятся видны только после фиксации. Геоиндекс обновляется в момент фиксации.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/identifier"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

// maxPings - сколько последних сигналов хранить
const maxPings = 10000

type Store struct {
	mu        sync.RWMutex
	incidents map[uuid.UUID]*models.Incident
	codes     map[string]uuid.UUID
	providers map[uuid.UUID]*models.Provider
	accounts  map[uuid.UUID]uuid.UUID
	pings     []models.ProviderPing
	pingSeq   int64

	index   *geo.Index
	counter *identifier.MemoryCounter
	locks   *keyedLocks
}

var _ service.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		incidents: make(map[uuid.UUID]*models.Incident),
		codes:     make(map[string]uuid.UUID),
		providers: make(map[uuid.UUID]*models.Provider),
		accounts:  make(map[uuid.UUID]uuid.UUID),
		index:     geo.NewIndex(),
		counter:   identifier.NewMemoryCounter(),
		locks:     newKeyedLocks(),
	}
}

// InTx выполняет fn; при ошибке или отмене контекста ни одна запись не применяется
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := newTx(s)
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inc := range tx.created {
		if _, ok := s.codes[inc.Code]; ok {
			return fmt.Errorf("%w: incident code %s already exists", service.ErrConflict, inc.Code)
		}
	}
	for _, p := range tx.createdProviders {
		if _, ok := s.accounts[p.AccountID]; ok {
			return fmt.Errorf("%w: account %s already has a provider", service.ErrConflict, p.AccountID)
		}
	}

	for id, inc := range tx.incidents {
		s.incidents[id] = inc
		s.codes[inc.Code] = id
	}
	for id, p := range tx.providers {
		s.providers[id] = p
		s.accounts[p.AccountID] = id
		if entry, ok := geo.EntryFromProvider(p); ok {
			s.index.Upsert(entry)
		} else {
			s.index.Remove(id)
		}
	}
	for _, ping := range tx.pings {
		s.pingSeq++
		ping.ID = s.pingSeq
		s.pings = append(s.pings, ping)
	}
	if over := len(s.pings) - maxPings; over > 0 {
		s.pings = slices.Delete(s.pings, 0, over)
	}
	return nil
}

func (s *Store) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	inc, ok := s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("%w: incident with id %s", service.ErrNotFound, id)
	}
	return inc.Clone(), nil
}

// ListIncidents возвращает инциденты от новых к старым
func (s *Store) ListIncidents(ctx context.Context, filter service.IncidentFilter) ([]*models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter = filter.Normalize()

	s.mu.RLock()
	matched := make([]*models.Incident, 0)
	for _, inc := range s.incidents {
		if filter.Matches(inc) {
			matched = append(matched, inc)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Incident) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Code, a.Code)
	})

	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(matched) {
		return []*models.Incident{}, nil
	}
	end := min(offset+filter.PageSize, len(matched))

	out := make([]*models.Incident, 0, end-offset)
	for _, inc := range matched[offset:end] {
		out = append(out, inc.Clone())
	}
	return out, nil
}

func (s *Store) GetProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: provider with id %s", service.ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (s *Store) Nearest(ctx context.Context, q geo.Query) (geo.Candidates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.index.Nearest(q), nil
}

// Pings возвращает зафиксированные сигналы исполнителя
func (s *Store) Pings(providerID uuid.UUID) []models.ProviderPing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ProviderPing, 0)
	for _, p := range s.pings {
		if p.ProviderID == providerID {
			out = append(out, p)
		}
	}
	return out
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

// querier - общее подмножество пула и транзакции
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store - хранилище инцидентов и исполнителей в PostgreSQL/PostGIS
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) service.Store {
	return &Store{db: db}
}

// InTx открывает транзакцию READ COMMITTED; записи сериализуются блокировками строк
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapError("begin transaction", err)
	}
	// после Commit откат ничего не делает
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

var _ service.Tx = (*pgTx)(nil)

// Next увеличивает счётчик года в той же транзакции; откат транзакции откатывает и номер
func (t *pgTx) Next(ctx context.Context, year int) (int64, error) {
	query := `
		INSERT INTO incident_counters (year, value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET value = incident_counters.value + 1
		RETURNING value;
	`
	var value int64
	if err := t.tx.QueryRow(ctx, query, year).Scan(&value); err != nil {
		return 0, mapError(fmt.Sprintf("next code sequence for %d", year), err)
	}
	return value, nil
}

// Nearest ищет исполнителей средствами PostGIS
func (s *Store) Nearest(ctx context.Context, q geo.Query) (geo.Candidates, error) {
	return nearestProviders(ctx, s.db, q)
}

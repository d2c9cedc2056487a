package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

// mapError приводит ошибки драйвера к видам ошибок сервиса
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, service.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, service.ErrConflict, pgErr.ConstraintName)
		case pgErr.Code == pgerrcode.CheckViolation:
			return fmt.Errorf("%s: %w: %s", op, service.ErrValidation, pgErr.ConstraintName)
		case pgerrcode.IsTransactionRollback(pgErr.Code),
			pgerrcode.IsConnectionException(pgErr.Code),
			pgErr.Code == pgerrcode.LockNotAvailable,
			pgErr.Code == pgerrcode.TooManyConnections,
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow:
			return fmt.Errorf("%s: %w: %w", op, service.ErrPersistence, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, service.ErrPersistence, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

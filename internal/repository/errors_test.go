package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, service.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), service.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "incidents_code_key"}, service.ErrConflict},
		{"check violation", &pgconn.PgError{Code: pgerrcode.CheckViolation}, service.ErrValidation},
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, service.ErrPersistence},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, service.ErrPersistence},
		{"connection failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, service.ErrPersistence},
		{"lock not available", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, service.ErrPersistence},
		{"deadline", context.DeadlineExceeded, service.ErrPersistence},
		{"wrapped deadline", fmt.Errorf("query incidents: %w", context.DeadlineExceeded), service.ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, mapError("op", nil))

	syntax := &pgconn.PgError{Code: pgerrcode.SyntaxError}
	got := mapError("op", syntax)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(got, &pgErr))
	for _, kind := range []error{service.ErrNotFound, service.ErrConflict, service.ErrPersistence, service.ErrValidation} {
		assert.NotErrorIs(t, got, kind)
	}
}

func TestMapError_CanceledIsNotPersistence(t *testing.T) {
	got := mapError("op", context.Canceled)

	assert.ErrorIs(t, got, context.Canceled)
	assert.NotErrorIs(t, got, service.ErrPersistence)
}

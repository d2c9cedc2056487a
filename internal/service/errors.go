package service

import (
	"errors"
	"fmt"
)

// Виды ошибок. Проверяются через errors.Is, конкретные ошибки оборачивают их через %w.
var (
	// ErrValidation - некорректные входные данные, повторять бессмысленно
	ErrValidation = errors.New("validation error")
	// ErrNotFound - инцидент или исполнитель не найден
	ErrNotFound = errors.New("not found")
	// ErrConflict - проигрыш гонки за назначение или повторный переход; можно повторить со свежими данными
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition - недопустимый переход машины состояний
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrPersistence - сбой хранилища; повторяется с задержкой
	ErrPersistence = errors.New("persistence error")

	// ErrAlreadyInState - запись уже в запрошенном статусе, ничего не изменено
	ErrAlreadyInState = fmt.Errorf("%w: already in requested state", ErrConflict)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func transitionError(from, to any) error {
	return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, from, to)
}

// IsRetryable сообщает, имеет ли смысл повторить операцию
func IsRetryable(err error) bool {
	if errors.Is(err, ErrAlreadyInState) {
		return false
	}
	return errors.Is(err, ErrPersistence) || errors.Is(err, ErrConflict)
}

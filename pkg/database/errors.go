package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
)

// ErrNoScope is returned when a repository is called without an owner scope
// in the context. This is a programming error, not a caller error.
var ErrNoScope = errors.New("no owner scope in context")

// MapError converts pgx/pgconn errors to application sentinel errors.
// Context errors pass through untouched so callers can detect cancellation.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", entity, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, apperrors.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", entity, apperrors.ErrDuplicateKey)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", entity, apperrors.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w", entity, apperrors.ErrValidation)
		}
	}

	return fmt.Errorf("%s: %w", entity, err)
}

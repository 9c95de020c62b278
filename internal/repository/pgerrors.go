package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/lib/pq"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"

	pqClassConnection           = "08"
	pqClassResources            = "53"
	pqClassOperatorIntervention = "57"
)

// translate maps driver errors onto the domain error kinds. what names the
// record for the message.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return fmt.Errorf("%s references a missing record: %w", what, domain.ErrNotFound)
		case pqUniqueViolation:
			return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
		case pqCheckViolation:
			return fmt.Errorf("%s violates constraint %s: %w", what, pqErr.Constraint, domain.ErrValidation)
		}
		switch pqErr.Code.Class() {
		case pqClassConnection, pqClassOperatorIntervention, pqClassResources:
			return fmt.Errorf("%s: %s: %w", what, pqErr.Message, domain.ErrBackendUnavailable)
		}
		return fmt.Errorf("%s: %s: %w", what, pqErr.Message, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", what, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", what, err, domain.ErrBackendUnavailable)
	}
	// Anything else left from the driver (bad connection, closed pool,
	// network failure, protocol errors) means the database call did not
	// complete.
	return fmt.Errorf("%s: %v: %w", what, err, domain.ErrBackendUnavailable)
}

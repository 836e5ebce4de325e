package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shipment-console/internal/apperr"
)

const codeUniqueViolation = "23505"

// IsDuplicate reports a unique key violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == codeUniqueViolation
}

// IsNotFound reports an empty single-row result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func notFound(entity, id string) error {
	return apperr.NotFound(fmt.Sprintf("%s %s not found", entity, id))
}

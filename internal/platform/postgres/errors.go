package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// Constraint names from the migrations, used to pick specific store errors.
const (
	usersUsernameKey = "users_username_key"
)

// MapError maps a database error to the store error it represents, wrapping
// the original for logs. Errors without a mapping are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		if pgErr.ConstraintName == usersUsernameKey {
			return fmt.Errorf("%w: %v", store.ErrUsernameExists, err)
		}
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		return fmt.Errorf(
			"%w: foreign key violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ConstraintName,
			err,
		)
	case checkViolationCode:
		return fmt.Errorf(
			"%w: check constraint violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ConstraintName,
			err,
		)
	case notNullViolationCode:
		return fmt.Errorf(
			"%w: not null violation (%s): %v",
			store.ErrInvalidEntity,
			pgErr.ColumnName,
			err,
		)
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// rowsAffected reports whether result touched at least one row.
func rowsAffected(result sql.Result) (bool, error) {
	if result == nil {
		return false, errors.New("nil result")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

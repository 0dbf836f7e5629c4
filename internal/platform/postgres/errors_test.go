package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection refused")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"username taken", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersUsernameKey}, store.ErrUsernameExists},
		{"other unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "x_key"}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"}, store.ErrInvalidEntity},
		{"wrapped pg error", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
		{"unmapped", plain, plain},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapError(tt.err), tt.target)
		})
	}

	assert.NoError(t, MapError(nil))
	assert.NotErrorIs(t, MapError(&pgconn.PgError{Code: uniqueViolationCode}), store.ErrUsernameExists)
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: foreignKeyViolationCode})))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
}

func TestRowsAffected(t *testing.T) {
	t.Parallel()

	ok, err := rowsAffected(sqlmock.NewResult(0, 2))
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = rowsAffected(sqlmock.NewResult(0, 0))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = rowsAffected(sqlmock.NewErrorResult(errors.New("unsupported")))
	assert.Error(t, err)

	_, err = rowsAffected(nil)
	assert.Error(t, err)
}

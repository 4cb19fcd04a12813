package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, dialect string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, dialect, nil), mock
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "23505"}), ErrConflict)
	assert.Nil(t, classify(nil))

	other := errors.New("boom")
	assert.Equal(t, other, classify(other))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40001"})))
	assert.True(t, IsTransient(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransient(errors.New("database is locked")))
	assert.False(t, IsTransient(nil))
}

func TestGetSection_PostgresPlaceholders(t *testing.T) {
	s, mock := newMockStore(t, DialectPostgres)

	mock.ExpectQuery(`SELECT .* FROM sections WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "name", "description", "parent_id",
			"created_by", "updated_by", "created_on", "updated_on",
		}).AddRow(7, 1, "Login", nil, 3, nil, nil, "2026-01-02T03:04:05Z", "2026-01-02T03:04:05Z"))

	sec, err := s.GetSection(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Login", sec.Name)
	require.NotNil(t, sec.ParentID)
	assert.Equal(t, int64(3), *sec.ParentID)
	assert.Equal(t, 2026, sec.CreatedOn.Year())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSections_QueryError(t *testing.T) {
	s, mock := newMockStore(t, DialectSQLite)

	mock.ExpectQuery(`SELECT .* FROM sections WHERE project_id = \?`).
		WithArgs(int64(1)).
		WillReturnError(assert.AnError)

	_, err := s.ListSections(context.Background(), 1)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSection_RollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t, DialectSQLite)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT project_id FROM sections WHERE id = \?`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(1))
	mock.ExpectQuery(`SELECT .* FROM sections WHERE project_id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "name", "description", "parent_id",
			"created_by", "updated_by", "created_on", "updated_on",
		}).
			AddRow(1, 1, "Root", nil, nil, nil, nil, "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z").
			AddRow(2, 1, "Child", nil, 1, nil, nil, "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z"))
	mock.ExpectExec(`DELETE FROM run_tests`).WithArgs(int64(2)).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := s.DeleteSection(context.Background(), 2)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeCol(t *testing.T) {
	cases := []any{
		"2026-03-04T05:06:07.123Z",
		[]byte("2026-03-04 05:06:07"),
		"2026-03-04 05:06:07.5+00:00",
		time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	for _, in := range cases {
		var got time.Time
		require.NoError(t, at(&got).Scan(in))
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, 4, got.Day())
	}

	var bad time.Time
	assert.Error(t, at(&bad).Scan("yesterday"))
	assert.Error(t, at(&bad).Scan(42))
}

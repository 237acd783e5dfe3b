package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPostgres_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	reg := NewRequestPostgres(db)
	ctx := context.Background()

	t.Run("request exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := reg.Exists(ctx, 7)

		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("request missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := reg.Exists(ctx, 404)

		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(1)).
			WillReturnError(errors.New("db down"))

		_, err := reg.Exists(ctx, 1)
		assert.Error(t, err)
	})
}

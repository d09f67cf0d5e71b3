package catalog

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/shopfront/pkg/database"
)

func newCatalogMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func TestLoadFromPostgres_Success(t *testing.T) {
	mock := newCatalogMock(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "title", "price", "image_url"}).
		AddRow("laptop-1", "Basic Laptop", int64(45000), "").
		AddRow("laptop-2", "Gaming Laptop", int64(75000), "")

	mock.ExpectQuery("SELECT id, title, price, image_url").WillReturnRows(rows)

	products, err := LoadFromPostgres(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Gaming Laptop", products[1].Title)
	assert.Equal(t, int64(75000), products[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFromPostgres_EmptyTable(t *testing.T) {
	mock := newCatalogMock(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "title", "price", "image_url"})
	mock.ExpectQuery("SELECT id, title, price, image_url").WillReturnRows(rows)

	_, err := LoadFromPostgres(context.Background(), mock)
	assert.ErrorContains(t, err, "empty")
}

func TestLoadFromPostgres_QueryError(t *testing.T) {
	mock := newCatalogMock(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, title, price, image_url").
		WillReturnError(errors.New("connection refused"))

	_, err := LoadFromPostgres(context.Background(), mock)
	assert.ErrorContains(t, err, "query products")
}

package menu

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_VisibleItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM menu_categories").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow("cat-1", "Starters").
			AddRow("cat-2", "Mains"),
	)
	mock.ExpectQuery("FROM menu_items").WillReturnRows(
		sqlmock.NewRows([]string{"name", "description", "price", "tags", "allergens", "is_available", "category_id"}).
			AddRow("Escargots", "Burgundy snails", 18.0, []byte("{vegetarian}"), []byte("{shellfish}"), true, "cat-1").
			AddRow("Coq au Vin", nil, 34.0, []byte("{}"), []byte("{}"), false, "cat-2").
			AddRow("Mystery Dish", nil, 10.0, []byte("{}"), []byte("{}"), true, nil),
	)

	store := NewStore(db)
	items, err := store.VisibleItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Escargots", items[0].Name)
	assert.Equal(t, "Starters", items[0].Category)
	assert.Equal(t, []string{"vegetarian"}, items[0].Tags)
	assert.Equal(t, []string{"shellfish"}, items[0].Allergens)
	assert.True(t, items[0].Available)

	assert.Equal(t, "Mains", items[1].Category)
	assert.Empty(t, items[1].Description)
	assert.False(t, items[1].Available)

	assert.Equal(t, "Uncategorized", items[2].Category)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_VisibleItems_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM menu_categories").WillReturnError(assert.AnError)

	store := NewStore(db)
	_, err = store.VisibleItems(context.Background())
	assert.Error(t, err)
}

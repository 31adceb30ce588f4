// internal/menu/store.go
package menu

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

const uncategorized = "Uncategorized"

// Store reads menu data from PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// VisibleItems returns every item marked visible, in store order, with
// category names resolved via the categories' own sort order.
func (s *Store) VisibleItems(ctx context.Context) ([]Item, error) {
	categories, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description, price, tags, allergens, is_available, category_id
		FROM menu_items
		WHERE is_visible = true
	`)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item        Item
			description sql.NullString
			categoryID  sql.NullString
		)
		if err := rows.Scan(&item.Name, &description, &item.Price,
			pq.Array(&item.Tags), pq.Array(&item.Allergens),
			&item.Available, &categoryID); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		item.Description = description.String
		item.Category = uncategorized
		if categoryID.Valid {
			if name, ok := categories[categoryID.String]; ok {
				item.Category = name
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}

	return items, nil
}

func (s *Store) categoryNames(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM menu_categories
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("query menu categories: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan menu category: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu categories: %w", err)
	}

	return names, nil
}

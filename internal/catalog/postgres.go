package catalog

import (
	"context"
	"fmt"

	"github.com/utafrali/shopfront/pkg/database"

	"github.com/utafrali/shopfront/internal/domain"
)

// LoadFromPostgres reads the catalog from the products table in display
// order. An empty table is an error so a misconfigured database cannot
// silently replace the seed catalog with nothing.
func LoadFromPostgres(ctx context.Context, db database.DBTX) ([]domain.Product, error) {
	query := `
		SELECT id, title, price, image_url
		FROM products
		ORDER BY position, id`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("products table is empty")
	}

	return products, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

const productColumns = `id, name, description, price, stock, vendor, location, category, image_url, created_at, updated_at`

// CreateProduct inserts a validated product and fills in its assigned id.
func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, description, price, stock, vendor, location, category, image_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.Stock, p.Vendor, p.Location, p.Category, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites the mutable attributes of a product. Stock edits
// through here are the admin path; they do not go through the ledger but
// still collide with in-flight checkouts via the serializable transaction.
func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products
	          SET name = $2, description = $3, price = $4, stock = $5, vendor = $6,
	              location = $7, category = $8, image_url = $9, updated_at = NOW()
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Vendor, p.Location, p.Category, p.ImageURL)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if rows == 0 {
		return inventory.ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes a product terminally. Orders keep their denormalized
// snapshots; checkouts holding the product fail with ItemUnavailable.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if rows == 0 {
		return inventory.ErrProductNotFound
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Vendor,
		&p.Location, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inventory.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return &p, nil
}

// ListProductsByLocation returns the catalog for one town, newest first.
func (r *Repository) ListProductsByLocation(ctx context.Context, location string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE location = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("query products by location: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Vendor,
			&p.Location, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

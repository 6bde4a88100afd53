// Package postgres stores products in PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/jrsteele09/storefront-api/catalog"
	"github.com/jrsteele09/storefront-api/internal/store"
)

var _ catalog.Repo = (*ProductRepo)(nil)

const productColumns = `id, title, description, price, duration, stock, image, views_count, is_top_selling, is_budget_friendly, created_at`

type ProductRepo struct {
	pool store.Pool
}

func NewProductRepo(pool store.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (title, description, price, duration, stock, image, is_top_selling, is_budget_friendly)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		p.Title, p.Description, p.Price, p.Duration, p.Stock, p.Image, p.IsTopSelling, p.IsBudgetFriendly,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return oops.Code("PRODUCT_CREATE_FAILED").With("title", p.Title).Wrap(err)
	}
	return nil
}

func (r *ProductRepo) TopSelling(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return r.query(ctx, "top selling",
		`SELECT `+productColumns+` FROM products WHERE is_top_selling ORDER BY id LIMIT $1`, limit)
}

func (r *ProductRepo) MostViewed(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return r.query(ctx, "most viewed",
		`SELECT `+productColumns+` FROM products ORDER BY views_count DESC, id LIMIT $1`, limit)
}

func (r *ProductRepo) BudgetFriendly(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return r.query(ctx, "budget friendly",
		`SELECT `+productColumns+` FROM products WHERE is_budget_friendly ORDER BY id LIMIT $1`, limit)
}

func (r *ProductRepo) query(ctx context.Context, listing, sql string, limit int) ([]*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, oops.Code("PRODUCT_QUERY_FAILED").With("listing", listing).Wrap(err)
	}
	defer rows.Close()

	products := make([]*catalog.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, oops.Code("PRODUCT_SCAN_FAILED").With("listing", listing).Wrap(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PRODUCT_QUERY_FAILED").With("listing", listing).Wrap(err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Duration, &p.Stock, &p.Image,
		&p.ViewsCount, &p.IsTopSelling, &p.IsBudgetFriendly, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

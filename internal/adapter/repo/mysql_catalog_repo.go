package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
)

type MySQLCatalogRepo struct{ db *sql.DB }

func NewMySQLCatalogRepo(db *sql.DB) *MySQLCatalogRepo { return &MySQLCatalogRepo{db: db} }

const productColumns = `p.id, p.category_id, p.name, p.slug, COALESCE(p.description, ''), p.price, p.tax_percent, p.stock, p.created_at`

type scanner interface{ Scan(dest ...any) error }

func scanProduct(s scanner) (domain.Product, error) {
	var p domain.Product
	err := s.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.TaxPercent, &p.Stock, &p.CreatedAt)
	return p, err
}

func (r *MySQLCatalogRepo) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts filters by category slug when one is given.
func (r *MySQLCatalogRepo) ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p`
	var args []any
	if categorySlug != "" {
		q += ` JOIN categories c ON c.id = p.category_id WHERE c.slug = ?`
		args = append(args, categorySlug)
	}
	q += ` ORDER BY p.id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *MySQLCatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ usecase.CatalogRepo = (*MySQLCatalogRepo)(nil)

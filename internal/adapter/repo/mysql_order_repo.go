package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/shopspring/decimal"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts the order row and its items. Call it inside WithinTx so the
// items cannot outlive a failed order insert.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) (int64, error) {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx, `
INSERT INTO orders (first_name,last_name,email,phone,address,city,created_at,provider_order_id,provider_payment_id,paid)
VALUES (?,?,?,?,?,?,?,?,?,?)
`, o.Customer.FirstName, o.Customer.LastName, o.Customer.Email, o.Customer.Phone, o.Customer.Address, o.Customer.City,
		o.CreatedAt, nullString(o.ProviderOrderID), nullString(o.ProviderPaymentID), o.Paid)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, it := range o.Items {
		if it.Product == nil {
			return 0, usecase.ErrMissingProductReference
		}
		if _, err := q.ExecContext(ctx, `
INSERT INTO order_items (order_id,product_id,unit_price,quantity) VALUES (?,?,?,?)
`, id, it.Product.ID, it.UnitPrice, it.Quantity); err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
	}
	return id, nil
}

const orderColumns = `id,first_name,last_name,email,phone,address,city,created_at,provider_order_id,provider_payment_id,paid`

func (r *MySQLOrderRepo) getOne(ctx context.Context, where string, arg any) (*domain.Order, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg)

	var (
		o          domain.Order
		providerID sql.NullString
		paymentID  sql.NullString
	)
	c := &o.Customer
	err := row.Scan(&o.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City,
		&o.CreatedAt, &providerID, &paymentID, &o.Paid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.ProviderOrderID = providerID.String
	o.ProviderPaymentID = paymentID.String

	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

// items loads the order lines joined to their live product; a deleted product
// leaves Product nil.
func (r *MySQLOrderRepo) items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
SELECT oi.id, oi.unit_price, oi.quantity,
       p.id, p.category_id, p.name, p.slug, p.description, p.price, p.tax_percent, p.stock, p.created_at
FROM order_items oi
LEFT JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = ?
ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var (
			it               domain.OrderItem
			pid, catID       sql.NullInt64
			name, slug, desc sql.NullString
			price, taxPct    decimal.NullDecimal
			stock            sql.NullInt64
			createdAt        sql.NullTime
		)
		if err := rows.Scan(&it.ID, &it.UnitPrice, &it.Quantity,
			&pid, &catID, &name, &slug, &desc, &price, &taxPct, &stock, &createdAt); err != nil {
			return nil, err
		}
		if pid.Valid {
			it.Product = &domain.Product{
				ID:          pid.Int64,
				CategoryID:  catID.Int64,
				Name:        name.String,
				Slug:        slug.String,
				Description: desc.String,
				Price:       price.Decimal,
				TaxPercent:  taxPct.Decimal,
				Stock:       int(stock.Int64),
				CreatedAt:   createdAt.Time,
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *MySQLOrderRepo) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Order, error) {
	return r.getOne(ctx, "provider_order_id = ?", providerOrderID)
}

func (r *MySQLOrderRepo) AttachProviderOrder(ctx context.Context, id int64, providerOrderID string) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
        UPDATE orders
        SET provider_order_id = ?
        WHERE id = ? AND paid = 0 AND provider_order_id IS NULL`,
		providerOrderID, id,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkPaidIf is the only writer of paid. rows == 0 means the order was
// already paid (or does not exist; callers look it up first).
func (r *MySQLOrderRepo) MarkPaidIf(ctx context.Context, id int64, providerPaymentID string) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
        UPDATE orders
        SET paid = 1, provider_payment_id = ?
        WHERE id = ? AND paid = 0`,
		providerPaymentID, id,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

const (
	shippingMethodsTable = "shipping_methods"
	paymentMethodsTable  = "payment_methods"
)

// MySQLAdapter reads the store-wide methods lists. Expected schema per table:
// code VARCHAR PK, title VARCHAR, cost DECIMAL(12,4), is_default BOOL,
// enabled BOOL, sort_order INT.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) ShippingMethods(ctx context.Context) ([]domain.Method, error) {
	return m.methods(ctx, shippingMethodsTable)
}

func (m *MySQLAdapter) PaymentMethods(ctx context.Context) ([]domain.Method, error) {
	return m.methods(ctx, paymentMethodsTable)
}

func (m *MySQLAdapter) methods(ctx context.Context, table string) ([]domain.Method, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT code, title, cost, is_default
		FROM `+table+`
		WHERE enabled = TRUE
		ORDER BY sort_order, code`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var methods []domain.Method
	for rows.Next() {
		var method domain.Method
		if err := rows.Scan(&method.Code, &method.Title, &method.Cost, &method.Default); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		methods = append(methods, method)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return methods, nil
}

package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func setupMethodTables(t *testing.T, db *sql.DB) {
	ctx := context.Background()
	for _, table := range []string{shippingMethodsTable, paymentMethodsTable} {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS `+table+` (
				code VARCHAR(64) PRIMARY KEY,
				title VARCHAR(255) NOT NULL DEFAULT '',
				cost DECIMAL(12,4) NOT NULL DEFAULT 0,
				is_default BOOL NOT NULL DEFAULT FALSE,
				enabled BOOL NOT NULL DEFAULT TRUE,
				sort_order INT NOT NULL DEFAULT 0
			)`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `DELETE FROM `+table+` WHERE code LIKE 'test-%'`)
		require.NoError(t, err)
	}
}

func TestShippingMethods(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	setupMethodTables(t, db)

	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		INSERT INTO shipping_methods (code, title, cost, is_default, enabled, sort_order) VALUES
		('test-flatrate', 'Flat rate', 5.00, TRUE, TRUE, 1),
		('test-express', 'Express', 15.50, FALSE, TRUE, 2),
		('test-disabled', 'Disabled', 1.00, FALSE, FALSE, 3)`)
	require.NoError(t, err)
	defer db.ExecContext(ctx, `DELETE FROM shipping_methods WHERE code LIKE 'test-%'`)

	adapter := NewMySQLAdapter(db)
	methods, err := adapter.ShippingMethods(ctx)
	require.NoError(t, err)

	byCode := make(map[string]bool)
	for _, m := range methods {
		byCode[m.Code] = m.Default
		if m.Code == "test-express" {
			assert.True(t, m.Cost.Equal(decimal.RequireFromString("15.5")))
		}
	}
	assert.Contains(t, byCode, "test-flatrate")
	assert.True(t, byCode["test-flatrate"])
	assert.Contains(t, byCode, "test-express")
	assert.NotContains(t, byCode, "test-disabled")
}

func TestPaymentMethods_Empty(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	setupMethodTables(t, db)

	adapter := NewMySQLAdapter(db)
	methods, err := adapter.PaymentMethods(context.Background())
	require.NoError(t, err)

	for _, m := range methods {
		assert.NotContains(t, m.Code, "test-")
	}
}

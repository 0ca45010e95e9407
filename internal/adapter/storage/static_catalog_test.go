package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

func TestStaticCatalog_ReturnsCopies(t *testing.T) {
	shipping := []domain.Method{{Code: "flatrate", Cost: decimal.NewFromInt(5), Default: true}}
	catalog := NewStaticCatalog(shipping, nil)

	got, err := catalog.ShippingMethods(context.Background())
	require.NoError(t, err)
	got[0].Code = "changed"

	again, err := catalog.ShippingMethods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "flatrate", again[0].Code)

	payment, err := catalog.PaymentMethods(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payment)
}

package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

func setupTestRedis(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisAdapter(client, 5), mr
}

func TestGetItems_NotFound(t *testing.T) {
	adapter, _ := setupTestRedis(t)

	items, err := adapter.GetItems(context.Background(), "current-cart")
	assert.ErrorIs(t, err, port.ErrCartNotFound)
	assert.Nil(t, items)
}

func TestSaveAndGetItems(t *testing.T) {
	adapter, mr := setupTestRedis(t)
	ctx := context.Background()

	items := []domain.CartItem{
		{
			Product: domain.Product{
				SKU:          "A",
				Name:         "Shirt",
				Price:        decimal.RequireFromString("10.50"),
				PriceInclTax: decimal.RequireFromString("12.92"),
				Tax:          decimal.RequireFromString("2.42"),
			},
			Qty: 2,
		},
	}

	require.NoError(t, adapter.SaveItems(ctx, "current-cart", items))
	assert.True(t, mr.Exists("cart:current-cart"))

	got, err := adapter.GetItems(ctx, "current-cart")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].SKU)
	assert.Equal(t, "Shirt", got[0].Name)
	assert.Equal(t, 2, got[0].Qty)
	assert.True(t, got[0].PriceInclTax.Equal(decimal.RequireFromString("12.92")))
}

func TestSaveItems_NilStoresEmptyList(t *testing.T) {
	adapter, mr := setupTestRedis(t)

	require.NoError(t, adapter.SaveItems(context.Background(), "current-cart", nil))

	stored, err := mr.Get("cart:current-cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
}

func TestGetItems_InvalidJSON(t *testing.T) {
	adapter, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:current-cart", `[{"sku":`))

	_, err := adapter.GetItems(context.Background(), "current-cart")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestGetItems_ConnectionError(t *testing.T) {
	adapter, mr := setupTestRedis(t)
	mr.Close()

	_, err := adapter.GetItems(context.Background(), "current-cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrCartNotFound)
}

func TestCheck_Statuses(t *testing.T) {
	tests := []struct {
		name  string
		stock string
		want  domain.StockStatus
	}{
		{name: "plenty", stock: "100", want: domain.StockStatusOK},
		{name: "just above volatile level", stock: "6", want: domain.StockStatusOK},
		{name: "at volatile level", stock: "5", want: domain.StockStatusVolatile},
		{name: "low", stock: "1", want: domain.StockStatusVolatile},
		{name: "empty", stock: "0", want: domain.StockStatusOutOfStock},
		{name: "oversold", stock: "-3", want: domain.StockStatusOutOfStock},
		{name: "garbage", stock: "n/a", want: domain.StockStatusVolatile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, mr := setupTestRedis(t)
			require.NoError(t, mr.Set("stock:cart:current-cart", tt.stock))

			res, err := adapter.Check(context.Background(), domain.StockRequest{CartKey: "current-cart"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestCheck_MissingCounterIsVolatile(t *testing.T) {
	adapter, _ := setupTestRedis(t)

	res, err := adapter.Check(context.Background(), domain.StockRequest{CartKey: "current-cart"})
	require.NoError(t, err)
	assert.Equal(t, domain.StockStatusVolatile, res.Status)
}

func TestCheck_PerItemKey(t *testing.T) {
	adapter, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, adapter.SetStock(ctx, domain.StockRequest{SKU: "A"}, 0))
	require.NoError(t, adapter.SetStock(ctx, domain.StockRequest{CartKey: "current-cart"}, 50))

	res, err := adapter.Check(ctx, domain.StockRequest{CartKey: "current-cart", SKU: "A"})
	require.NoError(t, err)
	assert.Equal(t, domain.StockStatusOutOfStock, res.Status)

	res, err = adapter.Check(ctx, domain.StockRequest{CartKey: "current-cart"})
	require.NoError(t, err)
	assert.Equal(t, domain.StockStatusOK, res.Status)
}

func TestStockKey_Format(t *testing.T) {
	assert.Equal(t, "stock:cart:current-cart", stockKey(domain.StockRequest{CartKey: "current-cart"}))
	assert.Equal(t, "stock:sku:A", stockKey(domain.StockRequest{CartKey: "current-cart", SKU: "A"}))
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

const (
	cartKeyPrefix        = "cart:"
	cartStockKeyPrefix   = "stock:cart:"
	itemStockKeyPrefix   = "stock:sku:"
	defaultVolatileLevel = 5
)

// classifyStockScript maps a stock counter to an availability status. A
// missing or unreadable counter is reported as volatile, a counter at or
// below the volatile level but above zero as volatile, zero or less as
// out-of-stock.
var classifyStockScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	return 'volatile'
end

current = tonumber(current)
if current == nil then
	return 'volatile'
end

if current > tonumber(ARGV[1]) then
	return 'ok'
end
if current > 0 then
	return 'volatile'
end

return 'out-of-stock'
`)

type RedisAdapter struct {
	client        *redis.Client
	volatileLevel int
}

func NewRedisAdapter(client *redis.Client, volatileLevel int) *RedisAdapter {
	if volatileLevel < 0 {
		volatileLevel = defaultVolatileLevel
	}
	return &RedisAdapter{client: client, volatileLevel: volatileLevel}
}

func (r *RedisAdapter) GetItems(ctx context.Context, key string) ([]domain.CartItem, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return items, nil
}

func (r *RedisAdapter) SaveItems(ctx context.Context, key string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, cartKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisAdapter) Check(ctx context.Context, req domain.StockRequest) (domain.StockResult, error) {
	status, err := classifyStockScript.Run(ctx, r.client, []string{stockKey(req)}, r.volatileLevel).Text()
	if err != nil {
		return domain.StockResult{}, fmt.Errorf("stock script failed: %w", err)
	}
	return domain.StockResult{Status: domain.StockStatus(status)}, nil
}

// SetStock seeds the counter the oracle reads for req.
func (r *RedisAdapter) SetStock(ctx context.Context, req domain.StockRequest, quantity int) error {
	return r.client.Set(ctx, stockKey(req), quantity, 0).Err()
}

func stockKey(req domain.StockRequest) string {
	if req.SKU != "" {
		return itemStockKeyPrefix + req.SKU
	}
	return cartStockKeyPrefix + req.CartKey
}

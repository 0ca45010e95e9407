package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/adapter/storage"
	"github.com/rl1809/storefront-cart/internal/config"
	"github.com/rl1809/storefront-cart/internal/core/cart"
	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/service"
	"github.com/rl1809/storefront-cart/internal/logger"
)

const (
	cartKey       = "stress-cart"
	initialStock  = 1000
	totalRequests = 50
	queueSize     = 100
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(logger.Options{Service: "cart-stress", Env: cfg.AppEnv, Level: "warn"})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	// Clear previous test data
	rdb.Del(ctx, "cart:"+cartKey)

	redisAdapter := storage.NewRedisAdapter(rdb, cfg.VolatileThreshold)
	if err := redisAdapter.SetStock(ctx, domain.StockRequest{CartKey: cartKey}, initialStock); err != nil {
		log.Fatal("failed to set stock", zap.Error(err))
	}

	cartService := service.NewCartService(cart.New(), service.Dependencies{
		Oracle:   redisAdapter,
		Store:    redisAdapter,
		Catalog:  storage.NewStaticCatalog(cfg.ShippingMethods, cfg.PaymentMethods),
		Notifier: discard{},
		Logger:   log,
	}, service.Config{
		CartKey:      cartKey,
		StockTimeout: cfg.StockTimeout,
		LoadTimeout:  cfg.LoadTimeout,
		QueueSize:    queueSize,
	})

	if err := cartService.Load(ctx); err != nil {
		log.Fatal("failed to load cart", zap.Error(err))
	}

	persister := service.NewPersister(redisAdapter, cartKey, cfg.PersistTimeout, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		persister.Run(cartService.GetSnapshotQueue())
	}()

	product := domain.Product{
		SKU:          "stress-sku",
		Name:         "Stress item",
		Price:        decimal.RequireFromString("9.99"),
		PriceInclTax: decimal.RequireFromString("12.29"),
		Tax:          decimal.RequireFromString("2.30"),
	}

	// Counters
	var addedCount atomic.Int32
	var rejectedCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent adds of the same SKU
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := cartService.AddItem(ctx, product)
			switch {
			case err != nil:
				failCount.Add(1)
			case result.Added:
				addedCount.Add(1)
			default:
				rejectedCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	cartService.Close()
	<-done

	added := addedCount.Load()
	totals := cartService.Totals()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Added:            %d\n", added)
	fmt.Printf("Rejected:         %d\n", rejectedCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Cart Quantity:    %d\n", totals.Quantity)
	fmt.Printf("Subtotal:         %s\n", totals.Subtotal.StringFixed(2))
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if int32(totals.Quantity) == added {
		fmt.Println("PASS: every accepted add incremented the quantity")
	} else {
		fmt.Printf("FAIL: expected quantity %d, got %d\n", added, totals.Quantity)
	}

	// Verify the persisted cart in Redis
	stored, err := redisAdapter.GetItems(ctx, cartKey)
	if err != nil {
		fmt.Printf("FAIL: could not read stored cart: %v\n", err)
		return
	}
	storedQty := 0
	for _, item := range stored {
		storedQty += item.Qty
	}
	fmt.Printf("Stored Quantity:  %d\n", storedQty)

	if storedQty == totals.Quantity {
		fmt.Println("PASS: stored cart matches in-memory cart")
	} else {
		fmt.Printf("FAIL: expected stored quantity %d, got %d\n", totals.Quantity, storedQty)
	}
}

type discard struct{}

func (discard) Notify(context.Context, domain.Notification) {}

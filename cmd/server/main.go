package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/rl1809/storefront-cart/internal/adapter/handler"
	"github.com/rl1809/storefront-cart/internal/adapter/notify"
	"github.com/rl1809/storefront-cart/internal/adapter/stock"
	"github.com/rl1809/storefront-cart/internal/adapter/storage"
	"github.com/rl1809/storefront-cart/internal/config"
	"github.com/rl1809/storefront-cart/internal/core/cart"
	"github.com/rl1809/storefront-cart/internal/core/service"
	"github.com/rl1809/storefront-cart/internal/logger"
	"github.com/rl1809/storefront-cart/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Options{Service: "storefront-cart", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	redisAdapter := storage.NewRedisAdapter(rdb, cfg.VolatileThreshold)

	// Cart store
	var store port.CartStore = redisAdapter
	if cfg.CartStore == config.StoreMongo {
		mdb, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatal("failed to connect mongodb", zap.Error(err))
		}
		defer mdb.Client().Disconnect(context.Background())

		mongoAdapter := storage.NewMongoAdapter(mdb)
		if err := mongoAdapter.CreateIndexes(ctx); err != nil {
			log.Warn("failed to create cart indexes", zap.Error(err))
		}
		store = mongoAdapter
		log.Info("connected to mongodb", zap.String("database", cfg.MongoDBName))
	}

	// Shipping and payment methods
	var catalog port.MethodCatalog = storage.NewStaticCatalog(cfg.ShippingMethods, cfg.PaymentMethods)
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal("failed to open mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping mysql", zap.Error(err))
		}
		defer db.Close()

		catalog = storage.NewMySQLAdapter(db)
		log.Info("connected to mysql")
	}

	// Notifications
	notifiers := notify.Fanout{notify.NewLogNotifier(log)}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.CartKey, cfg.KafkaTopic, log, cfg.KafkaBrokers...)
		defer kafkaNotifier.Close()
		notifiers = append(notifiers, kafkaNotifier)
		log.Info("publishing notifications to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	oracle := stock.NewBreakerOracle(redisAdapter, stock.BreakerSettings{
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, log)

	// Initialize service
	cartService := service.NewCartService(cart.New(), service.Dependencies{
		Oracle:   oracle,
		Store:    store,
		Catalog:  catalog,
		Notifier: notifiers,
		Logger:   log,
	}, service.Config{
		CartKey:           cfg.CartKey,
		StockTimeout:      cfg.StockTimeout,
		LoadTimeout:       cfg.LoadTimeout,
		QueueSize:         cfg.QueueSize,
		PerItemStockCheck: cfg.PerItemStockCheck,
		NotifyRejections:  cfg.NotifyRejections,
	})

	// Start persister
	persister := service.NewPersister(store, cfg.CartKey, cfg.PersistTimeout, log)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		persister.Run(cartService.GetSnapshotQueue())
	}()

	if err := cartService.Load(ctx); err != nil {
		log.Error("initial cart load failed", zap.Error(err))
	}

	// Initialize gRPC server; the handler reports SERVING once the load above succeeded.
	grpcServer := grpc.NewServer()
	grpcHandler := handler.NewGRPCHandler(cartService)
	grpcHandler.Register(grpcServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(cartService, log)
	httpHandler.OnLoad(grpcHandler.Refresh)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      http.TimeoutHandler(httpHandler.Routes(), cfg.RequestTimeout, "request timed out"),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcHandler.Shutdown()
	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	// Close snapshot queue and wait for the persister to drain it
	cartService.Close()
	wg.Wait()
	log.Info("persister stopped", zap.Uint64("last_revision", persister.LastRevision()))
}

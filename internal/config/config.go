package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

const (
	StoreRedis = "redis"
	StoreMongo = "mongo"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPAddr        string
	GRPCAddr        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	RedisAddr     string
	RedisPassword string

	CartStore   string
	MongoURI    string
	MongoDBName string

	// MySQLDSN is optional; without it the methods lists below are served.
	MySQLDSN        string
	ShippingMethods []domain.Method
	PaymentMethods  []domain.Method

	KafkaBrokers []string
	KafkaTopic   string

	CartKey           string
	StockTimeout      time.Duration
	LoadTimeout       time.Duration
	PersistTimeout    time.Duration
	QueueSize         int
	VolatileThreshold int
	NotifyRejections  bool
	PerItemStockCheck bool

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

var (
	defaultShippingMethods = []domain.Method{
		{Code: "flatrate", Title: "Flat rate", Cost: decimal.NewFromInt(5), Default: true},
		{Code: "express", Title: "Express", Cost: decimal.NewFromInt(15)},
	}
	defaultPaymentMethods = []domain.Method{
		{Code: "cashondelivery", Title: "Cash on delivery", Cost: decimal.Zero, Default: true},
		{Code: "checkmo", Title: "Check / Money order", Cost: decimal.Zero},
	}
)

func Load() (Config, error) {
	p := &parser{}

	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:        getEnv("GRPC_ADDR", ":50051"),
		RequestTimeout:  p.duration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 5*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		CartStore:   strings.ToLower(getEnv("CART_STORE", StoreRedis)),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "cartdb"),

		MySQLDSN:        getEnv("MYSQL_DSN", ""),
		ShippingMethods: p.methods("SHIPPING_METHODS", defaultShippingMethods),
		PaymentMethods:  p.methods("PAYMENT_METHODS", defaultPaymentMethods),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "cart-notifications"),

		CartKey:           getEnv("CART_KEY", "current-cart"),
		StockTimeout:      p.duration("STOCK_TIMEOUT", 2*time.Second),
		LoadTimeout:       p.duration("LOAD_TIMEOUT", 5*time.Second),
		PersistTimeout:    p.duration("PERSIST_TIMEOUT", 5*time.Second),
		QueueSize:         p.integer("QUEUE_SIZE", 64),
		VolatileThreshold: p.integer("VOLATILE_THRESHOLD", 5),
		NotifyRejections:  p.boolean("NOTIFY_REJECTIONS", false),
		PerItemStockCheck: p.boolean("PER_ITEM_STOCK_CHECK", false),

		BreakerMaxFailures: uint32(p.integer("BREAKER_MAX_FAILURES", 5)),
		BreakerOpenTimeout: p.duration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
	}

	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.CartStore != StoreRedis && c.CartStore != StoreMongo {
		return fmt.Errorf("CART_STORE: unknown store %q", c.CartStore)
	}
	if c.CartKey == "" {
		return fmt.Errorf("CART_KEY: must not be empty")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("QUEUE_SIZE: must be positive, got %d", c.QueueSize)
	}
	if c.VolatileThreshold < 0 {
		return fmt.Errorf("VOLATILE_THRESHOLD: must not be negative, got %d", c.VolatileThreshold)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT: must be positive, got %s", c.RequestTimeout)
	}
	if c.BreakerMaxFailures == 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES: must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser keeps the first error so Load can report it after reading every key.
type parser struct {
	err error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return b
}

func (p *parser) methods(key string, def []domain.Method) []domain.Method {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var methods []domain.Method
	if err := json.Unmarshal([]byte(v), &methods); err != nil {
		p.fail(key, err)
		return def
	}
	return methods
}

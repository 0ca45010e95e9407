package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

type cartDocument struct {
	Key       string         `bson:"_id"`
	Items     []itemDocument `bson:"items"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// Money is kept as decimal strings so no precision is lost in BSON doubles.
type itemDocument struct {
	SKU          string `bson:"sku"`
	Name         string `bson:"name,omitempty"`
	Price        string `bson:"price"`
	PriceInclTax string `bson:"price_incl_tax"`
	Tax          string `bson:"tax"`
	Qty          int    `bson:"qty"`
}

type MongoAdapter struct {
	collection *mongo.Collection
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func NewMongoAdapter(db *mongo.Database) *MongoAdapter {
	return &MongoAdapter{collection: db.Collection("carts")}
}

func (m *MongoAdapter) GetItems(ctx context.Context, key string) ([]domain.CartItem, error) {
	var doc cartDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, port.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	items := make([]domain.CartItem, 0, len(doc.Items))
	for _, d := range doc.Items {
		item, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode item %s: %w", d.SKU, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *MongoAdapter) SaveItems(ctx context.Context, key string, items []domain.CartItem) error {
	doc := cartDocument{
		Key:       key,
		Items:     make([]itemDocument, 0, len(items)),
		UpdatedAt: time.Now(),
	}
	for _, item := range items {
		doc.Items = append(doc.Items, itemDocument{
			SKU:          item.SKU,
			Name:         item.Name,
			Price:        item.Price.String(),
			PriceInclTax: item.PriceInclTax.String(),
			Tax:          item.Tax.String(),
			Qty:          item.Qty,
		})
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (m *MongoAdapter) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days
	}
	if _, err := m.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (d itemDocument) toDomain() (domain.CartItem, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("price: %w", err)
	}
	inclTax, err := decimal.NewFromString(d.PriceInclTax)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("price_incl_tax: %w", err)
	}
	tax, err := decimal.NewFromString(d.Tax)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("tax: %w", err)
	}

	return domain.CartItem{
		Product: domain.Product{
			SKU:          d.SKU,
			Name:         d.Name,
			Price:        price,
			PriceInclTax: inclTax,
			Tax:          tax,
		},
		Qty: d.Qty,
	}, nil
}

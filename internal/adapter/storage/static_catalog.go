package storage

import (
	"context"
	"slices"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

// StaticCatalog serves methods lists fixed at startup, used when no MySQL
// catalog is configured.
type StaticCatalog struct {
	shipping []domain.Method
	payment  []domain.Method
}

func NewStaticCatalog(shipping, payment []domain.Method) *StaticCatalog {
	return &StaticCatalog{
		shipping: slices.Clone(shipping),
		payment:  slices.Clone(payment),
	}
}

func (c *StaticCatalog) ShippingMethods(context.Context) ([]domain.Method, error) {
	return slices.Clone(c.shipping), nil
}

func (c *StaticCatalog) PaymentMethods(context.Context) ([]domain.Method, error) {
	return slices.Clone(c.payment), nil
}

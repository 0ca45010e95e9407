package domain

import "github.com/shopspring/decimal"

// Product is the catalog view of something that can be put in the cart.
type Product struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	PriceInclTax decimal.Decimal `json:"priceInclTax"`
	Tax          decimal.Decimal `json:"tax"`
}

type CartItem struct {
	Product
	Qty int `json:"qty"`
}

type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalInclTax decimal.Decimal `json:"subtotalInclTax"`
	SubtotalTax     decimal.Decimal `json:"subtotalTax"`
	Quantity        int             `json:"quantity"`
}

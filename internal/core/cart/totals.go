package cart

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

// CalculateTotals sums line values over items. An empty collection yields zero totals.
func CalculateTotals(items []domain.CartItem) domain.Totals {
	totals := domain.Totals{
		Subtotal:        decimal.Zero,
		SubtotalInclTax: decimal.Zero,
		SubtotalTax:     decimal.Zero,
	}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Qty))
		totals.Subtotal = totals.Subtotal.Add(item.Price.Mul(qty))
		totals.SubtotalInclTax = totals.SubtotalInclTax.Add(item.PriceInclTax.Mul(qty))
		totals.SubtotalTax = totals.SubtotalTax.Add(item.Tax.Mul(qty))
		totals.Quantity += item.Qty
	}

	return totals
}

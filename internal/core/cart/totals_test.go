package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

func item(sku string, price, inclTax, tax string, qty int) domain.CartItem {
	return domain.CartItem{
		Product: domain.Product{
			SKU:          sku,
			Price:        decimal.RequireFromString(price),
			PriceInclTax: decimal.RequireFromString(inclTax),
			Tax:          decimal.RequireFromString(tax),
		},
		Qty: qty,
	}
}

func TestCalculateTotals_Empty(t *testing.T) {
	totals := CalculateTotals(nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.SubtotalInclTax.IsZero())
	assert.True(t, totals.SubtotalTax.IsZero())
	assert.Equal(t, 0, totals.Quantity)
}

func TestCalculateTotals_TwoLines(t *testing.T) {
	items := []domain.CartItem{
		item("A", "10", "12", "2", 2),
		item("B", "5", "5.5", "0.5", 3),
	}

	totals := CalculateTotals(items)

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(35)), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.SubtotalInclTax.Equal(decimal.NewFromInt(39)), "subtotalInclTax = %s", totals.SubtotalInclTax)
	assert.True(t, totals.SubtotalTax.Equal(decimal.RequireFromString("5.5")), "subtotalTax = %s", totals.SubtotalTax)
	assert.Equal(t, 5, totals.Quantity)
}

func TestCalculateTotals_MatchesPerItemSums(t *testing.T) {
	items := []domain.CartItem{
		item("A", "0.10", "0.12", "0.02", 7),
		item("B", "19.99", "24.59", "4.60", 1),
		item("C", "3", "3", "0", 4),
	}

	totals := CalculateTotals(items)

	sub, incl, tax := decimal.Zero, decimal.Zero, decimal.Zero
	qty := 0
	for _, it := range items {
		q := decimal.NewFromInt(int64(it.Qty))
		sub = sub.Add(it.Price.Mul(q))
		incl = incl.Add(it.PriceInclTax.Mul(q))
		tax = tax.Add(it.Tax.Mul(q))
		qty += it.Qty
	}

	assert.True(t, sub.Equal(totals.Subtotal))
	assert.True(t, incl.Equal(totals.SubtotalInclTax))
	assert.True(t, tax.Equal(totals.SubtotalTax))
	assert.Equal(t, qty, totals.Quantity)
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("32.69")))
}

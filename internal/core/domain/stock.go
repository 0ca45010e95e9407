package domain

type StockStatus string

const (
	StockStatusOK         StockStatus = "ok"
	StockStatusVolatile   StockStatus = "volatile"
	StockStatusOutOfStock StockStatus = "out-of-stock"
)

// Accepted reports whether an add may be committed for this status.
func (s StockStatus) Accepted() bool {
	return s == StockStatusOK || s == StockStatusVolatile
}

// StockRequest is cart-scoped: SKU is only filled when per-item checks are enabled.
type StockRequest struct {
	CartKey string
	SKU     string
}

type StockResult struct {
	Status StockStatus
}

package domain

import "github.com/shopspring/decimal"

// Selection is the shipping or payment method currently chosen for the cart.
// An empty Code means nothing has been chosen yet.
type Selection struct {
	Code string          `json:"code"`
	Cost decimal.Decimal `json:"cost"`
}

func (s Selection) IsSet() bool {
	return s.Code != ""
}

// Method is an entry of the store-wide shipping or payment methods list.
type Method struct {
	Code    string          `json:"code"`
	Title   string          `json:"title,omitempty"`
	Cost    decimal.Decimal `json:"cost"`
	Default bool            `json:"default"`
}

func (m Method) Selection() Selection {
	return Selection{Code: m.Code, Cost: m.Cost}
}

// DefaultMethod returns the first method flagged as default.
func DefaultMethod(methods []Method) (Method, bool) {
	for _, m := range methods {
		if m.Default {
			return m, true
		}
	}
	return Method{}, false
}

package domain

import (
	"github.com/shopspring/decimal"
)

// Ticker is a snapshot of the top of book for one symbol.
type Ticker struct {
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	LastPrice decimal.Decimal
	BidSize   decimal.Decimal
	AskSize   decimal.Decimal
}

// Mid returns the bid/ask midpoint.
func (t Ticker) Mid() decimal.Decimal {
	return t.Bid.Add(t.Ask).Div(decimal.NewFromInt(2))
}

// Contains reports whether price sits strictly inside the spread.
func (t Ticker) Contains(price decimal.Decimal) bool {
	return price.GreaterThan(t.Bid) && price.LessThan(t.Ask)
}

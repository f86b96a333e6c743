package domain

import (
	"github.com/shopspring/decimal"
)

// Side of a quote leg or resting order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// SideFilter restricts ladder generation to one side of the book.
type SideFilter string

const (
	FilterNone     SideFilter = ""
	FilterBuyOnly  SideFilter = "buy"
	FilterSellOnly SideFilter = "sell"
)

// Venue order_status values are free-form text such as
// "EXECUTED @ 0.1015(100.0)" or "PARTIALLY FILLED @ 0.1015(50.0)",
// so matching is substring-based.
const (
	StatusExecuted        = "EXECUTED"
	StatusPartiallyFilled = "PARTIALLY FILLED"
	StatusCanceled        = "CANCELED"
)

// QuoteLeg is a single rung of a generated ladder, consumed only until
// it is submitted to the venue.
type QuoteLeg struct {
	Side   Side
	Amount decimal.Decimal
	Price  decimal.Decimal
}

// DistancePct returns the leg's signed distance from center in percent.
func (l QuoteLeg) DistancePct(center decimal.Decimal) decimal.Decimal {
	if center.IsZero() {
		return decimal.Zero
	}
	return l.Price.Sub(center).Div(center).Mul(decimal.NewFromInt(100))
}

// TrackedOrder is an order the bot believes is still resting on the book.
// Owned exclusively by the ledger; callers access it through ledger
// operations only.
type TrackedOrder struct {
	Identity OrderIdentity
	Side     Side
	Amount   decimal.Decimal
	Price    decimal.Decimal
}

// OpenOrder is one row of the venue's reported open-order list.
type OpenOrder struct {
	ID             int64
	Symbol         string
	Amount         decimal.Decimal
	Price          decimal.Decimal
	Type           string
	CreatedAtMilli int64
}

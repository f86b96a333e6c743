package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderIdentity is a tagged union over the two ways an order is tracked:
// a numeric venue-assigned id, or a locally synthesized placeholder key
// used when the submission response exposes no usable id. Placeholder
// identities carry no venue-cancel capability.
//
// The zero value is comparable and usable as a map key.
type OrderIdentity struct {
	venueID int64
	key     string
}

// ConfirmedID wraps a venue-assigned numeric order id.
func ConfirmedID(id int64) OrderIdentity {
	return OrderIdentity{venueID: id}
}

// PlaceholderID derives a deterministic local identity from the order's
// side, price and amount, for orders whose submission response could not
// be resolved to a real id.
func PlaceholderID(side Side, price, amount decimal.Decimal) OrderIdentity {
	return OrderIdentity{
		key: fmt.Sprintf("%s_%s_%s", side, price.StringFixed(6), amount.Abs().String()),
	}
}

// Confirmed reports whether the identity is a real venue id, eligible
// for venue cancel calls.
func (id OrderIdentity) Confirmed() bool {
	return id.key == ""
}

// VenueID returns the numeric venue id. Only meaningful when Confirmed.
func (id OrderIdentity) VenueID() int64 {
	return id.venueID
}

func (id OrderIdentity) String() string {
	if id.Confirmed() {
		return fmt.Sprintf("%d", id.venueID)
	}
	return id.key
}

package domain

import "github.com/shopspring/decimal"

// Direction indicates which side of a band a price escaped through.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Band is the price range covered by the resting ladder, from the
// lowest to the highest tracked order.
type Band struct {
	Lower decimal.Decimal
	Upper decimal.Decimal
}

// BandFromOrders derives the band from a set of tracked orders. The
// second return is false when there are no orders to span.
func BandFromOrders(orders []TrackedOrder) (Band, bool) {
	if len(orders) == 0 {
		return Band{}, false
	}
	band := Band{Lower: orders[0].Price, Upper: orders[0].Price}
	for _, o := range orders[1:] {
		if o.Price.LessThan(band.Lower) {
			band.Lower = o.Price
		}
		if o.Price.GreaterThan(band.Upper) {
			band.Upper = o.Price
		}
	}
	return band, true
}

// Breach reports whether price has escaped the band and through which
// side. Prices on the boundary are still inside.
func (b Band) Breach(price decimal.Decimal) (Direction, bool) {
	switch {
	case price.GreaterThan(b.Upper):
		return DirectionUp, true
	case price.LessThan(b.Lower):
		return DirectionDown, true
	default:
		return "", false
	}
}

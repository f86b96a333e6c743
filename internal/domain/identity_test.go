package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderIdentity(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		id := ConfirmedID(123456)

		if !id.Confirmed() {
			t.Error("Expected identity to be confirmed")
		}
		if id.VenueID() != 123456 {
			t.Errorf("VenueID = %d, want 123456", id.VenueID())
		}
		if id.String() != "123456" {
			t.Errorf("String = %q, want %q", id.String(), "123456")
		}
	})

	t.Run("placeholder", func(t *testing.T) {
		price := decimal.RequireFromString("0.1015")
		amount := decimal.RequireFromString("100")
		id := PlaceholderID(SideBuy, price, amount)

		if id.Confirmed() {
			t.Error("Expected placeholder to not be confirmed")
		}
		if id.String() != "buy_0.101500_100" {
			t.Errorf("String = %q, want %q", id.String(), "buy_0.101500_100")
		}
	})

	t.Run("placeholder is deterministic", func(t *testing.T) {
		price := decimal.RequireFromString("1.5")
		amount := decimal.RequireFromString("-2")

		a := PlaceholderID(SideSell, price, amount)
		b := PlaceholderID(SideSell, price, amount.Abs())
		if a != b {
			t.Errorf("Expected identical placeholder keys, got %q and %q", a, b)
		}
	})

	t.Run("usable as map key", func(t *testing.T) {
		m := map[OrderIdentity]string{
			ConfirmedID(1): "confirmed",
			PlaceholderID(SideBuy, decimal.New(1, 0), decimal.New(1, 0)): "placeholder",
		}
		if m[ConfirmedID(1)] != "confirmed" {
			t.Error("Confirmed identity did not round-trip as map key")
		}
		if m[PlaceholderID(SideBuy, decimal.New(1, 0), decimal.New(1, 0))] != "placeholder" {
			t.Error("Placeholder identity did not round-trip as map key")
		}
	})
}

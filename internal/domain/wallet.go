package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned when a debit or reservation exceeds
// the available balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet tracks one currency's balance. Reserved funds back open orders
// and stay part of the total until released or debited.
type Wallet struct {
	Currency string
	Amount   decimal.Decimal
	Reserved decimal.Decimal
}

// Available returns the spendable balance (total minus reserved).
func (w *Wallet) Available() decimal.Decimal {
	return w.Amount.Sub(w.Reserved)
}

// Credit adds funds.
func (w *Wallet) Credit(amount decimal.Decimal) {
	w.Amount = w.Amount.Add(amount)
}

// Debit removes funds from the available balance.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if amount.GreaterThan(w.Available()) {
		return fmt.Errorf("%w: %s needs %s, available %s",
			ErrInsufficientFunds, w.Currency, amount, w.Available())
	}
	w.Amount = w.Amount.Sub(amount)
	return nil
}

// Reserve locks funds for an open order.
func (w *Wallet) Reserve(amount decimal.Decimal) error {
	if amount.GreaterThan(w.Available()) {
		return fmt.Errorf("%w: %s needs %s, available %s",
			ErrInsufficientFunds, w.Currency, amount, w.Available())
	}
	w.Reserved = w.Reserved.Add(amount)
	return nil
}

// Release unlocks reserved funds. Releasing more than is reserved
// clamps to zero.
func (w *Wallet) Release(amount decimal.Decimal) {
	w.Reserved = w.Reserved.Sub(amount)
	if w.Reserved.IsNegative() {
		w.Reserved = decimal.Zero
	}
}

// Spend consumes previously reserved funds, as when an order fills.
func (w *Wallet) Spend(amount decimal.Decimal) {
	w.Release(amount)
	w.Amount = w.Amount.Sub(amount)
}

// WalletBook manages per-currency wallets.
type WalletBook struct {
	wallets map[string]*Wallet
}

// NewWalletBook creates an empty wallet book.
func NewWalletBook() *WalletBook {
	return &WalletBook{wallets: make(map[string]*Wallet)}
}

// Get returns the wallet for a currency, creating it if absent.
func (wb *WalletBook) Get(currency string) *Wallet {
	w, ok := wb.wallets[currency]
	if !ok {
		w = &Wallet{Currency: currency}
		wb.wallets[currency] = w
	}
	return w
}

// Snapshot returns a copy of all wallets.
func (wb *WalletBook) Snapshot() map[string]Wallet {
	result := make(map[string]Wallet, len(wb.wallets))
	for k, v := range wb.wallets {
		result[k] = *v
	}
	return result
}

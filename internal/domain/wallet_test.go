package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestWalletReserveAndSpend(t *testing.T) {
	w := &Wallet{Currency: "USD"}
	w.Credit(decimal.NewFromInt(100))

	if err := w.Reserve(decimal.NewFromInt(60)); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if !w.Available().Equal(decimal.NewFromInt(40)) {
		t.Errorf("Available = %s, want 40", w.Available())
	}

	// Reserved funds are not spendable twice.
	if err := w.Reserve(decimal.NewFromInt(50)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Over-reserve error = %v, want ErrInsufficientFunds", err)
	}

	w.Spend(decimal.NewFromInt(60))
	if !w.Amount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Amount after spend = %s, want 40", w.Amount)
	}
	if !w.Reserved.IsZero() {
		t.Errorf("Reserved after spend = %s, want 0", w.Reserved)
	}
}

func TestWalletDebit(t *testing.T) {
	w := &Wallet{Currency: "PNK"}
	w.Credit(decimal.NewFromInt(10))

	if err := w.Debit(decimal.NewFromInt(15)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Overdraft error = %v, want ErrInsufficientFunds", err)
	}
	if err := w.Debit(decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if !w.Amount.IsZero() {
		t.Errorf("Amount = %s, want 0", w.Amount)
	}
}

func TestWalletReleaseClampsToZero(t *testing.T) {
	w := &Wallet{Currency: "USD"}
	w.Credit(decimal.NewFromInt(10))
	w.Reserve(decimal.NewFromInt(5))

	w.Release(decimal.NewFromInt(8))
	if !w.Reserved.IsZero() {
		t.Errorf("Reserved = %s, want 0", w.Reserved)
	}
}

func TestWalletBookGetCreates(t *testing.T) {
	wb := NewWalletBook()
	wb.Get("USD").Credit(decimal.NewFromInt(50))

	snap := wb.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot has %d wallets, want 1", len(snap))
	}
	if !snap["USD"].Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("USD amount = %s, want 50", snap["USD"].Amount)
	}
}

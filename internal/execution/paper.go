// Package execution provides a simulated venue for dry runs. Orders
// rest in memory, balances are enforced through a wallet book, and
// fills are injected by the caller.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"maker_go/internal/domain"

	"github.com/shopspring/decimal"
)

// PaperVenue implements domain.Venue without touching a real exchange.
type PaperVenue struct {
	mu      sync.Mutex
	nextID  int64
	orders  map[int64]domain.OpenOrder
	ticker  domain.Ticker
	wallets *domain.WalletBook
	funded  bool
}

// NewPaperVenue creates a simulated venue quoting the given ticker.
func NewPaperVenue(ticker domain.Ticker) *PaperVenue {
	return &PaperVenue{
		nextID:  1,
		orders:  make(map[int64]domain.OpenOrder),
		ticker:  ticker,
		wallets: domain.NewWalletBook(),
	}
}

// Deposit credits funds and turns on balance enforcement.
func (p *PaperVenue) Deposit(currency string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wallets.Get(currency).Credit(amount)
	p.funded = true
}

// SetTicker moves the simulated market.
func (p *PaperVenue) SetTicker(ticker domain.Ticker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticker = ticker
}

// SubmitOrder rests a limit order. Post-only orders that would cross
// the simulated book are rejected the way the live venue rejects them.
func (p *PaperVenue) SubmitOrder(_ context.Context, symbol string, side domain.Side, amount, price decimal.Decimal, postOnly bool) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if postOnly {
		if side == domain.SideBuy && price.GreaterThanOrEqual(p.ticker.Ask) {
			return nil, domain.ErrWouldMatch
		}
		if side == domain.SideSell && price.LessThanOrEqual(p.ticker.Bid) {
			return nil, domain.ErrWouldMatch
		}
	}

	if p.funded {
		currency, cost := orderCost(symbol, side, amount, price)
		if err := p.wallets.Get(currency).Reserve(cost); err != nil {
			return nil, err
		}
	}

	p.nextID++
	id := p.nextID
	signed := amount.Abs()
	if side == domain.SideSell {
		signed = signed.Neg()
	}
	p.orders[id] = domain.OpenOrder{
		ID:     id,
		Symbol: symbol,
		Amount: signed,
		Price:  price,
		Type:   "EXCHANGE LIMIT",
	}
	return json.RawMessage(fmt.Sprintf(`{"id":%d}`, id)), nil
}

// CancelOrder removes one resting order.
func (p *PaperVenue) CancelOrder(_ context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelLocked(id)
}

// CancelOrderMulti removes a batch of resting orders. Unknown ids are
// ignored, matching the live venue's tolerance.
func (p *PaperVenue) CancelOrderMulti(_ context.Context, ids []int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		p.cancelLocked(id)
	}
	return nil
}

func (p *PaperVenue) cancelLocked(id int64) error {
	order, ok := p.orders[id]
	if !ok {
		return nil
	}
	delete(p.orders, id)
	if p.funded {
		currency, cost := orderCost(order.Symbol, orderSide(order), order.Amount.Abs(), order.Price)
		p.wallets.Get(currency).Release(cost)
	}
	return nil
}

// GetOpenOrders returns all resting orders.
func (p *PaperVenue) GetOpenOrders(_ context.Context, symbol string) ([]domain.OpenOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]domain.OpenOrder, 0, len(p.orders))
	for _, o := range p.orders {
		if o.Symbol == symbol {
			result = append(result, o)
		}
	}
	return result, nil
}

// GetTicker returns the simulated market.
func (p *PaperVenue) GetTicker(_ context.Context, _ string) (domain.Ticker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticker, nil
}

// Fill simulates a full execution of a resting order: the reserved
// funds are spent and the opposite currency is credited.
func (p *PaperVenue) Fill(id int64) (domain.OpenOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[id]
	if !ok {
		return domain.OpenOrder{}, fmt.Errorf("no resting order with id %d", id)
	}
	delete(p.orders, id)

	if p.funded {
		side := orderSide(order)
		base, quote := splitSymbol(order.Symbol)
		notional := order.Amount.Abs().Mul(order.Price)
		if side == domain.SideBuy {
			p.wallets.Get(quote).Spend(notional)
			p.wallets.Get(base).Credit(order.Amount.Abs())
		} else {
			p.wallets.Get(base).Spend(order.Amount.Abs())
			p.wallets.Get(quote).Credit(notional)
		}
	}
	return order, nil
}

// Wallets returns a copy of all simulated balances.
func (p *PaperVenue) Wallets() map[string]domain.Wallet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallets.Snapshot()
}

func orderSide(o domain.OpenOrder) domain.Side {
	if o.Amount.IsNegative() {
		return domain.SideSell
	}
	return domain.SideBuy
}

// orderCost returns the currency an order consumes and how much of it:
// buys lock the quote notional, sells lock the base amount.
func orderCost(symbol string, side domain.Side, amount, price decimal.Decimal) (string, decimal.Decimal) {
	base, quote := splitSymbol(symbol)
	if side == domain.SideBuy {
		return quote, amount.Abs().Mul(price)
	}
	return base, amount.Abs()
}

// splitSymbol breaks a venue pair like tPNKUSD into base and quote.
// Longer pairs use a colon separator (tBTC:USDT).
func splitSymbol(symbol string) (string, string) {
	s := strings.TrimPrefix(symbol, "t")
	if base, quote, found := strings.Cut(s, ":"); found {
		return base, quote
	}
	if len(s) > 3 {
		return s[:len(s)-3], s[len(s)-3:]
	}
	return s, ""
}

package domain

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Venue is the capability surface the engine needs from an exchange
// gateway. SubmitOrder returns the raw response body because the venue's
// submission response shape is not stable; identity resolution is the
// caller's concern.
type Venue interface {
	SubmitOrder(ctx context.Context, symbol string, side Side, amount, price decimal.Decimal, postOnly bool) (json.RawMessage, error)
	CancelOrder(ctx context.Context, id int64) error
	CancelOrderMulti(ctx context.Context, ids []int64) error
	GetOpenOrders(ctx context.Context, symbol string) ([]OpenOrder, error)
	GetTicker(ctx context.Context, symbol string) (Ticker, error)
}

// StreamWorker defines the interface for venue WebSocket connectors
type StreamWorker interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}

// Journal records order activity for post-session inspection.
type Journal interface {
	Record(entry *JournalEntry) error
}

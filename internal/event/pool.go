package event

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Order updates are the only high-frequency event the stream produces,
// so they are pooled to reduce GC pressure on the inbox path.
//
// Usage:
//
//	ev := AcquireOrderUpdateEvent()
//	ev.OrderID = 123
//	// ... send through inbox, consumer processes it ...
//	ReleaseOrderUpdateEvent(ev)  // Return to pool after processing
var orderUpdatePool = sync.Pool{
	New: func() interface{} {
		return &OrderUpdateEvent{}
	},
}

// AcquireOrderUpdateEvent gets an OrderUpdateEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireOrderUpdateEvent() *OrderUpdateEvent {
	return orderUpdatePool.Get().(*OrderUpdateEvent)
}

// ReleaseOrderUpdateEvent returns an OrderUpdateEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseOrderUpdateEvent(ev *OrderUpdateEvent) {
	if ev == nil {
		return
	}
	ev.OrderID = 0
	ev.Status = ""
	ev.Amount = decimal.Decimal{}
	ev.Price = decimal.Decimal{}

	orderUpdatePool.Put(ev)
}

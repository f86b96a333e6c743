package event

import (
	"maker_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Event is anything the controller's inbox can carry. The engine runs a
// single consumer goroutine, so handlers never race each other.
type Event interface {
	GetType() string
}

// OrderUpdateEvent is a venue order_update frame: status text plus the
// remaining (signed) amount and the order's price.
type OrderUpdateEvent struct {
	OrderID int64
	Status  string
	Amount  decimal.Decimal // remaining amount, negative for sells
	Price   decimal.Decimal
}

func (e *OrderUpdateEvent) GetType() string { return "order_update" }

// Identity returns the confirmed identity carried by the update.
func (e *OrderUpdateEvent) Identity() domain.OrderIdentity {
	return domain.ConfirmedID(e.OrderID)
}

// OrderNewEvent is emitted when the venue confirms a new resting order.
type OrderNewEvent struct {
	OrderID int64
}

func (e *OrderNewEvent) GetType() string { return "order_new" }

// AuthenticatedEvent is emitted once the event stream is authenticated.
type AuthenticatedEvent struct{}

func (e *AuthenticatedEvent) GetType() string { return "authenticated" }

// NotificationEvent carries venue on-req notifications, including order
// submission errors.
type NotificationEvent struct {
	Status string
	Text   string
}

func (e *NotificationEvent) GetType() string { return "notification" }

// SweepTickEvent asks the controller to run one replenishment pass.
type SweepTickEvent struct{}

func (e *SweepTickEvent) GetType() string { return "sweep_tick" }

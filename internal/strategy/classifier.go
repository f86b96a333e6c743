package strategy

import (
	"strings"

	"maker_go/internal/domain"
	"maker_go/internal/event"

	"github.com/shopspring/decimal"
)

// DecisionType defines what the controller should do with an order update
type DecisionType int

const (
	DecisionNone DecisionType = iota
	DecisionRemove
	DecisionRecenter
	DecisionRemoveAndRecenter
)

// String returns the string representation of DecisionType
func (d DecisionType) String() string {
	switch d {
	case DecisionNone:
		return "NONE"
	case DecisionRemove:
		return "REMOVE"
	case DecisionRecenter:
		return "RECENTER"
	case DecisionRemoveAndRecenter:
		return "REMOVE_AND_RECENTER"
	default:
		return "UNKNOWN"
	}
}

// Decision is the classifier's verdict on one order update. The
// controller applies the ledger mutation and drives the recenter; the
// classifier itself only reads.
type Decision struct {
	Type          DecisionType
	Identity      domain.OrderIdentity
	RecenterPrice decimal.Decimal
}

// OrderBook is the read-only ledger view the classifier needs.
type OrderBook interface {
	Lookup(identity domain.OrderIdentity) (domain.TrackedOrder, bool)
}

var half = decimal.RequireFromString("0.5")

// Classify interprets a venue order update against the tracked book.
//
// Fully executed orders are removed and trigger a recenter at the fill
// price. A partial fill of at least half the original amount triggers a
// recenter without removing the entry; the recenter's cancel-all sweeps
// it up with the rest of the ladder. Cancellations are removed quietly.
// Updates for unknown identities or other statuses are not ours to act on.
func Classify(ev *event.OrderUpdateEvent, book OrderBook) Decision {
	identity := ev.Identity()

	tracked, ok := book.Lookup(identity)
	if !ok {
		return Decision{Type: DecisionNone}
	}

	switch {
	case strings.Contains(ev.Status, domain.StatusExecuted):
		return Decision{
			Type:          DecisionRemoveAndRecenter,
			Identity:      identity,
			RecenterPrice: ev.Price,
		}

	case strings.Contains(ev.Status, domain.StatusPartiallyFilled):
		remaining := ev.Amount.Abs()
		filled := tracked.Amount.Sub(remaining)
		if filled.GreaterThanOrEqual(tracked.Amount.Mul(half)) {
			return Decision{
				Type:          DecisionRecenter,
				Identity:      identity,
				RecenterPrice: ev.Price,
			}
		}
		return Decision{Type: DecisionNone}

	case strings.Contains(ev.Status, domain.StatusCanceled):
		return Decision{
			Type:     DecisionRemove,
			Identity: identity,
		}
	}

	return Decision{Type: DecisionNone}
}

// Package ledger tracks the orders the bot believes are resting on the
// book. The ledger is confined to the controller goroutine; external
// reads go through Snapshot.
package ledger

import (
	"sort"

	"maker_go/internal/domain"
)

// Ledger maps order identities to tracked orders. An entry means "this
// order should be resting"; absence means the order is not our concern.
type Ledger struct {
	orders map[domain.OrderIdentity]domain.TrackedOrder
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		orders: make(map[domain.OrderIdentity]domain.TrackedOrder),
	}
}

// Insert adds a tracked order. Identities must be unique.
func (l *Ledger) Insert(order domain.TrackedOrder) error {
	if _, exists := l.orders[order.Identity]; exists {
		return domain.ErrDuplicateIdentity
	}
	l.orders[order.Identity] = order
	return nil
}

// Remove deletes the entry for identity and reports whether it existed.
func (l *Ledger) Remove(identity domain.OrderIdentity) (domain.TrackedOrder, bool) {
	order, ok := l.orders[identity]
	if ok {
		delete(l.orders, identity)
	}
	return order, ok
}

// Lookup returns the tracked order for identity without removing it.
func (l *Ledger) Lookup(identity domain.OrderIdentity) (domain.TrackedOrder, bool) {
	order, ok := l.orders[identity]
	return order, ok
}

// Len returns the number of tracked orders.
func (l *Ledger) Len() int {
	return len(l.orders)
}

// Snapshot returns a copy of all tracked orders, sorted by price for
// consistent ordering.
func (l *Ledger) Snapshot() []domain.TrackedOrder {
	result := make([]domain.TrackedOrder, 0, len(l.orders))
	for _, order := range l.orders {
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Price.LessThan(result[j].Price)
	})
	return result
}

// ConfirmedIDs returns the venue ids of all confirmed entries. Only
// these are eligible for venue cancel calls.
func (l *Ledger) ConfirmedIDs() []int64 {
	ids := make([]int64, 0, len(l.orders))
	for identity := range l.orders {
		if identity.Confirmed() {
			ids = append(ids, identity.VenueID())
		}
	}
	return ids
}

// ResolveMissing returns the tracked orders absent from the venue's open
// set. Placeholder identities have no venue-side presence, so they
// always count as missing.
func (l *Ledger) ResolveMissing(openIDs map[int64]bool) []domain.TrackedOrder {
	var missing []domain.TrackedOrder
	for identity, order := range l.orders {
		if identity.Confirmed() && openIDs[identity.VenueID()] {
			continue
		}
		missing = append(missing, order)
	}
	sort.Slice(missing, func(i, j int) bool {
		return missing[i].Price.LessThan(missing[j].Price)
	})
	return missing
}

// ClearAll removes every entry unconditionally. Used when a recenter's
// cancel-all supersedes the whole ladder.
func (l *Ledger) ClearAll() {
	clear(l.orders)
}

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/event"
	"maker_go/internal/strategy"

	"github.com/shopspring/decimal"
)

// fakeVenue is an in-memory Venue that hands out sequential order ids
// and records every call.
type fakeVenue struct {
	mu sync.Mutex

	nextID    int64
	submitted []fakeSubmission
	multiDels [][]int64
	open      []domain.OpenOrder
	ticker    domain.Ticker

	submitErr error
	tickerErr error
	openErr   error
}

type fakeSubmission struct {
	side   domain.Side
	amount decimal.Decimal
	price  decimal.Decimal
}

func newFakeVenue() *fakeVenue {
	return &fakeVenue{
		nextID: 1000,
		ticker: domain.Ticker{
			Bid:       decimal.RequireFromString("0.099"),
			Ask:       decimal.RequireFromString("0.101"),
			LastPrice: decimal.RequireFromString("0.100"),
		},
	}
}

func (v *fakeVenue) SubmitOrder(_ context.Context, _ string, side domain.Side, amount, price decimal.Decimal, _ bool) (json.RawMessage, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.submitErr != nil {
		return nil, v.submitErr
	}
	v.nextID++
	v.submitted = append(v.submitted, fakeSubmission{side: side, amount: amount, price: price})
	return json.RawMessage(fmt.Sprintf(`{"id":%d}`, v.nextID)), nil
}

func (v *fakeVenue) CancelOrder(_ context.Context, id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.multiDels = append(v.multiDels, []int64{id})
	return nil
}

func (v *fakeVenue) CancelOrderMulti(_ context.Context, ids []int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.multiDels = append(v.multiDels, ids)
	return nil
}

func (v *fakeVenue) GetOpenOrders(_ context.Context, _ string) ([]domain.OpenOrder, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.openErr != nil {
		return nil, v.openErr
	}
	return v.open, nil
}

func (v *fakeVenue) GetTicker(_ context.Context, _ string) (domain.Ticker, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.tickerErr != nil {
		return domain.Ticker{}, v.tickerErr
	}
	return v.ticker, nil
}

func (v *fakeVenue) submissions() []fakeSubmission {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]fakeSubmission(nil), v.submitted...)
}

func (v *fakeVenue) cancelCalls() [][]int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([][]int64(nil), v.multiDels...)
}

func testParams() Params {
	return Params{
		Symbol: "tPNKUSD",
		Spec: strategy.LadderSpec{
			Center:    decimal.RequireFromString("0.100"),
			Levels:    2,
			SpreadPct: decimal.NewFromInt(1),
			Size:      decimal.NewFromInt(100),
		},
		PostOnly:         true,
		SweepInterval:    time.Hour,
		SettleDelay:      0,
		SweepStatusEvery: 10,
	}
}

func TestRunTestModePlacesAndStops(t *testing.T) {
	venue := newFakeVenue()
	params := testParams()
	params.TestOnly = true
	c := New(params, venue, nil)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := len(venue.submissions()); got != 4 {
		t.Errorf("Submitted %d orders, want 4", got)
	}
	if c.State() != StateStopped {
		t.Errorf("State = %s, want STOPPED", c.State())
	}
	if c.book.Len() != 4 {
		t.Errorf("Tracked %d orders, want 4", c.book.Len())
	}
}

func TestRunRejectsCenterOutsideSpread(t *testing.T) {
	venue := newFakeVenue()
	venue.ticker.Bid = decimal.RequireFromString("0.200")
	venue.ticker.Ask = decimal.RequireFromString("0.201")
	params := testParams()
	c := New(params, venue, nil)

	err := c.Run(context.Background())
	var vErr *domain.CenterValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected CenterValidationError, got %v", err)
	}
	if len(venue.submissions()) != 0 {
		t.Error("Orders submitted despite failed validation")
	}
}

func TestRunTickerFailureAbortsEvenWhenBypassed(t *testing.T) {
	venue := newFakeVenue()
	venue.tickerErr = errors.New("ticker unavailable")
	params := testParams()
	params.IgnoreValidation = true
	c := New(params, venue, nil)

	if err := c.Run(context.Background()); err == nil {
		t.Fatal("Expected error when ticker fetch fails")
	}
	if len(venue.submissions()) != 0 {
		t.Error("Orders submitted despite unusable ticker")
	}
}

func TestRunBypassAllowsCenterOutsideSpread(t *testing.T) {
	venue := newFakeVenue()
	venue.ticker.Bid = decimal.RequireFromString("0.200")
	venue.ticker.Ask = decimal.RequireFromString("0.201")
	params := testParams()
	params.IgnoreValidation = true
	params.TestOnly = true
	c := New(params, venue, nil)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := len(venue.submissions()); got != 4 {
		t.Errorf("Submitted %d orders, want 4", got)
	}
}

func TestRunAbortsWhenNothingPlaces(t *testing.T) {
	venue := newFakeVenue()
	venue.submitErr = errors.New("insufficient balance")
	params := testParams()
	c := New(params, venue, nil)

	if err := c.Run(context.Background()); !errors.Is(err, domain.ErrNoOrdersPlaced) {
		t.Fatalf("Expected ErrNoOrdersPlaced, got %v", err)
	}
	if c.State() != StateStopped {
		t.Errorf("State = %s, want STOPPED", c.State())
	}
}

func TestPostOnlyRejectionsAreTolerated(t *testing.T) {
	venue := newFakeVenue()
	venue.submitErr = domain.ErrWouldMatch
	params := testParams()
	c := New(params, venue, nil)

	// Every leg rejected: placement as a whole fails.
	if err := c.Run(context.Background()); !errors.Is(err, domain.ErrNoOrdersPlaced) {
		t.Fatalf("Expected ErrNoOrdersPlaced, got %v", err)
	}
}

func TestExecutedOrderRecentersOnce(t *testing.T) {
	venue := newFakeVenue()
	c := New(testParams(), venue, nil)
	ctx := context.Background()

	if c.placeLadder(ctx, c.CurrentCenter()) != 4 {
		t.Fatal("Initial ladder incomplete")
	}
	first := c.book.Snapshot()[0]
	fillPrice := decimal.RequireFromString("0.099")

	ev := &event.OrderUpdateEvent{
		OrderID: first.Identity.VenueID(),
		Status:  "EXECUTED @ 0.099(100.0)",
		Amount:  decimal.Zero,
		Price:   fillPrice,
	}
	c.handleOrderUpdate(ctx, ev)

	cancels := venue.cancelCalls()
	if len(cancels) != 1 {
		t.Fatalf("Cancel calls = %d, want 1", len(cancels))
	}
	if len(cancels[0]) != 3 {
		t.Errorf("Cancelled %d orders, want the 3 survivors", len(cancels[0]))
	}
	if !c.CurrentCenter().Equal(fillPrice) {
		t.Errorf("Center = %s, want %s", c.CurrentCenter(), fillPrice)
	}
	if c.book.Len() != 4 {
		t.Errorf("Rebuilt ladder has %d orders, want 4", c.book.Len())
	}
	for _, o := range c.book.Snapshot() {
		if o.Identity == first.Identity {
			t.Error("Filled order still tracked after recenter")
		}
	}

	// Replaying the same update must be a no-op: the identity is gone.
	c.handleOrderUpdate(ctx, ev)
	if got := len(venue.cancelCalls()); got != 1 {
		t.Errorf("Replayed fill triggered another recenter: %d cancel calls", got)
	}
}

func TestPartialFillRecenterCancelsTriggeringOrder(t *testing.T) {
	venue := newFakeVenue()
	c := New(testParams(), venue, nil)
	ctx := context.Background()

	c.placeLadder(ctx, c.CurrentCenter())
	target := c.book.Snapshot()[0]

	// Half filled exactly: 50 of 100 remaining.
	ev := &event.OrderUpdateEvent{
		OrderID: target.Identity.VenueID(),
		Status:  "PARTIALLY FILLED @ 0.099(50.0)",
		Amount:  decimal.NewFromInt(50),
		Price:   target.Price,
	}
	c.handleOrderUpdate(ctx, ev)

	cancels := venue.cancelCalls()
	if len(cancels) != 1 {
		t.Fatalf("Cancel calls = %d, want 1", len(cancels))
	}
	found := false
	for _, id := range cancels[0] {
		if id == target.Identity.VenueID() {
			found = true
		}
	}
	if !found {
		t.Error("Partially filled order missing from cancel-all")
	}
	if !c.CurrentCenter().Equal(target.Price) {
		t.Errorf("Center = %s, want %s", c.CurrentCenter(), target.Price)
	}
}

func TestSmallPartialFillIsIgnored(t *testing.T) {
	venue := newFakeVenue()
	c := New(testParams(), venue, nil)
	ctx := context.Background()

	c.placeLadder(ctx, c.CurrentCenter())
	target := c.book.Snapshot()[0]

	ev := &event.OrderUpdateEvent{
		OrderID: target.Identity.VenueID(),
		Status:  "PARTIALLY FILLED @ 0.099(40.0)",
		Amount:  decimal.NewFromInt(60),
		Price:   target.Price,
	}
	c.handleOrderUpdate(ctx, ev)

	if len(venue.cancelCalls()) != 0 {
		t.Error("Minor partial fill triggered a recenter")
	}
	if _, ok := c.book.Lookup(target.Identity); !ok {
		t.Error("Order dropped on minor partial fill")
	}
}

func TestCanceledOrderRemovedWithoutRecenter(t *testing.T) {
	venue := newFakeVenue()
	c := New(testParams(), venue, nil)
	ctx := context.Background()

	c.placeLadder(ctx, c.CurrentCenter())
	target := c.book.Snapshot()[0]
	center := c.CurrentCenter()

	ev := &event.OrderUpdateEvent{
		OrderID: target.Identity.VenueID(),
		Status:  "CANCELED",
		Amount:  decimal.NewFromInt(100),
		Price:   target.Price,
	}
	c.handleOrderUpdate(ctx, ev)

	if len(venue.cancelCalls()) != 0 {
		t.Error("Cancellation triggered a recenter")
	}
	if _, ok := c.book.Lookup(target.Identity); ok {
		t.Error("Cancelled order still tracked")
	}
	if !c.CurrentCenter().Equal(center) {
		t.Error("Center moved on cancellation")
	}
	if c.book.Len() != 3 {
		t.Errorf("Tracked %d orders, want 3", c.book.Len())
	}
}

func TestSweepResubmitsMissingOrders(t *testing.T) {
	venue := newFakeVenue()
	c := New(testParams(), venue, nil)
	ctx := context.Background()

	c.placeLadder(ctx, c.CurrentCenter())
	placedBefore := len(venue.submissions())

	// Venue reports all but one still open.
	all := c.book.Snapshot()
	gone := all[1]
	venue.mu.Lock()
	for _, o := range all {
		if o.Identity == gone.Identity {
			continue
		}
		venue.open = append(venue.open, domain.OpenOrder{ID: o.Identity.VenueID()})
	}
	venue.mu.Unlock()

	c.runSweep(ctx)

	if got := len(venue.submissions()) - placedBefore; got != 1 {
		t.Fatalf("Sweep submitted %d orders, want 1", got)
	}
	if c.book.Len() != 4 {
		t.Errorf("Tracked %d orders after sweep, want 4", c.book.Len())
	}
	if _, ok := c.book.Lookup(gone.Identity); ok {
		t.Error("Vanished order kept its old identity")
	}

	resub := venue.submissions()[placedBefore]
	if resub.side != gone.Side || !resub.price.Equal(gone.Price) || !resub.amount.Equal(gone.Amount) {
		t.Errorf("Resubmitted %s %s @ %s, want %s %s @ %s",
			resub.side, resub.amount, resub.price, gone.Side, gone.Amount, gone.Price)
	}

	// Everything open again: next sweep does nothing.
	venue.mu.Lock()
	venue.open = nil
	for _, o := range c.book.Snapshot() {
		venue.open = append(venue.open, domain.OpenOrder{ID: o.Identity.VenueID()})
	}
	venue.mu.Unlock()

	c.runSweep(ctx)
	if got := len(venue.submissions()) - placedBefore; got != 1 {
		t.Errorf("Clean sweep submitted orders: %d", got-1)
	}
}

func TestSweepSurvivesVenueError(t *testing.T) {
	venue := newFakeVenue()
	c := New(testParams(), venue, nil)
	ctx := context.Background()

	c.placeLadder(ctx, c.CurrentCenter())
	venue.openErr = errors.New("temporarily unavailable")

	c.runSweep(ctx)

	if c.book.Len() != 4 {
		t.Errorf("Ledger changed on failed sweep: %d orders", c.book.Len())
	}
	if c.SweepCount() != 1 {
		t.Errorf("SweepCount = %d, want 1", c.SweepCount())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	venue := newFakeVenue()
	c := New(testParams(), venue, nil)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	deadline := time.Now().Add(5 * time.Second)
	for c.State() != StateActive {
		if time.Now().After(deadline) {
			t.Fatal("Controller never went active")
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.Stop()
	c.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if c.State() != StateStopped {
		t.Errorf("State = %s, want STOPPED", c.State())
	}
	if got := len(venue.cancelCalls()); got != 1 {
		t.Errorf("Shutdown issued %d cancel calls, want 1", got)
	}
	if c.book.Len() != 0 {
		t.Errorf("Ledger not cleared on stop: %d orders", c.book.Len())
	}

	// Stop after stopped stays quiet.
	c.Stop()
}

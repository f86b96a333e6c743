package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/event"
	"maker_go/internal/infra"
	"maker_go/internal/ledger"
	"maker_go/internal/strategy"

	"github.com/shopspring/decimal"
)

// State is the controller's lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StatePlacing
	StateActive
	StateRecentering
	StateStopping
	StateStopped
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateValidating:
		return "VALIDATING"
	case StatePlacing:
		return "PLACING"
	case StateActive:
		return "ACTIVE"
	case StateRecentering:
		return "RECENTERING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Params configures one controller run.
type Params struct {
	Symbol           string
	Spec             strategy.LadderSpec // Center is the initial center
	PostOnly         bool
	TestOnly         bool
	IgnoreValidation bool
	SweepInterval    time.Duration
	SettleDelay      time.Duration
	SweepStatusEvery int
}

// Controller owns the ladder parameters, the ledger and the lifecycle.
// Run is the single goroutine that touches the ledger; stream workers
// and the sweep clock only feed the inbox. External reads (State,
// CurrentCenter) go through a mutex, mirroring how the ledger's owner
// loop is isolated from observers.
type Controller struct {
	params  Params
	venue   domain.Venue
	stream  domain.StreamWorker
	journal domain.Journal
	book    *ledger.Ledger
	inbox   chan event.Event
	logger  *slog.Logger
	metrics *infra.Metrics

	stopOnce sync.Once
	stopCh   chan struct{}
	sweepWG  sync.WaitGroup

	mu            sync.RWMutex
	state         State
	currentCenter decimal.Decimal
	sweepCount    int
}

// New creates a controller. stream and journal may be nil (test-only
// runs and disabled journals).
func New(params Params, venue domain.Venue, journal domain.Journal) *Controller {
	return &Controller{
		params:        params,
		venue:         venue,
		journal:       journal,
		book:          ledger.New(),
		inbox:         make(chan event.Event, 1024),
		logger:        slog.Default().With("module", "controller"),
		metrics:       infra.GlobalMetrics,
		stopCh:        make(chan struct{}),
		state:         StateIdle,
		currentCenter: params.Spec.Center,
	}
}

// Inbox returns the event channel. Stream workers send events here.
func (c *Controller) Inbox() chan<- event.Event {
	return c.inbox
}

// SetStream attaches the venue event stream. Must be called before Run.
func (c *Controller) SetStream(stream domain.StreamWorker) {
	c.stream = stream
}

// State returns the current lifecycle state (external read).
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CurrentCenter returns the active center price (external read).
func (c *Controller) CurrentCenter() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentCenter
}

// SweepCount returns the number of completed sweeps (external read).
func (c *Controller) SweepCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sweepCount
}

// TrackedOrders returns a copy of the ledger for observers. Only safe
// to call when Run is not mid-mutation, i.e. from tests or after stop.
func (c *Controller) TrackedOrders() []domain.TrackedOrder {
	return c.book.Snapshot()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	old := c.state
	c.state = s
	c.mu.Unlock()
	if old != s {
		c.logger.Debug("State transition", "from", old.String(), "to", s.String())
	}
}

// Stop requests shutdown. Idempotent: repeated calls, or calls after
// the controller already stopped, are no-ops.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// Run executes the full lifecycle and blocks until stopped. A
// validation failure or an entirely failed initial placement aborts
// before the controller ever goes active.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.validate(ctx); err != nil {
		c.setState(StateStopped)
		return err
	}

	c.setState(StatePlacing)
	placed := c.placeLadder(ctx, c.CurrentCenter())
	if placed == 0 {
		c.logger.Error("No orders were placed, aborting")
		c.setState(StateStopped)
		return domain.ErrNoOrdersPlaced
	}
	c.logger.Info("Ladder placed", "orders", placed, "center", c.CurrentCenter().String())

	if c.params.TestOnly {
		c.logger.Info("Test mode, exiting without monitoring")
		c.setState(StateStopped)
		return nil
	}

	if c.stream != nil {
		if err := c.stream.Connect(ctx); err != nil {
			c.logger.Error("Stream connect failed", "error", err)
		}
	}

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	c.startSweepClock(sweepCtx)

	c.setState(StateActive)
	c.logger.Info("Listening for order fills",
		"sweep_interval", c.params.SweepInterval.String())

	for {
		select {
		case <-ctx.Done():
			c.shutdown(cancelSweep)
			return nil
		case <-c.stopCh:
			c.shutdown(cancelSweep)
			return nil
		case ev := <-c.inbox:
			c.processEvent(ctx, ev)
		}
	}
}

// validate checks the spec and the center price against the live spread.
func (c *Controller) validate(ctx context.Context) error {
	c.setState(StateValidating)

	if err := c.params.Spec.Validate(); err != nil {
		return err
	}

	ticker, err := c.venue.GetTicker(ctx, c.params.Symbol)
	if err != nil {
		return domain.NewFatalNetworkError("validate", err)
	}

	center := c.CurrentCenter()
	if c.params.IgnoreValidation {
		c.logger.Warn("Center price validation bypassed",
			"center", center.String(),
			"bid", ticker.Bid.String(),
			"ask", ticker.Ask.String())
		return nil
	}

	if !ticker.Contains(center) {
		return &domain.CenterValidationError{
			Center: center.String(),
			Bid:    ticker.Bid.String(),
			Ask:    ticker.Ask.String(),
		}
	}
	return nil
}

// processEvent dispatches one inbox event. Runs only on the Run
// goroutine.
func (c *Controller) processEvent(ctx context.Context, ev event.Event) {
	switch e := ev.(type) {
	case *event.OrderUpdateEvent:
		c.handleOrderUpdate(ctx, e)
		event.ReleaseOrderUpdateEvent(e)
	case *event.SweepTickEvent:
		c.runSweep(ctx)
	case *event.OrderNewEvent:
		c.logger.Debug("Order confirmed by venue", "order_id", e.OrderID)
	case *event.AuthenticatedEvent:
		c.logger.Info("Stream authenticated, monitoring order fills")
	case *event.NotificationEvent:
		if e.Status == "ERROR" {
			c.logger.Error("Venue notification", "text", e.Text)
		}
	default:
		c.logger.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
}

func (c *Controller) handleOrderUpdate(ctx context.Context, ev *event.OrderUpdateEvent) {
	decision := strategy.Classify(ev, c.book)

	switch decision.Type {
	case strategy.DecisionRemoveAndRecenter:
		removed, _ := c.book.Remove(decision.Identity)
		c.metrics.RecordOrderFilled()
		c.logger.Info("Order fully executed",
			"order_id", decision.Identity.String(),
			"side", string(removed.Side),
			"price", ev.Price.String())
		c.record(domain.JournalFilled, removed)
		c.recenter(ctx, decision.RecenterPrice)

	case strategy.DecisionRecenter:
		tracked, _ := c.book.Lookup(decision.Identity)
		c.logger.Info("Significant partial fill, recentering",
			"order_id", decision.Identity.String(),
			"remaining", ev.Amount.Abs().String())
		// The triggering order stays in the ledger; the recenter's
		// cancel-all removes it with everything else.
		c.record(domain.JournalPartialFill, tracked)
		c.recenter(ctx, decision.RecenterPrice)

	case strategy.DecisionRemove:
		removed, _ := c.book.Remove(decision.Identity)
		c.metrics.RecordOrderCanceled()
		c.logger.Info("Order was cancelled", "order_id", decision.Identity.String())
		c.record(domain.JournalCanceled, removed)
	}

	c.metrics.SetTrackedOrders(int64(c.book.Len()))
}

// recenter tears the ladder down and rebuilds it around price. The
// sequence is not atomic: a stop between cancel and replace leaves an
// empty book, which the next start or sweep repairs.
func (c *Controller) recenter(ctx context.Context, price decimal.Decimal) {
	c.setState(StateRecentering)
	c.logger.Info("Adjusting orders to new center",
		"new_center", price.String(),
		"previous", c.CurrentCenter().String())

	c.cancelAllOrders(ctx)

	select {
	case <-ctx.Done():
		return
	case <-time.After(c.params.SettleDelay):
	}

	c.mu.Lock()
	c.currentCenter = price
	c.mu.Unlock()
	c.metrics.RecordRecenter()
	if c.journal != nil {
		c.journal.Record(&domain.JournalEntry{
			Event:  domain.JournalRecentered,
			Symbol: c.params.Symbol,
			Price:  price.String(),
		})
	}

	c.setState(StatePlacing)
	placed := c.placeLadder(ctx, price)
	if placed == 0 {
		c.logger.Error("Recenter placed no orders, book is empty until next sweep or restart")
	}
	c.setState(StateActive)
}

// placeLadder generates and submits every leg around center. Placement
// is partial-failure-tolerant: post-only rejections and submission
// errors skip the leg, remaining legs still go out.
func (c *Controller) placeLadder(ctx context.Context, center decimal.Decimal) int {
	spec := c.params.Spec
	spec.Center = center
	legs := strategy.Generate(spec)

	for _, leg := range legs {
		c.logger.Info("Ladder leg",
			"side", string(leg.Side),
			"amount", leg.Amount.String(),
			"price", leg.Price.String(),
			"distance_pct", leg.DistancePct(center).StringFixed(3))
	}

	placed := 0
	for _, leg := range legs {
		tracked, err := c.submitLeg(ctx, leg)
		if err != nil {
			if domain.IsPostOnlyReject(err) {
				c.metrics.RecordPostOnlySkip()
				c.logger.Warn("Post-only leg skipped, would have matched",
					"side", string(leg.Side), "price", leg.Price.String())
			} else {
				c.metrics.RecordError()
				c.logger.Error("Failed to place leg",
					"side", string(leg.Side), "price", leg.Price.String(),
					"error", err)
			}
			continue
		}

		if err := c.book.Insert(tracked); err != nil {
			c.logger.Warn("Placed order not tracked",
				"identity", tracked.Identity.String(), "error", err)
			continue
		}
		placed++
	}

	c.metrics.SetTrackedOrders(int64(c.book.Len()))
	return placed
}

// submitLeg submits one leg and resolves its identity, degrading to a
// placeholder when the response shape hides the id.
func (c *Controller) submitLeg(ctx context.Context, leg domain.QuoteLeg) (domain.TrackedOrder, error) {
	raw, err := c.venue.SubmitOrder(ctx, c.params.Symbol, leg.Side, leg.Amount, leg.Price, c.params.PostOnly)
	if err != nil {
		return domain.TrackedOrder{}, err
	}

	identity := ResolveIdentity(raw, leg.Side, leg.Price, leg.Amount)
	if !identity.Confirmed() {
		c.logger.Warn("Could not extract order id, tracking with placeholder",
			"placeholder", identity.String())
	}

	tracked := domain.TrackedOrder{
		Identity: identity,
		Side:     leg.Side,
		Amount:   leg.Amount.Abs(),
		Price:    leg.Price,
	}
	c.metrics.RecordOrderPlaced()
	c.record(domain.JournalPlaced, tracked)
	return tracked, nil
}

// cancelAllOrders bulk-cancels every confirmed identity and drops
// placeholders locally, then clears the ledger.
func (c *Controller) cancelAllOrders(ctx context.Context) {
	if c.book.Len() == 0 {
		return
	}

	ids := c.book.ConfirmedIDs()
	placeholders := c.book.Len() - len(ids)

	if len(ids) > 0 {
		if err := c.venue.CancelOrderMulti(ctx, ids); err != nil {
			c.logger.Error("Bulk cancel failed", "orders", len(ids), "error", err)
			c.metrics.RecordError()
		} else {
			c.logger.Info("Bulk cancellation submitted", "orders", len(ids))
		}
	}
	if placeholders > 0 {
		c.logger.Info("Dropping placeholder orders from tracking", "count", placeholders)
	}

	c.book.ClearAll()
	c.metrics.SetTrackedOrders(0)
}

// shutdown runs the stop sequence to completion: stop the sweep clock,
// cancel everything resting, clear tracking, close the stream.
func (c *Controller) shutdown(cancelSweep context.CancelFunc) {
	c.setState(StateStopping)
	c.logger.Info("Shutting down")

	cancelSweep()
	c.sweepWG.Wait()

	// The run context may already be cancelled; cleanup calls get their
	// own short deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	c.cancelAllOrders(ctx)

	if c.stream != nil {
		c.stream.Disconnect()
	}

	c.setState(StateStopped)
	c.logger.Info("Stopped")
}

func (c *Controller) record(kind string, order domain.TrackedOrder) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(&domain.JournalEntry{
		Event:   kind,
		Symbol:  c.params.Symbol,
		OrderID: order.Identity.String(),
		Side:    string(order.Side),
		Amount:  order.Amount.String(),
		Price:   order.Price.String(),
	}); err != nil {
		c.logger.Warn("Journal write failed", "error", err)
	}
}

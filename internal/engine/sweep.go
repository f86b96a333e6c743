package engine

import (
	"context"
	"time"

	"maker_go/internal/domain"
	"maker_go/internal/event"
)

// startSweepClock runs the replenishment clock on its own goroutine.
// It only pushes ticks into the inbox; the sweep itself executes on the
// Run goroutine so the ledger never sees concurrent writers. The first
// tick waits one full interval to let the initial ladder settle.
func (c *Controller) startSweepClock(ctx context.Context) {
	c.sweepWG.Add(1)
	go func() {
		defer c.sweepWG.Done()

		ticker := time.NewTicker(c.params.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case c.inbox <- &event.SweepTickEvent{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// runSweep reconciles the ledger against the venue's open orders and
// resubmits whatever silently disappeared. Venue errors end the sweep
// early; the clock keeps ticking and the next sweep retries.
func (c *Controller) runSweep(ctx context.Context) {
	c.mu.Lock()
	c.sweepCount++
	count := c.sweepCount
	c.mu.Unlock()
	c.metrics.RecordSweep()

	open, err := c.venue.GetOpenOrders(ctx, c.params.Symbol)
	if err != nil {
		c.metrics.RecordError()
		c.logger.Error("Sweep could not fetch open orders", "error", err)
		return
	}

	openIDs := make(map[int64]bool, len(open))
	for _, o := range open {
		openIDs[o.ID] = true
	}

	c.checkBand(ctx)

	missing := c.book.ResolveMissing(openIDs)
	if len(missing) == 0 {
		if c.params.SweepStatusEvery > 0 && count%c.params.SweepStatusEvery == 0 {
			c.logger.Info("All orders still resting",
				"tracked", c.book.Len(), "open", len(open), "sweep", count)
		}
		return
	}

	c.logger.Info("Orders missing from the book, replenishing",
		"missing", len(missing), "tracked", c.book.Len())

	for _, gone := range missing {
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.resubmit(ctx, gone)
	}

	c.metrics.SetTrackedOrders(int64(c.book.Len()))
}

// checkBand warns when the market has drifted past the ladder's
// outermost levels. Recentering only happens on fills, so a runaway
// market leaves the ladder resting far from the action.
func (c *Controller) checkBand(ctx context.Context) {
	band, ok := domain.BandFromOrders(c.book.Snapshot())
	if !ok {
		return
	}
	ticker, err := c.venue.GetTicker(ctx, c.params.Symbol)
	if err != nil {
		return
	}
	if dir, breached := band.Breach(ticker.LastPrice); breached {
		c.logger.Warn("Market moved outside the ladder band",
			"direction", string(dir),
			"last_price", ticker.LastPrice.String(),
			"band_low", band.Lower.String(),
			"band_high", band.Upper.String())
	}
}

// resubmit replaces one vanished order at its original side, price and
// size. The old identity is dropped first so a failed resubmission
// leaves a gap instead of a stale entry.
func (c *Controller) resubmit(ctx context.Context, gone domain.TrackedOrder) {
	c.book.Remove(gone.Identity)

	leg := domain.QuoteLeg{Side: gone.Side, Amount: gone.Amount, Price: gone.Price}
	tracked, err := c.submitLeg(ctx, leg)
	if err != nil {
		if domain.IsPostOnlyReject(err) {
			c.metrics.RecordPostOnlySkip()
			c.logger.Warn("Resubmission skipped, would have matched",
				"side", string(gone.Side), "price", gone.Price.String())
		} else {
			c.metrics.RecordError()
			c.logger.Error("Resubmission failed",
				"side", string(gone.Side), "price", gone.Price.String(), "error", err)
		}
		return
	}

	if err := c.book.Insert(tracked); err != nil {
		c.logger.Warn("Resubmitted order not tracked",
			"identity", tracked.Identity.String(), "error", err)
		return
	}

	c.metrics.RecordResubmission()
	c.logger.Info("Order resubmitted",
		"old", gone.Identity.String(),
		"new", tracked.Identity.String(),
		"side", string(gone.Side),
		"price", gone.Price.String())
	c.record(domain.JournalResubmitted, tracked)
}

package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ordersPlaced   atomic.Uint64
	ordersFilled   atomic.Uint64
	ordersCanceled atomic.Uint64
	recenters      atomic.Uint64
	sweeps         atomic.Uint64
	resubmissions  atomic.Uint64
	postOnlySkips  atomic.Uint64
	errorsTotal    atomic.Uint64

	// Gauges
	trackedOrders atomic.Int64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderPlaced records a successful order submission.
func (m *Metrics) RecordOrderPlaced() {
	m.ordersPlaced.Add(1)
}

// RecordOrderFilled records a fully executed order.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// RecordOrderCanceled records an observed cancellation.
func (m *Metrics) RecordOrderCanceled() {
	m.ordersCanceled.Add(1)
}

// RecordRecenter records one full ladder recenter.
func (m *Metrics) RecordRecenter() {
	m.recenters.Add(1)
}

// RecordSweep records one replenishment pass.
func (m *Metrics) RecordSweep() {
	m.sweeps.Add(1)
}

// RecordResubmission records one sweep resubmission.
func (m *Metrics) RecordResubmission() {
	m.resubmissions.Add(1)
}

// RecordPostOnlySkip records a leg skipped by the post-only guard.
func (m *Metrics) RecordPostOnlySkip() {
	m.postOnlySkips.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// SetTrackedOrders sets the current ledger size.
func (m *Metrics) SetTrackedOrders(n int64) {
	m.trackedOrders.Store(n)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersPlaced   uint64
	OrdersFilled   uint64
	OrdersCanceled uint64
	Recenters      uint64
	Sweeps         uint64
	Resubmissions  uint64
	PostOnlySkips  uint64
	ErrorsTotal    uint64
	TrackedOrders  int64
}

// Snapshot returns a consistent-enough view for logging and tests.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		OrdersPlaced:   m.ordersPlaced.Load(),
		OrdersFilled:   m.ordersFilled.Load(),
		OrdersCanceled: m.ordersCanceled.Load(),
		Recenters:      m.recenters.Load(),
		Sweeps:         m.sweeps.Load(),
		Resubmissions:  m.resubmissions.Load(),
		PostOnlySkips:  m.postOnlySkips.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		TrackedOrders:  m.trackedOrders.Load(),
	}
}

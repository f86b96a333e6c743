package service

import (
	"testing"

	"maker_go/internal/engine"
	"maker_go/internal/infra"

	"github.com/shopspring/decimal"
)

type fakeSession struct {
	state  engine.State
	center decimal.Decimal
	sweeps int
}

func (f *fakeSession) State() engine.State            { return f.state }
func (f *fakeSession) CurrentCenter() decimal.Decimal { return f.center }
func (f *fakeSession) SweepCount() int                { return f.sweeps }

func TestStatusServiceCollect(t *testing.T) {
	metrics := &infra.Metrics{}
	metrics.RecordOrderPlaced()
	metrics.RecordOrderPlaced()
	metrics.RecordOrderFilled()
	metrics.SetTrackedOrders(4)

	session := &fakeSession{
		state:  engine.StateActive,
		center: decimal.RequireFromString("0.1015"),
		sweeps: 7,
	}
	s := NewStatusService(session, metrics, 0)

	report := s.Collect()
	if report.State != "ACTIVE" {
		t.Errorf("State = %s, want ACTIVE", report.State)
	}
	if report.Center != "0.1015" {
		t.Errorf("Center = %s, want 0.1015", report.Center)
	}
	if report.Sweeps != 7 {
		t.Errorf("Sweeps = %d, want 7", report.Sweeps)
	}
	if report.Metrics.OrdersPlaced != 2 || report.Metrics.OrdersFilled != 1 {
		t.Errorf("Metrics = %+v", report.Metrics)
	}
	if report.Metrics.TrackedOrders != 4 {
		t.Errorf("TrackedOrders = %d, want 4", report.Metrics.TrackedOrders)
	}

	if got := s.Last(); got.Timestamp != report.Timestamp {
		t.Error("Last did not return the collected report")
	}
}

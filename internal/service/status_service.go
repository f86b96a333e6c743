package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"maker_go/internal/engine"
	"maker_go/internal/infra"

	"github.com/shopspring/decimal"
)

// SessionSource is the controller surface the reporter reads.
type SessionSource interface {
	State() engine.State
	CurrentCenter() decimal.Decimal
	SweepCount() int
}

// SessionReport is a point-in-time view of the trading session.
type SessionReport struct {
	State     string
	Center    string
	Sweeps    int
	Metrics   infra.MetricsSnapshot
	Timestamp time.Time
}

// StatusService periodically publishes a session summary to the log and
// keeps the latest report available for callers.
type StatusService struct {
	mu       sync.RWMutex
	source   SessionSource
	metrics  *infra.Metrics
	interval time.Duration
	logger   *slog.Logger
	last     SessionReport
}

// NewStatusService creates a reporter over the given session source.
func NewStatusService(source SessionSource, metrics *infra.Metrics, interval time.Duration) *StatusService {
	return &StatusService{
		source:   source,
		metrics:  metrics,
		interval: interval,
		logger:   slog.Default().With("module", "status"),
	}
}

// Start launches the background reporting goroutine.
func (s *StatusService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report := s.Collect()
				s.logger.Info("Session status",
					"state", report.State,
					"center", report.Center,
					"sweeps", report.Sweeps,
					"placed", report.Metrics.OrdersPlaced,
					"filled", report.Metrics.OrdersFilled,
					"resubmitted", report.Metrics.Resubmissions,
					"recenters", report.Metrics.Recenters,
					"errors", report.Metrics.ErrorsTotal,
					"tracked", report.Metrics.TrackedOrders)
			}
		}
	}()
}

// Collect builds a fresh report and stores it as the latest.
func (s *StatusService) Collect() SessionReport {
	report := SessionReport{
		State:     s.source.State().String(),
		Center:    s.source.CurrentCenter().String(),
		Sweeps:    s.source.SweepCount(),
		Metrics:   s.metrics.Snapshot(),
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report
}

// Last returns the most recently collected report.
func (s *StatusService) Last() SessionReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

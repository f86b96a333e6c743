package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maker_go/internal/app"
	"maker_go/internal/domain"
	"maker_go/internal/engine"
	"maker_go/internal/execution"
	"maker_go/internal/infra"
	"maker_go/internal/infra/bitfinex"
	"maker_go/internal/service"
	"maker_go/internal/strategy"

	"github.com/shopspring/decimal"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	var (
		configPath       = flag.String("config", "configs/config.yaml", "path to the configuration file")
		centerFlag       = flag.String("center", "mid", "ladder center price, or \"mid\" for the current mid price")
		levels           = flag.Int("levels", 0, "levels per side (overrides config)")
		spread           = flag.String("spread", "", "spread percent per level (overrides config)")
		size             = flag.String("size", "", "order size per level (overrides config)")
		side             = flag.String("side", "", "restrict to one side: buy or sell")
		testOnly         = flag.Bool("test-only", false, "place the ladder and exit without monitoring")
		ignoreValidation = flag.Bool("ignore-validation", false, "skip the center-inside-spread check")
		paper            = flag.Bool("paper", false, "run against a simulated venue")
	)
	flag.Parse()

	// Pprof server, localhost only.
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params, err := buildParams(cfg, *centerFlag, *levels, *spread, *size, *side, *testOnly, *ignoreValidation)
	if err != nil {
		slog.Error("Invalid parameters", slog.Any("error", err))
		os.Exit(1)
	}

	var venue domain.Venue
	if *paper {
		paperVenue, err := buildPaperVenue(*centerFlag)
		if err != nil {
			slog.Error("Paper venue needs a numeric center", slog.Any("error", err))
			os.Exit(1)
		}
		venue = paperVenue
		slog.Info("Running against the paper venue")
	} else {
		venue = bitfinex.NewClient(cfg)
	}

	if params.Spec.Center.IsZero() {
		center, err := resolveMidCenter(ctx, venue, cfg.Maker.Symbol)
		if err != nil {
			slog.Error("Could not resolve mid price center", slog.Any("error", err))
			os.Exit(1)
		}
		params.Spec.Center = center
		slog.Info("Center resolved from mid price", "center", center.String())
	}

	var journal domain.Journal
	if bootstrap.Journal != nil {
		journal = bootstrap.Journal
	}

	ctrl := engine.New(params, venue, journal)
	if !*paper && !*testOnly {
		ctrl.SetStream(bitfinex.NewWorker(cfg, ctrl.Inbox()))
	}

	if !*testOnly {
		status := service.NewStatusService(ctrl, infra.GlobalMetrics, time.Minute)
		status.Start(ctx)
	}

	slog.Info("Starting maker session",
		"symbol", params.Symbol,
		"levels", params.Spec.Levels,
		"spread_pct", params.Spec.SpreadPct.String(),
		"size", params.Spec.Size.String())

	if err := ctrl.Run(ctx); err != nil {
		slog.Error("Session ended with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Session ended")
}

// buildParams merges config values with flag overrides. A zero center
// in the result means "resolve from the mid price".
func buildParams(cfg *infra.Config, center string, levels int, spread, size, side string, testOnly, ignoreValidation bool) (engine.Params, error) {
	spec := strategy.LadderSpec{
		Levels:    cfg.Maker.Levels,
		SpreadPct: cfg.Maker.SpreadPct,
		Size:      cfg.Maker.Size,
		Filter:    domain.SideFilter(cfg.Maker.SideFilter),
	}

	if center != "mid" {
		c, err := decimal.NewFromString(center)
		if err != nil {
			return engine.Params{}, fmt.Errorf("invalid center %q: %w", center, err)
		}
		spec.Center = c
	}
	if levels > 0 {
		spec.Levels = levels
	}
	if spread != "" {
		s, err := decimal.NewFromString(spread)
		if err != nil {
			return engine.Params{}, fmt.Errorf("invalid spread %q: %w", spread, err)
		}
		spec.SpreadPct = s
	}
	if size != "" {
		s, err := decimal.NewFromString(size)
		if err != nil {
			return engine.Params{}, fmt.Errorf("invalid size %q: %w", size, err)
		}
		spec.Size = s
	}
	if side != "" {
		switch domain.SideFilter(side) {
		case domain.FilterBuyOnly, domain.FilterSellOnly:
			spec.Filter = domain.SideFilter(side)
		default:
			return engine.Params{}, fmt.Errorf("invalid side %q, want buy or sell", side)
		}
	}

	return engine.Params{
		Symbol:           cfg.Maker.Symbol,
		Spec:             spec,
		PostOnly:         cfg.Maker.PostOnly,
		TestOnly:         testOnly,
		IgnoreValidation: ignoreValidation,
		SweepInterval:    time.Duration(cfg.Maker.SweepIntervalSec) * time.Second,
		SettleDelay:      time.Duration(cfg.Maker.SettleDelayMS) * time.Millisecond,
		SweepStatusEvery: cfg.Maker.SweepStatusEvery,
	}, nil
}

// buildPaperVenue quotes a narrow synthetic market around the requested
// center.
func buildPaperVenue(center string) (*execution.PaperVenue, error) {
	c, err := decimal.NewFromString(center)
	if err != nil {
		return nil, err
	}
	tight := decimal.RequireFromString("0.001")
	return execution.NewPaperVenue(domain.Ticker{
		Bid:       c.Mul(decimal.NewFromInt(1).Sub(tight)),
		Ask:       c.Mul(decimal.NewFromInt(1).Add(tight)),
		LastPrice: c,
	}), nil
}

func resolveMidCenter(ctx context.Context, venue domain.Venue, symbol string) (decimal.Decimal, error) {
	ticker, err := venue.GetTicker(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ticker.Mid(), nil
}

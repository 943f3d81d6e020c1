// Package analysis coordinates one market analysis run.
// It coordinates: normalization → market analytics → attribution → scoring
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"polymarket-lab/internal/attribution"
	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/metrics"
	"polymarket-lab/internal/normalization"
	"polymarket-lab/internal/observability"
	"polymarket-lab/internal/scoring"
)

// ErrNoEngine is returned by AnalyzeMarket when no normalization engine is configured.
var ErrNoEngine = errors.New("analysis: normalization engine is required")

// Analyzer runs the analytics core over a prepared market snapshot.
// Market analytics and every trader's attribution+scoring read the same
// immutable snapshot and run concurrently.
type Analyzer struct {
	engine      normalization.Engine
	cache       *attribution.PositionCache
	scorer      *scoring.Scorer
	concurrency int
	logger      *slog.Logger
}

// Options for creating Analyzer.
type Options struct {
	// Required
	Engine normalization.Engine

	// Optional
	Cache       *attribution.PositionCache // nil rebuilds every position
	Scorer      scoring.Config
	Concurrency int // max traders scored in parallel, <= 0 means GOMAXPROCS
	Logger      *slog.Logger
}

// New creates a new Analyzer.
func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{
		engine:      opts.Engine,
		cache:       opts.Cache,
		scorer:      scoring.NewScorer(opts.Scorer),
		concurrency: concurrency,
		logger:      logger.With("component", "analysis"),
	}
}

// Result contains everything produced for one market.
type Result struct {
	RunID      string
	Snapshot   *normalization.Snapshot
	Market     *domain.AnalyticsReport
	Strategies []*domain.StrategyReport // same order as the requested traders
}

// AnalyzeMarket prepares the market and computes its reports.
// If traders is empty, every trader present in the normalized events is scored.
// Phases:
//  1. Prepare snapshot (load, normalize, reconstruct)
//  2. Market report and per-trader reports, fanned out
func (a *Analyzer) AnalyzeMarket(ctx context.Context, marketID string, traders []string) (*Result, error) {
	if a.engine == nil {
		return nil, ErrNoEngine
	}

	result := &Result{RunID: uuid.New().String()}
	logger := a.logger.With("run_id", result.RunID, "market_id", marketID)
	started := time.Now()

	// Phase 1: snapshot
	snap, err := a.engine.PrepareMarket(ctx, marketID)
	observability.RecordAnalysisPhase("prepare", time.Since(started))
	if err != nil {
		observability.RecordMarketAnalyzed("failed")
		return nil, fmt.Errorf("phase 1 (prepare) failed: %w", err)
	}
	result.Snapshot = snap

	if len(traders) == 0 {
		traders = TradersIn(snap.Events)
	}
	logger.Debug("snapshot ready", "events", len(snap.Events), "traders", len(traders))

	// Phase 2: reports
	phase := time.Now()
	result.Strategies = make([]*domain.StrategyReport, len(traders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	g.Go(func() error {
		report, err := metrics.ComputeMarketReport(snap.Series, snap.Market)
		if err != nil {
			return fmt.Errorf("market report: %w", err)
		}
		report.Trades = metrics.ComputeTradeStats(snap.Events)
		result.Market = report
		return nil
	})

	for i, trader := range traders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := a.scoreTrader(snap, trader)
			if err != nil {
				return fmt.Errorf("trader %s: %w", trader, err)
			}
			result.Strategies[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		observability.RecordMarketAnalyzed("failed")
		return nil, fmt.Errorf("phase 2 (reports) failed: %w", err)
	}
	observability.RecordAnalysisPhase("reports", time.Since(phase))
	observability.RecordMarketAnalyzed("success")

	logger.Info("market analyzed",
		"traders", len(traders),
		"samples", result.Market.SampleCount,
		"volatility", result.Market.Volatility.Status,
		"elapsed", time.Since(started),
	)

	return result, nil
}

// scoreTrader builds (or reuses) the trader's position and scores it.
func (a *Analyzer) scoreTrader(snap *normalization.Snapshot, trader string) (*domain.StrategyReport, error) {
	var (
		position *domain.TraderPosition
		err      error
	)
	if a.cache != nil {
		position, err = a.cache.Get(snap.Version, trader, snap.Events, snap.Market)
	} else {
		position, err = attribution.BuildPosition(snap.Events, trader, snap.Market)
	}
	if err != nil {
		return nil, err
	}

	report, err := a.scorer.Score(position, snap.Series, snap.Market)
	if err != nil {
		return nil, err
	}
	observability.RecordTraderScored(string(report.State))
	return report, nil
}

// TradersIn returns the distinct trader addresses in events, sorted.
func TradersIn(events []*domain.TradeEvent) []string {
	seen := make(map[string]struct{})
	for _, e := range events {
		seen[e.TraderAddress] = struct{}{}
	}
	traders := make([]string, 0, len(seen))
	for t := range seen {
		traders = append(traders, t)
	}
	sort.Strings(traders)
	return traders
}

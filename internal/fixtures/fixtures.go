// Package fixtures provides deterministic demo markets and trades for running
// the analyzer without a database.
package fixtures

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

// Demo identifiers.
const (
	DemoTrader = "0x6031b6eed1c97e853c6e0f03ad3ce3529351f96d"

	// LateTrader only trades after resolution, outside every reconstructed series.
	LateTrader = "0x00000000000000000000000000000000000000ff"

	MarketJan30ID   = "btc-updown-2026-01-30-03"
	MarketJan30Slug = "bitcoin-up-or-down-january-30-3am-et"
	MarketJan29ID   = "btc-updown-2026-01-29-08"
	MarketJan29Slug = "bitcoin-up-or-down-january-29-8am-et"
)

const hourMs = int64(3_600_000)

// Markets returns the demo market metadata.
func Markets() []*domain.MarketMetadata {
	return []*domain.MarketMetadata{
		{
			MarketID:         MarketJan30ID,
			Slug:             MarketJan30Slug,
			Question:         "Bitcoin Up or Down - January 30, 3AM ET",
			ConditionID:      "0x9c1a6f0d3b5e2a7c4f8d1e6b3a0c5f2e7d4b1a8c6e3f0d5b2a9c7e4f1d8b6a3c",
			Outcomes:         [2]string{domain.OutcomeUp, domain.OutcomeDown},
			TickSize:         0.01,
			StartTimeMs:      1769760000000, // 2026-01-30 08:00:00 UTC
			ResolutionTimeMs: 1769760000000 + hourMs,
			Resolved:         true,
			WinningOutcome:   domain.OutcomeUp,
		},
		{
			MarketID:         MarketJan29ID,
			Slug:             MarketJan29Slug,
			Question:         "Bitcoin Up or Down - January 29, 8AM ET",
			Outcomes:         [2]string{domain.OutcomeUp, domain.OutcomeDown},
			TickSize:         0.01,
			StartTimeMs:      1769691600000, // 2026-01-29 13:00:00 UTC
			ResolutionTimeMs: 1769691600000 + hourMs,
			Resolved:         true,
			WinningOutcome:   domain.OutcomeDown,
		},
	}
}

// marketParams shapes the generated tape of one market.
type marketParams struct {
	seed  uint64
	open  float64 // starting Up price
	drift float64 // per-trade drift of the Up price
}

var params = map[string]marketParams{
	MarketJan30ID: {seed: 30, open: 0.48, drift: 0.004},
	MarketJan29ID: {seed: 29, open: 0.55, drift: -0.005},
}

// Trades generates the raw tape for a demo market. The output is identical on
// every call and includes secondary-leg trades, an exact duplicate and two
// malformed records, as a live feed would.
func Trades(meta *domain.MarketMetadata) []*domain.RawTrade {
	p, ok := params[meta.MarketID]
	if !ok {
		return nil
	}
	rng := rand.New(rand.NewPCG(p.seed, 0x5eed))

	const n = 150
	step := hourMs / n
	price := p.open
	trades := make([]*domain.RawTrade, 0, n+16)

	for i := 0; i < n; i++ {
		price = clamp(price+p.drift+(rng.Float64()-0.5)*0.04, 0.03, 0.97)
		ts := meta.StartTimeMs + int64(i)*step + rng.Int64N(step)

		side := "buy"
		if rng.IntN(2) == 0 {
			side = "sell"
		}
		t := &domain.RawTrade{
			MarketID:      meta.MarketID,
			TimestampMs:   ts,
			Price:         round2(price),
			Size:          round2(5 + rng.Float64()*95),
			Side:          side,
			TraderAddress: fmt.Sprintf("0x%040x", 0xa000+rng.IntN(12)),
			TxHash:        fmt.Sprintf("0x%064x", p.seed<<32|uint64(i)),
		}
		// A third of the flow trades the Down leg at the complementary price
		if rng.IntN(3) == 0 {
			t.Outcome = meta.SecondaryOutcome()
			t.Price = round2(1 - t.Price)
		}
		trades = append(trades, t)

		// Demo trader: buys early dips, trims into strength later
		if i%15 == 7 {
			demoSide := "buy"
			if i > n*2/3 {
				demoSide = "sell"
			}
			trades = append(trades, &domain.RawTrade{
				MarketID:      meta.MarketID,
				TimestampMs:   ts + 250,
				Price:         round2(price),
				Size:          20,
				Side:          demoSide,
				TraderAddress: DemoTrader,
				TxHash:        fmt.Sprintf("0x%064x", p.seed<<40|uint64(i)),
			})
		}
	}

	// Exact duplicate of a delivered record
	dup := *trades[10]
	trades = append(trades, &dup)

	// Malformed records
	trades = append(trades,
		&domain.RawTrade{MarketID: meta.MarketID, TimestampMs: meta.StartTimeMs + 1000, Price: 1.4, Size: 10, Side: "buy", TraderAddress: DemoTrader},
		&domain.RawTrade{MarketID: meta.MarketID, TimestampMs: meta.StartTimeMs + 2000, Price: 0.5, Size: 10, Side: "buy"},
	)

	// Trading after resolution never enters the reconstructed series
	for i := int64(1); i <= 3; i++ {
		trades = append(trades, &domain.RawTrade{
			MarketID:      meta.MarketID,
			TimestampMs:   meta.ResolutionTimeMs + i*60_000,
			Price:         0.99,
			Size:          10,
			Side:          "buy",
			TraderAddress: LateTrader,
		})
	}

	return trades
}

// LoadFixtures populates stores with the demo markets and their trades.
func LoadFixtures(ctx context.Context, markets storage.MarketStore, trades storage.TradeStore) error {
	for _, m := range Markets() {
		if err := markets.Insert(ctx, m); err != nil {
			return fmt.Errorf("insert market %s: %w", m.MarketID, err)
		}
		if err := trades.InsertBulk(ctx, Trades(m)); err != nil {
			return fmt.Errorf("insert trades for %s: %w", m.MarketID, err)
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

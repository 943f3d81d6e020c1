package metrics

import (
	"polymarket-lab/internal/domain"
)

// ComputeTradeStats summarizes the normalized trade tape.
// An empty tape yields zero stats.
func ComputeTradeStats(events []*domain.TradeEvent) *domain.TradeStats {
	stats := &domain.TradeStats{TradeCount: len(events)}
	if len(events) == 0 {
		return stats
	}

	traders := make(map[string]struct{})
	sizes := make([]float64, len(events))

	for i, e := range events {
		traders[e.TraderAddress] = struct{}{}
		sizes[i] = e.Size
		stats.TotalNotional += e.Notional()

		if e.Size > stats.LargestTrade {
			stats.LargestTrade = e.Size
		}

		switch e.Side {
		case domain.SideBuy:
			stats.BuyCount++
			stats.BuyVolume += e.Size
		case domain.SideSell:
			stats.SellCount++
			stats.SellVolume += e.Size
		}
	}

	stats.UniqueTraders = len(traders)
	stats.MeanTradeSize = computeMean(sizes)
	stats.MedianTradeSize = Median(sizes)

	return stats
}

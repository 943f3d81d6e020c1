package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"polymarket-lab/internal/domain"
)

var (
	marketCSVHeader = []string{
		"market_id", "slug", "fill_policy", "interval_ms", "sample_count", "total_volume", "buy_volume", "sell_volume",
		"volatility", "outcome_balance", "consensus_outcome", "open_price", "final_price", "high_price", "low_price",
		"vwap", "price_p10", "price_median", "price_p90", "resolved", "winning_outcome",
	}
	seriesCSVHeader = []string{
		"timestamp_ms", "price", "source", "volume", "buy_volume", "sell_volume", "cumulative_volume", "trade_count",
	}
	strategyCSVHeader = []string{
		"market_id", "trader", "state", "position_status", "trade_count", "inventory", "avg_entry_price",
		"realized_pnl", "unrealized_pnl", "total_pnl", "mean_timing_advantage", "scored_fills",
		"exposure", "bias", "mean_gap_ms", "max_gap_ms", "burst_ratio", "phase_early", "phase_middle", "phase_late",
	}
)

// writeCSV renders header and rows with RFC 4180 quoting.
// Slugs and outcome labels come from market metadata and may contain commas or quotes.
func writeCSV(header []string, rows [][]string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	// Writes to a strings.Builder cannot fail
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatMetric renders an available metric with 6 decimals, unavailable as an empty cell.
func formatMetric(m domain.Metric) string {
	if !m.IsAvailable() {
		return ""
	}
	return formatFloat(m.Value)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// RenderMarketCSV renders the market report as a one-row CSV.
func RenderMarketCSV(r *domain.AnalyticsReport) string {
	row := []string{
		r.MarketID,
		r.Slug,
		r.FillPolicy.String(),
		strconv.FormatInt(r.IntervalMs, 10),
		strconv.Itoa(r.SampleCount),
		formatFloat(r.TotalVolume),
		formatFloat(r.BuyVolume),
		formatFloat(r.SellVolume),
		formatMetric(r.Volatility),
		formatMetric(r.OutcomeBalance),
		r.ConsensusOutcome,
		formatMetric(r.OpenPrice),
		formatMetric(r.FinalPrice),
		formatMetric(r.HighPrice),
		formatMetric(r.LowPrice),
		formatMetric(r.VWAP),
		formatMetric(r.PriceP10),
		formatMetric(r.PriceMedian),
		formatMetric(r.PriceP90),
		strconv.FormatBool(r.Resolved),
		r.WinningOutcome,
	}
	return writeCSV(marketCSVHeader, [][]string{row})
}

// RenderSeriesCSV renders one row per sample. Gap-marked prices are empty cells.
func RenderSeriesCSV(s *domain.ReconstructedSeries) string {
	if s == nil {
		return writeCSV(seriesCSVHeader, nil)
	}

	rows := make([][]string, 0, len(s.Points))
	for _, p := range s.Points {
		rows = append(rows, []string{
			strconv.FormatInt(p.TimestampMs, 10),
			formatOptional(p.Price),
			string(p.Source),
			formatFloat(p.Volume),
			formatFloat(p.BuyVolume),
			formatFloat(p.SellVolume),
			formatFloat(p.CumulativeVolume),
			strconv.Itoa(p.TradeCount),
		})
	}
	return writeCSV(seriesCSVHeader, rows)
}

// RenderStrategyCSV renders one row per trader.
func RenderStrategyCSV(reports []*domain.StrategyReport) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		var (
			status              domain.PositionStatus
			trades              int
			inventory, avgEntry float64
			realized, total     float64
			unrealized          string
		)
		if p := r.Position; p != nil {
			status = p.Status
			trades = p.TradeCount()
			inventory = p.Inventory
			avgEntry = p.AvgEntryPrice
			realized = p.RealizedPnL
			total = p.TotalPnL
			unrealized = formatOptional(p.UnrealizedPnL)
		}

		rows = append(rows, []string{
			r.MarketID,
			r.Trader,
			string(r.State),
			string(status),
			strconv.Itoa(trades),
			formatFloat(inventory),
			formatFloat(avgEntry),
			formatFloat(realized),
			unrealized,
			formatFloat(total),
			formatMetric(r.Timing.MeanAdvantage),
			strconv.Itoa(r.Timing.ScoredFills),
			string(r.Direction.Exposure),
			string(r.Direction.Bias),
			formatMetric(r.Activity.MeanGapMs),
			formatMetric(r.Activity.MaxGapMs),
			formatMetric(r.Activity.BurstRatio),
			strconv.Itoa(r.Phases.Early),
			strconv.Itoa(r.Phases.Middle),
			strconv.Itoa(r.Phases.Late),
		})
	}
	return writeCSV(strategyCSVHeader, rows)
}

package reporting

import (
	"fmt"
	"strings"
	"time"

	"polymarket-lab/internal/domain"
)

// markdownMetric renders a metric for a table cell.
func markdownMetric(m domain.Metric) string {
	if !m.IsAvailable() {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", m.Value)
}

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	title := r.Market.MarketID
	if r.Meta != nil && r.Meta.Slug != "" {
		title = r.Meta.Slug
	}
	sb.WriteString(fmt.Sprintf("# Market Report: %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	}
	if r.Meta != nil && r.Meta.Question != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", r.Meta.Question))
	}

	// Data Quality
	dq := r.DataQuality
	sb.WriteString("## Data Quality\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Events | %d |\n", dq.EventCount))
	sb.WriteString(fmt.Sprintf("| Duplicates Dropped | %d |\n", dq.DuplicateCount))
	sb.WriteString(fmt.Sprintf("| Rejected | %d |\n", dq.RejectedCount))
	if dq.EventSetHash != "" {
		sb.WriteString(fmt.Sprintf("| Event Set Version | `%s` |\n", dq.EventSetHash))
	}
	sb.WriteString("\n")

	if len(dq.RejectReasons) > 0 {
		sb.WriteString("### Rejection Reasons\n\n")
		for _, row := range dq.RejectReasons {
			sb.WriteString(fmt.Sprintf("- %s (%d)\n", row.Reason, row.Count))
		}
		sb.WriteString("\n")
	}

	// Market
	m := r.Market
	sb.WriteString("## Market Analytics\n\n")
	sb.WriteString(fmt.Sprintf("Sampling: %d ms, fill policy `%s`, %d samples\n\n", m.IntervalMs, m.FillPolicy, m.SampleCount))
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Volume | %.4f |\n", m.TotalVolume))
	sb.WriteString(fmt.Sprintf("| Buy Volume | %.4f |\n", m.BuyVolume))
	sb.WriteString(fmt.Sprintf("| Sell Volume | %.4f |\n", m.SellVolume))
	if m.PeakVolumeTimestampMs != nil {
		sb.WriteString(fmt.Sprintf("| Peak Volume Bucket (ms) | %d |\n", *m.PeakVolumeTimestampMs))
	}
	sb.WriteString(fmt.Sprintf("| Volatility | %s |\n", markdownMetric(m.Volatility)))
	sb.WriteString(fmt.Sprintf("| Open | %s |\n", markdownMetric(m.OpenPrice)))
	sb.WriteString(fmt.Sprintf("| Final | %s |\n", markdownMetric(m.FinalPrice)))
	sb.WriteString(fmt.Sprintf("| High | %s |\n", markdownMetric(m.HighPrice)))
	sb.WriteString(fmt.Sprintf("| Low | %s |\n", markdownMetric(m.LowPrice)))
	sb.WriteString(fmt.Sprintf("| VWAP | %s |\n", markdownMetric(m.VWAP)))
	sb.WriteString(fmt.Sprintf("| P10 / Median / P90 | %s / %s / %s |\n",
		markdownMetric(m.PriceP10), markdownMetric(m.PriceMedian), markdownMetric(m.PriceP90)))
	sb.WriteString(fmt.Sprintf("| Outcome Balance | %s |\n", markdownMetric(m.OutcomeBalance)))
	if m.ConsensusOutcome != "" {
		sb.WriteString(fmt.Sprintf("| Consensus | %s |\n", m.ConsensusOutcome))
	}
	if m.Resolved {
		sb.WriteString(fmt.Sprintf("| Winning Outcome | %s |\n", m.WinningOutcome))
	} else {
		sb.WriteString("| Winning Outcome | pending |\n")
	}
	sb.WriteString("\n")

	if !m.Volatility.IsAvailable() && m.Volatility.Reason != "" {
		sb.WriteString(fmt.Sprintf("Volatility unavailable: %s\n\n", m.Volatility.Reason))
	}

	if t := m.Trades; t != nil {
		sb.WriteString("### Trade Statistics\n\n")
		sb.WriteString("| Trades | Traders | Buys | Sells | Mean Size | Median Size | Largest | Notional |\n")
		sb.WriteString("|--------|---------|------|-------|-----------|-------------|---------|----------|\n")
		sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %.4f | %.4f | %.4f | %.4f |\n\n",
			t.TradeCount, t.UniqueTraders, t.BuyCount, t.SellCount,
			t.MeanTradeSize, t.MedianTradeSize, t.LargestTrade, t.TotalNotional))
	}

	// Strategies
	sb.WriteString("## Trader Strategies\n\n")
	if len(r.Strategies) > 0 {
		sb.WriteString("| Trader | State | Position | Trades | Inventory | Realized | Total P&L | Timing | Bias | Early/Mid/Late |\n")
		sb.WriteString("|--------|-------|----------|--------|-----------|----------|-----------|--------|------|----------------|\n")
		for _, s := range r.Strategies {
			var (
				status                     domain.PositionStatus
				trades                     int
				inventory, realized, total float64
			)
			if p := s.Position; p != nil {
				status, trades = p.Status, p.TradeCount()
				inventory, realized, total = p.Inventory, p.RealizedPnL, p.TotalPnL
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.4f | %.4f | %.4f | %s | %s | %d/%d/%d |\n",
				s.Trader, s.State, status, trades, inventory, realized, total,
				markdownMetric(s.Timing.MeanAdvantage), s.Direction.Bias,
				s.Phases.Early, s.Phases.Middle, s.Phases.Late))
		}
	} else {
		sb.WriteString("No trader reports available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

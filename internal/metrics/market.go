package metrics

import (
	"polymarket-lab/internal/domain"
)

// Outcome balance midpoint: a final price above it favors the primary outcome.
const balanceMidpoint = 0.5

// ComputeMarketReport computes market-level analytics from a reconstructed series.
//
// Every price metric is computed independently: one that lacks data is marked
// unavailable and the rest of the report is still returned. Only a nil meta fails.
// An empty series yields zero volume and unavailable price metrics.
func ComputeMarketReport(series *domain.ReconstructedSeries, meta *domain.MarketMetadata) (*domain.AnalyticsReport, error) {
	if meta == nil {
		return nil, domain.ErrNilMetadata
	}

	report := &domain.AnalyticsReport{
		MarketID:       meta.MarketID,
		Slug:           meta.Slug,
		Resolved:       meta.Resolved,
		WinningOutcome: meta.WinningOutcome,
	}
	if series != nil {
		report.FillPolicy = series.FillPolicy
		report.IntervalMs = series.IntervalMs
	}

	computeVolumeProfile(report, series)

	if vol, err := Volatility(series); err != nil {
		report.Volatility = domain.Unavailable(err)
	} else {
		report.Volatility = domain.Available(vol)
	}

	computePriceDistribution(report, series)
	computeOutcomeBalance(report, meta)

	return report, nil
}

// Volatility returns the population standard deviation of changes between
// consecutive defined sample prices. Undefined (gap-marked) samples are skipped.
// Returns *domain.InsufficientDataError when fewer than 2 defined samples exist.
func Volatility(series *domain.ReconstructedSeries) (float64, error) {
	prices := definedPrices(series)
	if len(prices) < 2 {
		return 0, &domain.InsufficientDataError{Metric: "volatility", Required: 2, Got: len(prices)}
	}

	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	return computePopulationStddev(changes, computeMean(changes)), nil
}

// computeVolumeProfile fills total, per-bucket and peak volume.
func computeVolumeProfile(report *domain.AnalyticsReport, series *domain.ReconstructedSeries) {
	if series.IsEmpty() {
		return
	}

	report.SampleCount = len(series.Points)
	report.VolumeByBucket = make([]domain.VolumeBucket, len(series.Points))

	peak := 0.0
	for i, p := range series.Points {
		report.VolumeByBucket[i] = domain.VolumeBucket{
			TimestampMs: p.TimestampMs,
			Volume:      p.Volume,
			BuyVolume:   p.BuyVolume,
			SellVolume:  p.SellVolume,
		}
		report.TotalVolume += p.Volume
		report.BuyVolume += p.BuyVolume
		report.SellVolume += p.SellVolume

		// First bucket wins ties
		if p.Volume > peak {
			peak = p.Volume
			ts := p.TimestampMs
			report.PeakVolumeTimestampMs = &ts
		}
	}
}

// computePriceDistribution fills open/final/high/low, VWAP and percentiles.
func computePriceDistribution(report *domain.AnalyticsReport, series *domain.ReconstructedSeries) {
	prices := definedPrices(series)
	if len(prices) == 0 {
		missing := domain.Unavailable(&domain.InsufficientDataError{Metric: "price", Required: 1, Got: 0})
		report.OpenPrice = missing
		report.FinalPrice = missing
		report.HighPrice = missing
		report.LowPrice = missing
		report.VWAP = missing
		report.PriceP10 = missing
		report.PriceMedian = missing
		report.PriceP90 = missing
		return
	}

	sorted := sortedCopy(prices)
	report.OpenPrice = domain.Available(prices[0])
	report.FinalPrice = domain.Available(prices[len(prices)-1])
	report.LowPrice = domain.Available(sorted[0])
	report.HighPrice = domain.Available(sorted[len(sorted)-1])
	report.PriceP10 = domain.Available(computePercentile(sorted, 0.10))
	report.PriceMedian = domain.Available(computePercentile(sorted, 0.50))
	report.PriceP90 = domain.Available(computePercentile(sorted, 0.90))

	// Bucket prices are already VWAPs, so weighting them by bucket volume gives the series VWAP
	notional, volume := 0.0, 0.0
	for _, p := range series.Points {
		if p.Source == domain.SourceObserved && p.HasPrice() {
			notional += *p.Price * p.Volume
			volume += p.Volume
		}
	}
	if volume > 0 {
		report.VWAP = domain.Available(notional / volume)
	} else {
		report.VWAP = domain.Unavailable(&domain.InsufficientDataError{Metric: "vwap", Required: 1, Got: 0})
	}
}

// computeOutcomeBalance sets the signed distance of the final price from 0.5
// and the outcome it favors.
func computeOutcomeBalance(report *domain.AnalyticsReport, meta *domain.MarketMetadata) {
	if !report.FinalPrice.IsAvailable() {
		report.OutcomeBalance = report.FinalPrice
		return
	}

	balance := report.FinalPrice.Value - balanceMidpoint
	report.OutcomeBalance = domain.Available(balance)

	switch {
	case balance > 0:
		report.ConsensusOutcome = meta.PrimaryOutcome()
	case balance < 0:
		report.ConsensusOutcome = meta.SecondaryOutcome()
	default:
		report.ConsensusOutcome = domain.ConsensusNeutral
	}
}

// definedPrices returns the defined sample prices in series order.
func definedPrices(series *domain.ReconstructedSeries) []float64 {
	if series.IsEmpty() {
		return nil
	}
	prices := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		if p.HasPrice() {
			prices = append(prices, *p.Price)
		}
	}
	return prices
}

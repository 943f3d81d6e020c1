// Package attribution folds a trader's fills into a position using
// weighted-average cost and signed inventory.
package attribution

import (
	"strings"

	"github.com/shopspring/decimal"

	"polymarket-lab/internal/domain"
)

// NormalizeTrader canonicalizes a trader address the way the normalizer does.
func NormalizeTrader(trader string) string {
	return strings.ToLower(strings.TrimSpace(trader))
}

// BuildPosition filters events to trader and folds them into a TraderPosition.
//
// Inventory is signed in primary-outcome units. A fill in the direction of the
// position (or from flat) moves the weighted-average entry; a fill against it
// realizes P&L on the closed quantity at the average entry. A fill that crosses
// zero closes the old position and opens the remainder at the fill price.
//
// A trader with no fills gets an empty position, not an error. Open inventory
// on a resolved market is marked at 1.0 or 0.0; on an unresolved market the
// position stays open and no unrealized P&L is reported.
func BuildPosition(events []*domain.TradeEvent, trader string, meta *domain.MarketMetadata) (*domain.TraderPosition, error) {
	if meta == nil {
		return nil, domain.ErrNilMetadata
	}
	trader = NormalizeTrader(trader)
	if trader == "" {
		return nil, domain.ErrEmptyTrader
	}

	pos := &domain.TraderPosition{
		MarketID: meta.MarketID,
		Trader:   trader,
		Status:   domain.PositionEmpty,
	}

	var (
		inventory = decimal.Zero
		avgEntry  = decimal.Zero
		realized  = decimal.Zero
		buyVol    = decimal.Zero
		sellVol   = decimal.Zero
	)

	for _, e := range events {
		if e.TraderAddress != trader {
			continue
		}

		price := decimal.NewFromFloat(e.Price)
		size := decimal.NewFromFloat(e.Size)
		qty := size
		if e.Side == domain.SideSell {
			qty = size.Neg()
			sellVol = sellVol.Add(size)
		} else {
			buyVol = buyVol.Add(size)
		}

		fillPnL := decimal.Zero
		switch {
		case inventory.IsZero() || inventory.Sign() == qty.Sign():
			// Extend: new average = (|inv|*avg + size*price) / (|inv| + size)
			held := inventory.Abs()
			avgEntry = held.Mul(avgEntry).Add(size.Mul(price)).Div(held.Add(size))
			inventory = inventory.Add(qty)

		default:
			// Reduce, close or flip
			closed := decimal.Min(size, inventory.Abs())
			direction := decimal.NewFromInt(int64(inventory.Sign()))
			fillPnL = closed.Mul(price.Sub(avgEntry)).Mul(direction)
			realized = realized.Add(fillPnL)

			inventory = inventory.Add(qty)
			switch {
			case inventory.IsZero():
				avgEntry = decimal.Zero
			case inventory.Sign() == qty.Sign():
				avgEntry = price
			}
		}

		if pos.IsEmpty() {
			pos.FirstTradeMs = e.TimestampMs
		}
		pos.LastTradeMs = e.TimestampMs
		pos.Fills = append(pos.Fills, &domain.Fill{
			TimestampMs:    e.TimestampMs,
			Side:           e.Side,
			Price:          e.Price,
			Size:           e.Size,
			InventoryAfter: inventory.InexactFloat64(),
			AvgEntryAfter:  avgEntry.InexactFloat64(),
			RealizedPnL:    fillPnL.InexactFloat64(),
		})
	}

	pos.Inventory = inventory.InexactFloat64()
	pos.AvgEntryPrice = avgEntry.InexactFloat64()
	pos.RealizedPnL = realized.InexactFloat64()
	pos.BuyVolume = buyVol.InexactFloat64()
	pos.SellVolume = sellVol.InexactFloat64()
	pos.TotalPnL = pos.RealizedPnL

	switch {
	case pos.IsEmpty():
		return pos, nil
	case inventory.IsZero():
		pos.Status = domain.PositionFlat
		return pos, nil
	}

	resolution, err := meta.ResolutionPrice()
	if err != nil {
		pos.Status = domain.PositionOpen
		return pos, nil
	}

	unrealized := decimal.NewFromFloat(resolution).Sub(avgEntry).Mul(inventory)
	resolutionPrice := resolution
	unrealizedPnL := unrealized.InexactFloat64()

	pos.Status = domain.PositionResolved
	pos.ResolutionPrice = &resolutionPrice
	pos.UnrealizedPnL = &unrealizedPnL
	pos.TotalPnL = realized.Add(unrealized).InexactFloat64()

	return pos, nil
}

package domain

// PositionStatus summarizes the lifecycle state of a TraderPosition.
type PositionStatus string

// Position status constants
const (
	PositionEmpty    PositionStatus = "empty"    // no fills for this market
	PositionFlat     PositionStatus = "flat"     // fills exist, inventory is zero
	PositionOpen     PositionStatus = "open"     // inventory held, market not resolved
	PositionResolved PositionStatus = "resolved" // inventory marked to resolution
)

// Fill is one of the trader's trades with the running state after it.
type Fill struct {
	TimestampMs    int64
	Side           Side
	Price          float64
	Size           float64
	InventoryAfter float64 // signed primary-outcome inventory after this fill
	AvgEntryAfter  float64 // weighted-average entry after this fill, 0 when flat
	RealizedPnL    float64 // P&L realized by this fill
}

// TraderPosition is a trader's derived state in one market.
// Rebuilt from the full event snapshot on every query.
type TraderPosition struct {
	MarketID      string
	Trader        string
	Fills         []*Fill
	Inventory     float64 // signed: positive long primary outcome, negative short
	AvgEntryPrice float64 // weighted-average cost of open inventory
	RealizedPnL   float64
	Status        PositionStatus

	// Mark-to-resolution, nil unless Status == PositionResolved
	ResolutionPrice *float64
	UnrealizedPnL   *float64

	TotalPnL     float64 // realized + unrealized (when marked)
	BuyVolume    float64
	SellVolume   float64
	FirstTradeMs int64
	LastTradeMs  int64
}

// TradeCount returns the number of fills.
func (p *TraderPosition) TradeCount() int {
	return len(p.Fills)
}

// IsEmpty reports whether the trader has no fills.
func (p *TraderPosition) IsEmpty() bool {
	return len(p.Fills) == 0
}

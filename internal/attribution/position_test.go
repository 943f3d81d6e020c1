package attribution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polymarket-lab/internal/domain"
)

func meta(resolved bool, winner string) *domain.MarketMetadata {
	return &domain.MarketMetadata{
		MarketID:       "m1",
		Outcomes:       [2]string{domain.OutcomeUp, domain.OutcomeDown},
		TickSize:       0.01,
		Resolved:       resolved,
		WinningOutcome: winner,
	}
}

func fill(ts int64, trader string, price, size float64, side domain.Side) *domain.TradeEvent {
	return &domain.TradeEvent{
		MarketID:      "m1",
		TimestampMs:   ts,
		Price:         price,
		Size:          size,
		Side:          side,
		TraderAddress: trader,
	}
}

// Fully closed before resolution: realized P&L is independent of the outcome.
func TestBuildPosition_ClosedBeforeResolution(t *testing.T) {
	events := []*domain.TradeEvent{
		fill(0, "0xx", 0.40, 10, domain.SideBuy),
		fill(5, "0xx", 0.60, 10, domain.SideSell),
	}

	pos, err := BuildPosition(events, "0xX", meta(true, domain.OutcomeDown))
	require.NoError(t, err)

	assert.Equal(t, domain.PositionFlat, pos.Status)
	assert.Equal(t, 0.0, pos.Inventory)
	assert.Equal(t, 2.0, pos.RealizedPnL)
	assert.Equal(t, 2.0, pos.TotalPnL)
	assert.Nil(t, pos.UnrealizedPnL)
	require.Len(t, pos.Fills, 2)
	assert.Equal(t, 0.0, pos.Fills[1].InventoryAfter)
	assert.Equal(t, 2.0, pos.Fills[1].RealizedPnL)
}

// Open inventory marked to a winning resolution.
func TestBuildPosition_MarkedToResolution(t *testing.T) {
	events := []*domain.TradeEvent{fill(0, "0xy", 0.50, 5, domain.SideBuy)}

	pos, err := BuildPosition(events, "0xy", meta(true, domain.OutcomeUp))
	require.NoError(t, err)

	assert.Equal(t, domain.PositionResolved, pos.Status)
	assert.Equal(t, 5.0, pos.Inventory)
	assert.Equal(t, 0.5, pos.AvgEntryPrice)
	require.NotNil(t, pos.ResolutionPrice)
	assert.Equal(t, 1.0, *pos.ResolutionPrice)
	require.NotNil(t, pos.UnrealizedPnL)
	assert.Equal(t, 2.5, *pos.UnrealizedPnL)
	assert.Equal(t, 2.5, pos.TotalPnL)
}

func TestBuildPosition_NoFills(t *testing.T) {
	events := []*domain.TradeEvent{fill(0, "0xother", 0.5, 1, domain.SideBuy)}

	pos, err := BuildPosition(events, "0xnobody", meta(true, domain.OutcomeUp))
	require.NoError(t, err)

	assert.Equal(t, domain.PositionEmpty, pos.Status)
	assert.True(t, pos.IsEmpty())
	assert.Equal(t, 0.0, pos.Inventory)
	assert.Equal(t, 0.0, pos.TotalPnL)

	pos, err = BuildPosition(nil, "0xnobody", meta(false, ""))
	require.NoError(t, err)
	assert.True(t, pos.IsEmpty())
}

func TestBuildPosition_FailFast(t *testing.T) {
	_, err := BuildPosition(nil, "0xa", nil)
	assert.True(t, errors.Is(err, domain.ErrNilMetadata))

	_, err = BuildPosition(nil, "   ", meta(false, ""))
	assert.True(t, errors.Is(err, domain.ErrEmptyTrader))
}

func TestBuildPosition_WeightedAverageEntry(t *testing.T) {
	events := []*domain.TradeEvent{
		fill(0, "0xa", 0.40, 10, domain.SideBuy),
		fill(1, "0xa", 0.70, 20, domain.SideBuy),
		fill(2, "0xa", 0.80, 15, domain.SideSell),
	}

	pos, err := BuildPosition(events, "0xa", meta(false, ""))
	require.NoError(t, err)

	// avg = (0.4*10 + 0.7*20) / 30 = 0.6; sell 15 realizes 15 * 0.2 = 3
	assert.Equal(t, domain.PositionOpen, pos.Status)
	assert.Equal(t, 15.0, pos.Inventory)
	assert.Equal(t, 0.6, pos.AvgEntryPrice)
	assert.Equal(t, 3.0, pos.RealizedPnL)
	assert.Nil(t, pos.UnrealizedPnL, "unresolved market is not marked")
	assert.Equal(t, 30.0, pos.BuyVolume)
	assert.Equal(t, 15.0, pos.SellVolume)
	assert.Equal(t, int64(0), pos.FirstTradeMs)
	assert.Equal(t, int64(2), pos.LastTradeMs)
}

func TestBuildPosition_FlipThroughZero(t *testing.T) {
	events := []*domain.TradeEvent{
		fill(0, "0xa", 0.40, 10, domain.SideBuy),
		fill(1, "0xa", 0.50, 25, domain.SideSell),
	}

	pos, err := BuildPosition(events, "0xa", meta(true, domain.OutcomeDown))
	require.NoError(t, err)

	// Close 10 long at +0.1 each, then short 15 opened at 0.50
	assert.Equal(t, 1.0, pos.RealizedPnL)
	assert.Equal(t, -15.0, pos.Inventory)
	assert.Equal(t, 0.5, pos.AvgEntryPrice)

	// Resolves Down: primary marks at 0, short gains 0.5 * 15
	require.NotNil(t, pos.UnrealizedPnL)
	assert.Equal(t, 7.5, *pos.UnrealizedPnL)
	assert.Equal(t, 8.5, pos.TotalPnL)
}

func TestBuildPosition_ShortLosesOnWinningPrimary(t *testing.T) {
	events := []*domain.TradeEvent{fill(0, "0xa", 0.30, 10, domain.SideSell)}

	pos, err := BuildPosition(events, "0xa", meta(true, domain.OutcomeUp))
	require.NoError(t, err)

	assert.Equal(t, -10.0, pos.Inventory)
	require.NotNil(t, pos.UnrealizedPnL)
	assert.Equal(t, -7.0, *pos.UnrealizedPnL)
}

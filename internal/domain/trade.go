package domain

// Side is the direction of a fill from the trader's perspective.
type Side string

// Trade side constants
const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is a valid value.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Sign returns +1 for buys and -1 for sells.
func (s Side) Sign() float64 {
	if s == SideBuy {
		return 1
	}
	return -1
}

// RawTrade is a trade record as delivered by the data-fetch collaborator.
// Nothing about it is trusted: it may be duplicated, out of order or malformed.
type RawTrade struct {
	MarketID      string  `json:"market_id"`
	TimestampMs   int64   `json:"timestamp_ms" validate:"gte=0"`
	Price         float64 `json:"price" validate:"gte=0,lte=1"`
	Size          float64 `json:"size" validate:"gt=0"`
	Side          string  `json:"side" validate:"required"`
	Outcome       string  `json:"outcome"` // outcome leg traded; empty means primary
	TraderAddress string  `json:"trader_address" validate:"required"`
	TxHash        string  `json:"tx_hash"`
}

// TradeEvent is a validated, canonical trade.
// Price is quoted for the market's primary outcome and rounded to tick size.
type TradeEvent struct {
	EventID       string  // SHA256 of the canonical event fields
	MarketID      string  // market identifier
	TimestampMs   int64   // Unix timestamp in milliseconds
	Price         float64 // primary-outcome price in [0,1]
	Size          float64 // positive quantity
	Side          Side    // buy | sell, primary-outcome terms
	TraderAddress string  // lower-cased opaque identifier
	TxHash        string  // source transaction hash (not part of the dedup key)
}

// ToRaw converts the event back into raw form on the primary outcome leg.
func (e *TradeEvent) ToRaw() *RawTrade {
	return &RawTrade{
		MarketID:      e.MarketID,
		TimestampMs:   e.TimestampMs,
		Price:         e.Price,
		Size:          e.Size,
		Side:          e.Side.String(),
		TraderAddress: e.TraderAddress,
		TxHash:        e.TxHash,
	}
}

// Notional returns price * size.
func (e *TradeEvent) Notional() float64 {
	return e.Price * e.Size
}

// Rejection records a raw trade dropped during normalization.
type Rejection struct {
	Index int       // position in the input batch
	Trade *RawTrade // the offending record (nil if the input entry was nil)
	Err   error     // *ValidationError
}

// Reason returns the human-readable rejection reason.
func (r *Rejection) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

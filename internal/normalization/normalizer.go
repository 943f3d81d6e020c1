package normalization

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/idhash"
)

// NormalizeResult is the output of a normalization pass.
type NormalizeResult struct {
	Events     []*domain.TradeEvent // deduplicated, stable-sorted by timestamp
	Rejected   []*domain.Rejection  // malformed input records with reasons
	Duplicates int                  // exact duplicates dropped
}

// Normalizer validates and canonicalizes raw trades.
// Safe for concurrent use.
type Normalizer struct {
	validate *validator.Validate
}

// NewNormalizer creates a Normalizer with the trade validation rules registered.
func NewNormalizer() *Normalizer {
	v := validator.New()

	// Report json field names in rejection reasons
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Normalizer{validate: v}
}

// Normalize turns a raw batch into canonical TradeEvents.
//
// Per record:
//  1. struct validation (trader address, price in [0,1], size > 0, side present)
//  2. side must be buy or sell, outcome must be one of meta.Outcomes
//  3. secondary-outcome trades are rewritten to the primary leg: side flipped, price 1-p
//  4. price rounded to meta.TickSize, trader address trimmed and lower-cased
//
// Exact duplicates on the raw (timestamp, trader, price, size, side, outcome) are
// dropped, keeping the first occurrence. The key is taken before steps 3 and 4, so
// trades that only coincide after the leg flip or tick rounding are both kept. The result is stable-sorted by timestamp.
// Malformed records never fail the batch; only a nil meta does.
func (n *Normalizer) Normalize(raw []*domain.RawTrade, meta *domain.MarketMetadata) (*NormalizeResult, error) {
	if meta == nil {
		return nil, domain.ErrNilMetadata
	}

	result := &NormalizeResult{
		Events: make([]*domain.TradeEvent, 0, len(raw)),
	}
	seen := make(map[string]struct{}, len(raw))

	for i, r := range raw {
		event, key, err := n.canonicalize(r, meta)
		if err != nil {
			result.Rejected = append(result.Rejected, &domain.Rejection{Index: i, Trade: r, Err: err})
			continue
		}

		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		result.Events = append(result.Events, event)
	}

	SortEvents(result.Events)
	return result, nil
}

// canonicalize validates one record and converts it to a TradeEvent.
// It also returns the record's raw dedup key.
func (n *Normalizer) canonicalize(r *domain.RawTrade, meta *domain.MarketMetadata) (*domain.TradeEvent, string, error) {
	if r == nil {
		return nil, "", &domain.ValidationError{Reason: "nil record"}
	}

	if err := n.validate.Struct(r); err != nil {
		return nil, "", toValidationError(err)
	}

	if math.IsInf(r.Size, 0) {
		return nil, "", &domain.ValidationError{Field: "size", Reason: "must be finite"}
	}

	trader := strings.ToLower(strings.TrimSpace(r.TraderAddress))
	if trader == "" {
		return nil, "", &domain.ValidationError{Field: "trader_address", Reason: "is required"}
	}

	side, ok := parseSide(r.Side)
	if !ok {
		return nil, "", &domain.ValidationError{Field: "side", Reason: fmt.Sprintf("must be buy or sell, got %q", r.Side)}
	}

	if r.MarketID != "" && r.MarketID != meta.MarketID {
		return nil, "", &domain.ValidationError{Field: "market_id", Reason: fmt.Sprintf("belongs to market %q", r.MarketID)}
	}

	leg := meta.OutcomeIndex(r.Outcome)
	if leg < 0 {
		return nil, "", &domain.ValidationError{Field: "outcome", Reason: fmt.Sprintf("unknown outcome %q", r.Outcome)}
	}

	key := idhash.ComputeRawTradeKey(meta.MarketID, r.TimestampMs, trader, r.Price, r.Size, side.String(), meta.Outcomes[leg])

	price := decimal.NewFromFloat(r.Price)
	if leg == 1 {
		// Long the secondary leg at q is payoff-equivalent to short the primary at 1-q
		price = decimal.NewFromInt(1).Sub(price)
		side = side.Opposite()
	}
	canonicalPrice := clampUnit(roundToTick(price, meta.TickSize).InexactFloat64())

	return &domain.TradeEvent{
		EventID:       idhash.ComputeEventID(meta.MarketID, r.TimestampMs, trader, canonicalPrice, r.Size, side.String()),
		MarketID:      meta.MarketID,
		TimestampMs:   r.TimestampMs,
		Price:         canonicalPrice,
		Size:          r.Size,
		Side:          side,
		TraderAddress: trader,
		TxHash:        r.TxHash,
	}, key, nil
}

// parseSide accepts buy/sell in any case.
func parseSide(s string) (domain.Side, bool) {
	side := domain.Side(strings.ToLower(strings.TrimSpace(s)))
	return side, side.IsValid()
}

// roundToTick rounds price to the nearest multiple of tick. A non-positive tick disables rounding.
func roundToTick(price decimal.Decimal, tick float64) decimal.Decimal {
	if tick <= 0 {
		return price
	}
	t := decimal.NewFromFloat(tick)
	return price.Div(t).Round(0).Mul(t)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// toValidationError converts the first validator failure into a ValidationError.
func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Reason: err.Error()}
	}

	fe := fieldErrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gte":
		reason = "must be >= " + fe.Param()
	case "lte":
		reason = "must be <= " + fe.Param()
	case "gt":
		reason = "must be > " + fe.Param()
	default:
		reason = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &domain.ValidationError{Field: fe.Field(), Reason: reason}
}

package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(market_id|timestamp_ms|trader|price|size|side)
// Fields are the canonical event: primary leg, tick-rounded price.
// Returns hex-encoded hash (64 characters).
func ComputeEventID(
	marketID string,
	timestampMs int64,
	trader string,
	price float64,
	size float64,
	side string,
) string {
	return hashFields(
		marketID,
		strconv.FormatInt(timestampMs, 10),
		trader,
		formatFloat(price),
		formatFloat(size),
		side,
	)
}

// ComputeRawTradeKey computes the deduplication key of a trade as reported.
// Formula: SHA256(market_id|timestamp_ms|trader|price|size|side|outcome)
// Price and side are taken before any leg flip or tick rounding, so two trades
// share a key only if they were delivered with identical fields.
func ComputeRawTradeKey(
	marketID string,
	timestampMs int64,
	trader string,
	price float64,
	size float64,
	side string,
	outcome string,
) string {
	return hashFields(
		marketID,
		strconv.FormatInt(timestampMs, 10),
		trader,
		formatFloat(price),
		formatFloat(size),
		side,
		outcome,
	)
}

// formatFloat uses the shortest exact representation, so keys differ whenever values do.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func hashFields(fields ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(hash[:])
}

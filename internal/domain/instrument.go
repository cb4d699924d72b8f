package domain

import "time"

type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

func (s TradeSide) Valid() bool { return s == TradeSideBuy || s == TradeSideSell }

// Instrument is a directional quote definition for a currency pair.
// Identity (ID, pair, side) is immutable; Name and Slug are display metadata
// and also feed classification matching.
type Instrument struct {
	ID        string
	GroupID   string
	Name      string
	Slug      string
	BaseCode  string
	QuoteCode string
	Side      TradeSide
	CreatedAt time.Time
}

// Pair returns the unordered currency pair as a two-element set lookup helper.
func (i Instrument) Pair() (string, string) {
	return normalizeCode(i.BaseCode), normalizeCode(i.QuoteCode)
}

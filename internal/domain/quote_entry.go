package domain

import "time"

// QuoteEntry is one immutable price observation for an instrument.
// Dual-tariff instruments carry the cash/account sub-prices instead of a
// single meaningful Price; Notes holds out-of-band signals such as
// "call for price".
type QuoteEntry struct {
	ID           string
	InstrumentID string
	Price        float64
	CashPrice    *float64
	AccountPrice *float64
	Notes        string
	CreatedAt    time.Time
}

// AccountValue returns the account-tariff sub-price when present, else Price.
func (e QuoteEntry) AccountValue() float64 {
	if e.AccountPrice != nil {
		return *e.AccountPrice
	}
	return e.Price
}

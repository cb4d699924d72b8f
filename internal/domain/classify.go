package domain

import (
	"fmt"
	"strings"
)

// RateKey is one of the four canonical keys accepted by the external rate API.
type RateKey string

const (
	RateKeyGBPBuy   RateKey = "GBP_BUY"
	RateKeyGBPSell  RateKey = "GBP_SELL"
	RateKeyUSDTBuy  RateKey = "USDT_BUY"
	RateKeyUSDTSell RateKey = "USDT_SELL"
)

// RateKeys lists every canonical key in a stable order.
var RateKeys = []RateKey{RateKeyGBPBuy, RateKeyGBPSell, RateKeyUSDTBuy, RateKeyUSDTSell}

const (
	codeGBP  = "GBP"
	codeUSDT = "USDT"
)

// localCodes are the accepted aliases for the local currency.
var localCodes = map[string]bool{"IRR": true, "IRT": true}

// accountAliases signal the account-tariff variant of a pound instrument.
// Cash-tariff variants must not reach the external API.
var accountAliases = []string{"account", "حسابی", "hesabi"}

// poundAliases guard against tether instruments mislabeled as pound ones.
var poundAliases = []string{"gbp", "pound", "پوند"}

// RatedQuote pairs an instrument with the entry chosen for the snapshot.
type RatedQuote struct {
	Instrument Instrument
	Entry      QuoteEntry
}

// RateSet is the classifier output: at most one value per canonical key plus
// a human-readable reason for everything that was not mapped.
type RateSet struct {
	Rates   map[RateKey]float64
	Skipped []string
}

// ClassifyRates maps snapshot pairs onto the canonical external rate keys.
//
// The decision depends only on the unordered currency pair, the trade side
// and the display identifiers, never on price values or history. Rules in
// order: invalid side skips; the GBP/USDT cross always skips; GBP against the
// local currency is accepted only for account-tariff variants; USDT against
// the local currency is accepted unless the name carries pound keywords; any
// other pair skips. Later duplicates overwrite earlier ones.
func ClassifyRates(items []RatedQuote) RateSet {
	out := RateSet{Rates: make(map[RateKey]float64, len(RateKeys))}
	for _, it := range items {
		key, value, reason := classifyOne(it.Instrument, it.Entry)
		if key == "" {
			out.Skipped = append(out.Skipped, reason)
			continue
		}
		out.Rates[key] = value
	}
	return out
}

func classifyOne(in Instrument, entry QuoteEntry) (RateKey, float64, string) {
	base, quote := in.Pair()
	side := TradeSide(strings.ToLower(string(in.Side)))
	label := fmt.Sprintf("%s/%s %s - %q", base, quote, side, in.Name)

	if !side.Valid() {
		return "", 0, "invalid trade side: " + label
	}

	switch {
	case pairIs(base, quote, codeGBP, codeUSDT):
		return "", 0, "GBP/USDT cross never synced: " + label

	case pairIsLocal(base, quote, codeGBP):
		if !matchesAlias(in, accountAliases) {
			return "", 0, "GBP cash price skipped (only account prices sync): " + label
		}
		return sideKey(RateKeyGBPBuy, RateKeyGBPSell, side), entry.AccountValue(), ""

	case pairIsLocal(base, quote, codeUSDT):
		if matchesAlias(in, poundAliases) {
			return "", 0, "USDT instrument carries pound keywords, skipped: " + label
		}
		return sideKey(RateKeyUSDTBuy, RateKeyUSDTSell, side), entry.Price, ""

	default:
		return "", 0, "pair not accepted: " + label
	}
}

func sideKey(buy, sell RateKey, side TradeSide) RateKey {
	if side == TradeSideBuy {
		return buy
	}
	return sell
}

func pairIs(a, b, x, y string) bool {
	return (a == x && b == y) || (a == y && b == x)
}

func pairIsLocal(a, b, foreign string) bool {
	return (a == foreign && localCodes[b]) || (b == foreign && localCodes[a])
}

func matchesAlias(in Instrument, aliases []string) bool {
	haystack := normalizeIdentifier(in.Name) + " " + normalizeIdentifier(in.Slug)
	for _, alias := range aliases {
		if strings.Contains(haystack, normalizeIdentifier(alias)) {
			return true
		}
	}
	return false
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeIdentifier lowers free-text identifiers and strips the separators
// seen in real data (dashes, underscores, zero-width joiners).
func normalizeIdentifier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer("-", "", "_", "", "‌", "", "‏", "")
	return replacer.Replace(s)
}

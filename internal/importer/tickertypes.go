package importer

import "strings"

// TickerTypes selects which kinds of instrument an action covers.
// Several may be set at once.
type TickerTypes struct {
	Stocks     bool
	Indexes    bool
	Currencies bool
	Crypto     bool
}

// ParseTickerTypes resolves detail tokens case-insensitively:
// s/stock/stocks, i/index/indexes, c/currency/currencies, x/crypto/cryptos.
// Unrecognized tokens are ignored.
func ParseTickerTypes(tokens []string) TickerTypes {
	var t TickerTypes
	for _, tok := range tokens {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "s", "stock", "stocks":
			t.Stocks = true
		case "i", "index", "indexes":
			t.Indexes = true
		case "c", "currency", "currencies":
			t.Currencies = true
		case "x", "crypto", "cryptos":
			t.Crypto = true
		}
	}
	return t
}

// Any reports whether at least one type is selected.
func (t TickerTypes) Any() bool {
	return t.Stocks || t.Indexes || t.Currencies || t.Crypto
}

// Matches reports whether code belongs to a selected type. Stocks carry no
// namespace; the others use Polygon's "I:", "C:" and "X:" prefixes.
func (t TickerTypes) Matches(code string) bool {
	switch {
	case t.Stocks && !strings.Contains(code, ":"):
		return true
	case t.Indexes && strings.HasPrefix(code, "I:"):
		return true
	case t.Currencies && strings.HasPrefix(code, "C:"):
		return true
	case t.Crypto && strings.HasPrefix(code, "X:"):
		return true
	}
	return false
}

// Filter returns the codes that match, preserving order.
func (t TickerTypes) Filter(codes []string) []string {
	var out []string
	for _, c := range codes {
		if t.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

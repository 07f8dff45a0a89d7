package valueobjects

import "strings"

// Currency is an upper-case asset symbol such as ETH or USDC.
type Currency string

func NewCurrency(symbol string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(symbol)))
}

func (c Currency) String() string {
	return string(c)
}

// Matches compares against a raw ledger symbol, ignoring case.
func (c Currency) Matches(symbol string) bool {
	return strings.EqualFold(string(c), strings.TrimSpace(symbol))
}

package payment

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a transfer reported by the ledger. TokenDecimal is nil for
// native-asset transfers.
type Transaction struct {
	Hash            string
	From            string
	To              string
	Value           *big.Int
	Timestamp       time.Time
	BlockNumber     uint64
	TokenSymbol     string
	TokenDecimal    *int32
	ContractAddress string
}

func (t Transaction) IsToken() bool {
	return t.TokenDecimal != nil
}

// Amount converts the raw value to whole units. nativeDecimals is used only
// when the transfer carries no token decimals.
func (t Transaction) Amount(nativeDecimals int32) decimal.Decimal {
	if t.Value == nil {
		return decimal.Zero
	}
	decimals := nativeDecimals
	if t.TokenDecimal != nil {
		decimals = *t.TokenDecimal
	}
	return decimal.NewFromBigInt(t.Value, -decimals)
}

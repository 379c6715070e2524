package handlers

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// fromUint64 converts an on-chain unsigned 64-bit amount to a decimal
// without the sign-extension risk of routing it through int64 first.
func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

package codec

import (
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/shopspring/decimal"
)

// decimalFromUint64 lifts a u64 wire value into an arbitrary-precision
// decimal so handlers can do money-safe arithmetic without worrying
// about overflow on intermediate multiplications.
func decimalFromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// decimalFromUint128 lifts a borsh u128 (k-values, shortfall) into a
// decimal. u128 has no lossless native Go integer type, which is exactly
// why these fields are persisted as NUMERIC rather than bigint.
func decimalFromUint128(v bin.Uint128) decimal.Decimal {
	return decimal.NewFromBigInt(v.BigInt(), 0)
}

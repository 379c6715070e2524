package codec

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// PairAccount is the on-chain state of one market, as read directly from
// account data during the GPA backfill pass (pkg/ingest) rather than
// decoded off an instruction stream.
type PairAccount struct {
	TokenA           solana.PublicKey
	TokenB           solana.PublicKey
	TokenADecimals   uint8
	TokenBDecimals   uint8
	Config           solana.PublicKey
	RateModel        solana.PublicKey
	SwapFeeBps       uint16
	HalfLife         uint64
	PoolDeployerFeeBps uint16
	ReserveA         uint64
	ReserveB         uint64
	LastPriceAEma    uint64
	LastPriceBEma    uint64
	LastUpdate       int64
	LastRateA        uint64
	LastRateB        uint64
	TotalDebtA       uint64
	TotalDebtB       uint64
	TotalDebtAShares uint64
	TotalDebtBShares uint64
	TotalSupply      uint64
	TotalCollateralA uint64
	TotalCollateralB uint64
	Bump             uint8
}

var pairAccountDiscriminator = mustDiscriminator("0x554831b0b6e48d52")

// LeveragedPositionAccount is the on-chain state of one leveraged
// position account.
type LeveragedPositionAccount struct {
	Owner                   solana.PublicKey
	Pair                    solana.PublicKey
	TokenAMultiplier        uint16
	TokenBMultiplier        uint16
	TokenAAppliedMinCfBps   uint16
	TokenBAppliedMinCfBps   uint16
	CollateralA             uint64
	CollateralB             uint64
	DebtAShares             uint64
	DebtBShares             uint64
	Bump                    uint8
}

var leveragedPositionAccountDiscriminator = mustDiscriminator("0xd4915845e3a7a2a5")

// DecodeAccount decodes a raw account's data against the known account
// discriminators (distinct from the instruction/event discriminator
// space in registry.go — account snapshots are not routed through
// Decode). It returns ErrUnknownDiscriminator for account types this
// indexer does not track, which GPA backfill treats as "skip."
func DecodeAccount(data []byte) (interface{}, error) {
	if len(data) < 8 {
		return nil, ErrUnknownDiscriminator
	}
	var disc Discriminator
	copy(disc.Bytes[:], data[:8])
	disc.Len = 8

	switch disc {
	case pairAccountDiscriminator:
		var v PairAccount
		if err := bin.NewBorshDecoder(data[8:]).Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case leveragedPositionAccountDiscriminator:
		var v LeveragedPositionAccount
		if err := bin.NewBorshDecoder(data[8:]).Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, ErrUnknownDiscriminator
	}
}

package txpool

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Status is an item's place in the pool's lifecycle.
type Status uint8

const (
	StatusQueued Status = iota
	StatusPending
	StatusStaged
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusStaged:
		return "staged"
	default:
		return "queued"
	}
}

// Item is the Item Store's unit of ownership: an immutable transaction
// payload plus mutable pool metadata. The sender is recovered
// once, at insertion, and cached here — no index ever re-derives it.
type Item struct {
	ItemID common.Hash
	Tx     *types.Transaction

	Timestamp time.Time
	Sender    common.Address
	Local     bool

	Status Status

	// EffectiveGasTip is signed: estimatedGasTip(tx, baseFee) can go
	// negative once the base fee rises past a sender's offered tip. It is
	// recomputed on every setBaseFee pass rather than cached across fee
	// changes.
	EffectiveGasTip *big.Int

	RejectReason error
}

// tipCap is the sender's declared maximum tip: gasPrice for legacy
// transactions, maxPriorityFee for EIP-1559.
func tipCap(tx *types.Transaction) *uint256.Int {
	v, _ := uint256.FromBig(tx.GasTipCap())
	return v
}

// feeCap is the sender's declared absolute fee ceiling: gasPrice for
// legacy, maxFee for EIP-1559.
func feeCap(tx *types.Transaction) *uint256.Int {
	v, _ := uint256.FromBig(tx.GasFeeCap())
	return v
}

// estimatedGasTip implements "Tip computation": legacy
// transactions report gasPrice - baseFee, EIP-1559 transactions report
// min(maxPriorityFee, maxFee - baseFee). Both go-ethereum's GasTipCap and
// GasFeeCap already collapse legacy fields onto the same accessors, so
// this is one formula for every tx type.
func estimatedGasTip(tx *types.Transaction, baseFee *big.Int) *big.Int {
	tip := new(big.Int).Set(tx.GasTipCap())
	if baseFee == nil {
		return tip
	}
	headroom := new(big.Int).Sub(tx.GasFeeCap(), baseFee)
	if headroom.Cmp(tip) < 0 {
		return headroom
	}
	return tip
}

// WasteBasketEntry is an item plus its rejection reason, retained for
// diagnostics.
type WasteBasketEntry struct {
	Item     *Item
	Reason   error
	Rejected time.Time
}

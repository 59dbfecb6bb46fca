package txpool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tessera-chain/corestack/chain"
)

// Validator applies the two admission gates: acceptTxValid decides whether
// a transaction may enter the pool at all, acceptTxPending decides whether
// an already-admitted item is eligible to be promoted out of Queued.
type Validator struct {
	state chain.State
}

// NewValidator wires a validator against the given account-state view.
func NewValidator(state chain.State) *Validator {
	return &Validator{state: state}
}

// acceptTxValid implements basic admission checks: the tx
// type must be supported by the fork active at head, the nonce must not
// be stale, and the gas limit must cover intrinsic gas.
func (v *Validator) acceptTxValid(tx *types.Transaction, sender common.Address, head chain.ChainHead) error {
	fork := v.state.ToFork(head.Number)
	if !fork.SupportsTxType(tx.Type()) {
		return ErrBasicValidatorFailed
	}
	if tx.Nonce() < v.state.GetNonce(sender) {
		return ErrBasicValidatorFailed
	}
	intrinsic, err := v.state.IntrinsicGas(tx, fork)
	if err != nil {
		return ErrBasicValidatorFailed
	}
	if tx.Gas() < intrinsic {
		return ErrBasicValidatorFailed
	}
	return nil
}

// acceptTxPending implements pending-eligibility check: a
// positive effective tip, a fee that already clears the current base fee,
// a gas limit within the block's target, and a balance covering the
// worst-case cost. Insufficient balance reclassifies to Queued rather
// than rejecting outright.
func (v *Validator) acceptTxPending(item *Item, head chain.ChainHead) (eligible bool, err error) {
	if item.EffectiveGasTip.Sign() <= 0 {
		return false, nil
	}
	if !clearsBaseFee(item.Tx, head.BaseFee) {
		return false, nil
	}
	if head.TargetGasLimit > 0 && item.Tx.Gas() > head.TargetGasLimit {
		return false, nil
	}
	if v.state.GetBalance(item.Sender).Cmp(item.Tx.Cost()) < 0 {
		return false, nil
	}
	return true, nil
}

// clearsBaseFee reports whether tx's declared fee already covers the
// current base fee: gasPrice for legacy, maxFee for EIP-1559.
func clearsBaseFee(tx *types.Transaction, baseFee *big.Int) bool {
	if baseFee == nil {
		return true
	}
	return tx.GasFeeCap().Cmp(baseFee) >= 0
}

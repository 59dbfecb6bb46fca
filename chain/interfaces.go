// Package chain defines the contracts that the beacon skeleton syncer and
// the transaction pool consume from collaborators outside this module's
// scope: the chain importer, the account state view, and the peer
// abstraction. None of these are implemented here — the execution engine,
// state database and wire protocol are out of scope.
package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Importer absorbs stashed headers/bodies into the canonical chain. It is
// consumed by the skeleton's fillCanonicalChain pass.
type Importer interface {
	// ImportBlock executes and appends a full block, returning how many
	// blocks were processed (usually 1) or an error.
	ImportBlock(block *types.Block) (int, error)

	// CanonicalHead returns the header of the current canonical head.
	CanonicalHead() *types.Header

	// ResetCanonicalHead rewinds the canonical head from oldNumber to
	// newNumber, used after backStep invalidates recently-imported work.
	ResetCanonicalHead(newNumber, oldNumber uint64)

	// NotifyBadBlock reports a block that failed import so upstream
	// bookkeeping (peer scoring, bad-block cache) can react.
	NotifyBadBlock(header, headOfChain *types.Header)
}

// State exposes the account-state queries the validator needs. Backed by
// the state database in production; out of scope here.
type State interface {
	GetBalance(addr common.Address) *big.Int
	GetNonce(addr common.Address) uint64
	IntrinsicGas(tx *types.Transaction, fork Fork) (uint64, error)
	ToFork(blockNumber uint64) Fork
}

// Fork identifies the protocol rule set active at a given height, used to
// gate transaction-type acceptance and intrinsic gas computation.
type Fork int

const (
	ForkUnknown Fork = iota
	ForkHomestead
	ForkLondon
	ForkCancun
)

// SupportsTxType reports whether a transaction type is valid under fork f.
func (f Fork) SupportsTxType(txType uint8) bool {
	switch txType {
	case types.LegacyTxType:
		return true
	case types.AccessListTxType, types.DynamicFeeTxType:
		return f >= ForkLondon
	case types.BlobTxType:
		return f >= ForkCancun
	default:
		return false
	}
}

// HeaderRequest is the parameter block for a reverse/forward header fetch,
// mirroring the wire protocol's GetBlockHeaders packet.
type HeaderRequest struct {
	StartBlock uint64
	MaxResults int
	Skip       int
	Reverse    bool
}

// Peer is the subset of the P2P peer abstraction the scheduler needs. The
// full peer framework (handshakes, scoring, disconnects) is out of scope.
type Peer interface {
	ID() string
	GetBlockHeaders(req HeaderRequest) ([]*types.Header, error)
	GetBlockBodies(hashes []common.Hash) ([]*types.Body, error)
}

// ChainHead is the cached subset of canonical-head state the tx-pool
// validator needs without depending on the full Importer contract.
type ChainHead struct {
	Number         uint64
	BaseFee        *big.Int
	TargetGasLimit uint64
}

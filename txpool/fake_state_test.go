package txpool

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"

	"github.com/tessera-chain/corestack/chain"
)

// fakeState is a minimal chain.State double: fixed intrinsic gas, a
// per-address balance/nonce map, and a configurable fork.
type fakeState struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	fork     chain.Fork
	gas      uint64
	gasErr   error
}

func newFakeState() *fakeState {
	return &fakeState{
		balances: make(map[common.Address]*big.Int),
		nonces:   make(map[common.Address]uint64),
		fork:     chain.ForkLondon,
		gas:      params.TxGas,
	}
}

func (s *fakeState) setBalance(addr common.Address, bal *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[addr] = bal
}

func (s *fakeState) setNonce(addr common.Address, n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[addr] = n
}

func (s *fakeState) GetBalance(addr common.Address) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[addr]; ok {
		return b
	}
	return new(big.Int)
}

func (s *fakeState) GetNonce(addr common.Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonces[addr]
}

func (s *fakeState) IntrinsicGas(tx *types.Transaction, fork chain.Fork) (uint64, error) {
	return s.gas, s.gasErr
}

func (s *fakeState) ToFork(blockNumber uint64) chain.Fork {
	return s.fork
}

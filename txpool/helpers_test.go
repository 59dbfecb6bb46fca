package txpool

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/tessera-chain/corestack/chain"
)

var testChainID = big.NewInt(1337)

func newTestKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func signLegacyTx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, gasPrice int64, gas uint64) *types.Transaction {
	t.Helper()
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: big.NewInt(gasPrice),
		Gas:      gas,
		To:       &common.Address{},
		Value:    big.NewInt(0),
	})
	signer := types.NewEIP155Signer(testChainID)
	signed, err := types.SignTx(tx, signer, key)
	require.NoError(t, err)
	return signed
}

func newTestPool(t *testing.T) (*Pool, *fakeState) {
	t.Helper()
	state := newFakeState()
	state.gas = 21000
	signer := types.NewEIP155Signer(testChainID)
	pool := NewPool(signer, state, DefaultConfig())
	pool.SetChainHead(chain.ChainHead{Number: 1, TargetGasLimit: 30_000_000})
	return pool, state
}

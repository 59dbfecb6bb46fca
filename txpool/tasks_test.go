package txpool

import (
	"math/big"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestDeleteExpiredItemsSkipsLocalAndStopsAtFirstFresh(t *testing.T) {
	pool, state := newTestPool(t)
	keyOld, addrOld := newTestKey(t)
	keyLocal, addrLocal := newTestKey(t)
	keyFresh, addrFresh := newTestKey(t)
	state.setBalance(addrOld, big.NewInt(1_000_000_000_000))
	state.setBalance(addrLocal, big.NewInt(1_000_000_000_000))
	state.setBalance(addrFresh, big.NewInt(1_000_000_000_000))

	old, err := pool.AddTx(signLegacyTx(t, keyOld, 0, 100, 21000), false)
	require.NoError(t, err)
	local, err := pool.AddTx(signLegacyTx(t, keyLocal, 0, 100, 21000), true)
	require.NoError(t, err)

	old.Timestamp = time.Now().Add(-4 * time.Hour)
	local.Timestamp = time.Now().Add(-4 * time.Hour)

	fresh, err := pool.AddTx(signLegacyTx(t, keyFresh, 0, 100, 21000), false)
	require.NoError(t, err)

	n := pool.DeleteExpiredItems(time.Now())
	require.Equal(t, 1, n)
	require.Nil(t, pool.Get(old.Tx.Hash()))
	require.NotNil(t, pool.Get(local.Tx.Hash()), "local items are immune to expiry")
	require.NotNil(t, pool.Get(fresh.Tx.Hash()))
}

func TestDeleteUnderpricedItemsSkipsLocal(t *testing.T) {
	pool, state := newTestPool(t)
	keyCheap, addrCheap := newTestKey(t)
	keyLocal, addrLocal := newTestKey(t)
	state.setBalance(addrCheap, big.NewInt(1_000_000_000_000))
	state.setBalance(addrLocal, big.NewInt(1_000_000_000_000))

	cheap, err := pool.AddTx(signLegacyTx(t, keyCheap, 0, 5, 21000), false)
	require.NoError(t, err)
	local, err := pool.AddTx(signLegacyTx(t, keyLocal, 0, 5, 21000), true)
	require.NoError(t, err)

	n := pool.DeleteUnderpricedItems(uint256.NewInt(10))
	require.Equal(t, 1, n)
	require.Nil(t, pool.Get(cheap.Tx.Hash()))
	require.NotNil(t, pool.Get(local.Tx.Hash()))
}

func TestReassignRemoteToLocals(t *testing.T) {
	pool, state := newTestPool(t)
	key, addr := newTestKey(t)
	state.setBalance(addr, big.NewInt(1_000_000_000_000))

	item, err := pool.AddTx(signLegacyTx(t, key, 0, 100, 21000), false)
	require.NoError(t, err)
	require.False(t, item.Local)

	moved := pool.ReassignRemoteToLocals(addr)
	require.Equal(t, 1, moved)
	require.True(t, item.Local)

	require.Equal(t, 0, pool.ReassignRemoteToLocals(addr), "already-local items are not counted again")
}

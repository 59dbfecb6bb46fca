package skeleton

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
)

// Key prefixes for the three disjoint keyspaces: headers, the hash-to-number
// index, and bodies. Binary keys, never shared with any other subsystem's
// namespace.
var (
	headerPrefix       = []byte("skeleton-header-")
	hashToNumberPrefix = []byte("skeleton-hash-to-number-")
	bodyPrefix         = []byte("skeleton-body-")
	progressKey        = []byte("skeleton-progress")
)

func headerKey(number uint64) []byte {
	return append(append([]byte{}, headerPrefix...), encodeNumber(number)...)
}

func hashToNumberKey(hash common.Hash) []byte {
	return append(append([]byte{}, hashToNumberPrefix...), hash.Bytes()...)
}

func bodyKeyFor(headerHash, bodySumHash common.Hash) []byte {
	key := sumHash(headerHash, bodySumHash)
	return append(append([]byte{}, bodyPrefix...), key.Bytes()...)
}

func encodeNumber(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// sumHash derives a content hash used as a body identifier, combining the
// header hash with the body's own sum hash.
func sumHash(a, b common.Hash) common.Hash {
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes())
}

// ExpectedBodySumHash derives the body identifier a header commits to,
// computed purely from the header's own roots. Because it needs no body
// bytes, it can be computed before a body is ever fetched, letting the
// scheduler form the storage key ahead of the download. WithdrawalsHash is
// nil on pre-Shanghai headers, so it contributes a zero hash rather than
// panicking.
func ExpectedBodySumHash(h *types.Header) common.Hash {
	var withdrawalsHash common.Hash
	if h.WithdrawalsHash != nil {
		withdrawalsHash = *h.WithdrawalsHash
	}
	return crypto.Keccak256Hash(h.TxHash.Bytes(), h.UncleHash.Bytes(), withdrawalsHash.Bytes())
}

// ActualBodySumHash recomputes the same content hash from a fetched body's
// actual transactions/uncles/withdrawals, so it can be compared against
// ExpectedBodySumHash(header) to verify the body.
func ActualBodySumHash(body *types.Body) common.Hash {
	txRoot := types.DeriveSha(types.Transactions(body.Transactions), trie.NewStackTrie(nil))
	unclesHash := types.CalcUncleHash(body.Uncles)
	var withdrawalsHash common.Hash
	if body.Withdrawals != nil {
		withdrawalsHash = types.DeriveSha(types.Withdrawals(body.Withdrawals), trie.NewStackTrie(nil))
	}
	return crypto.Keccak256Hash(txRoot.Bytes(), unclesHash.Bytes(), withdrawalsHash.Bytes())
}

// HeaderStore owns the put/get/delete of stashed headers and bodies,
// keyed by number/hash, backed by a KV database.
type HeaderStore struct {
	db        ethdb.KeyValueStore
	headCache *lru.Cache[uint64, *types.Header]
}

// NewHeaderStore wraps db with a small header read cache.
func NewHeaderStore(db ethdb.KeyValueStore) *HeaderStore {
	cache, _ := lru.New[uint64, *types.Header](1024)
	return &HeaderStore{db: db, headCache: cache}
}

// PutHeader stashes a header under both the number and hash keyspaces.
func (hs *HeaderStore) PutHeader(h *types.Header) error {
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		return storageErr("encode header", err)
	}
	if err := hs.db.Put(headerKey(h.Number.Uint64()), enc); err != nil {
		return storageErr("put header", err)
	}
	numEnc, err := rlp.EncodeToBytes(h.Number.Uint64())
	if err != nil {
		return storageErr("encode number", err)
	}
	if err := hs.db.Put(hashToNumberKey(h.Hash()), numEnc); err != nil {
		return storageErr("put hash-to-number", err)
	}
	hs.headCache.Add(h.Number.Uint64(), h)
	return nil
}

// GetHeader returns the stashed header at number, or nil if absent.
func (hs *HeaderStore) GetHeader(number uint64) (*types.Header, error) {
	if h, ok := hs.headCache.Get(number); ok {
		return h, nil
	}
	blob, err := hs.db.Get(headerKey(number))
	if err != nil {
		if err == ethdb.ErrNotFound || isNotFound(err) {
			return nil, nil
		}
		return nil, storageErr("get header", err)
	}
	var h types.Header
	if err := rlp.DecodeBytes(blob, &h); err != nil {
		return nil, storageErr("decode header", err)
	}
	hs.headCache.Add(number, &h)
	return &h, nil
}

// NumberByHash resolves a stashed header's block number from its hash.
func (hs *HeaderStore) NumberByHash(hash common.Hash) (uint64, bool, error) {
	blob, err := hs.db.Get(hashToNumberKey(hash))
	if err != nil {
		if err == ethdb.ErrNotFound || isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, storageErr("get hash-to-number", err)
	}
	var number uint64
	if err := rlp.DecodeBytes(blob, &number); err != nil {
		return 0, false, storageErr("decode number", err)
	}
	return number, true, nil
}

// DeleteHeader removes a stashed header from both keyspaces.
func (hs *HeaderStore) DeleteHeader(number uint64, hash common.Hash) error {
	hs.headCache.Remove(number)
	if err := hs.db.Delete(headerKey(number)); err != nil {
		return storageErr("delete header", err)
	}
	if err := hs.db.Delete(hashToNumberKey(hash)); err != nil {
		return storageErr("delete hash-to-number", err)
	}
	return nil
}

// PutBody stashes a verified body under bodyKey = sumHash(headerHash, bodySumHash).
func (hs *HeaderStore) PutBody(headerHash, bodySumHash common.Hash, body *types.Body) error {
	enc, err := rlp.EncodeToBytes(body)
	if err != nil {
		return storageErr("encode body", err)
	}
	key := bodyKeyFor(headerHash, bodySumHash)
	if err := hs.db.Put(key, enc); err != nil {
		return storageErr("put body", err)
	}
	return nil
}

// GetBody retrieves a stashed body given the header hash and the body's
// expected sum hash, returning nil if absent.
func (hs *HeaderStore) GetBody(headerHash, bodySumHash common.Hash) (*types.Body, error) {
	key := bodyKeyFor(headerHash, bodySumHash)
	blob, err := hs.db.Get(key)
	if err != nil {
		if err == ethdb.ErrNotFound || isNotFound(err) {
			return nil, nil
		}
		return nil, storageErr("get body", err)
	}
	var body types.Body
	if err := rlp.DecodeBytes(blob, &body); err != nil {
		return nil, storageErr("decode body", err)
	}
	return &body, nil
}

// DeleteBody removes a stashed body.
func (hs *HeaderStore) DeleteBody(headerHash, bodySumHash common.Hash) error {
	key := bodyKeyFor(headerHash, bodySumHash)
	if err := hs.db.Delete(key); err != nil {
		return storageErr("delete body", err)
	}
	return nil
}

// WriteProgress persists the skeleton's sync state.
func WriteProgress(db ethdb.KeyValueStore, p *Progress) error {
	enc, err := rlp.EncodeToBytes(toRLP(p))
	if err != nil {
		return storageErr("encode progress", err)
	}
	if err := db.Put(progressKey, enc); err != nil {
		return storageErr("put progress", err)
	}
	return nil
}

// ReadProgress loads the persisted skeleton sync state, or a fresh empty
// Progress if none exists yet.
func ReadProgress(db ethdb.KeyValueStore) (*Progress, error) {
	blob, err := db.Get(progressKey)
	if err != nil {
		if err == ethdb.ErrNotFound || isNotFound(err) {
			return &Progress{}, nil
		}
		return nil, storageErr("get progress", err)
	}
	var r rlpProgress
	if err := rlp.DecodeBytes(blob, &r); err != nil {
		return nil, storageErr("decode progress", err)
	}
	return fromRLP(r), nil
}

func isNotFound(err error) bool {
	// Some ethdb backends report absence as a sentinel string rather than
	// the shared ErrNotFound value; fall back to that for leveldb, pebble
	// and memorydb.
	if err == nil {
		return false
	}
	switch err.Error() {
	case "leveldb: not found", "pebble: not found", "not found":
		return true
	}
	return false
}

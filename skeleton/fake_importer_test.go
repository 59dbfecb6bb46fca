package skeleton

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var errTestImportFailed = errors.New("test: import failed")

// fakeImporter is a minimal chain.Importer double: it tracks a canonical
// head number and records imported/bad blocks for assertions.
type fakeImporter struct {
	head    *types.Header
	known   map[uint64]*types.Header
	bad     []*types.Header
	failAt  uint64 // ImportBlock fails for this block number, once.
	imports []uint64
}

func newFakeImporter(genesis *types.Header) *fakeImporter {
	return &fakeImporter{
		head:  genesis,
		known: map[uint64]*types.Header{genesis.Number.Uint64(): genesis},
	}
}

func (f *fakeImporter) ImportBlock(block *types.Block) (int, error) {
	h := block.Header()
	n := h.Number.Uint64()
	if f.failAt != 0 && n == f.failAt {
		f.failAt = 0
		return 0, errTestImportFailed
	}
	f.known[n] = h
	f.head = h
	f.imports = append(f.imports, n)
	return 1, nil
}

func (f *fakeImporter) CanonicalHead() *types.Header { return f.head }

func (f *fakeImporter) ResetCanonicalHead(newNumber, oldNumber uint64) {
	if h, ok := f.known[newNumber]; ok {
		f.head = h
	}
}

func (f *fakeImporter) NotifyBadBlock(header, headOfChain *types.Header) {
	f.bad = append(f.bad, header)
}

// mkHeader builds a header chained to parent with a distinguishing nonce so
// that headers with the same number but different lineage hash differently.
func mkHeader(number uint64, parent common.Hash, nonce uint64) *types.Header {
	return &types.Header{
		ParentHash: parent,
		Number:     new(big.Int).SetUint64(number),
		GasLimit:   8_000_000,
		Time:       number*12 + nonce,
		Difficulty: big.NewInt(1),
		Extra:      []byte{byte(nonce)},
	}
}

// buildChain returns n headers numbered [from, from+n) chained to parent,
// along with the final header's hash.
func buildChain(from uint64, n int, parent *types.Header, nonce uint64) []*types.Header {
	out := make([]*types.Header, 0, n)
	parentHash := common.Hash{}
	if parent != nil {
		parentHash = parent.Hash()
	}
	for i := 0; i < n; i++ {
		h := mkHeader(from+uint64(i), parentHash, nonce)
		out = append(out, h)
		parentHash = h.Hash()
	}
	return out
}

// reversed returns a copy of hs in reverse order (highest number first),
// matching the wire order putBlocks expects.
func reversed(hs []*types.Header) []*types.Header {
	out := make([]*types.Header, len(hs))
	for i, h := range hs {
		out[len(hs)-1-i] = h
	}
	return out
}

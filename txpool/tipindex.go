package txpool

import (
	"math/big"

	"golang.org/x/exp/slices"
)

// tipBucket groups every item sharing the same effective gas tip, further
// split by nonce.
type tipBucket struct {
	tip   *big.Int
	byNon map[uint64][]*Item
}

// TipIndex is the tip-ordered view over live items. Per design
// note, rather than caching a tip that silently drifts from the state it
// depends on, the index is rebuilt wholesale on every setBaseFee call —
// see Pool.SetBaseFee.
type TipIndex struct {
	buckets []*tipBucket // sorted ascending by tip (tip is signed)
}

// NewTipIndex returns an empty index.
func NewTipIndex() *TipIndex { return &TipIndex{} }

func (idx *TipIndex) find(tip *big.Int) (int, bool) {
	return slices.BinarySearchFunc(idx.buckets, tip, func(b *tipBucket, t *big.Int) int {
		return b.tip.Cmp(t)
	})
}

// Insert adds item under item.EffectiveGasTip.
func (idx *TipIndex) Insert(item *Item) {
	i, found := idx.find(item.EffectiveGasTip)
	var b *tipBucket
	if found {
		b = idx.buckets[i]
	} else {
		b = &tipBucket{tip: new(big.Int).Set(item.EffectiveGasTip), byNon: make(map[uint64][]*Item)}
		idx.buckets = slices.Insert(idx.buckets, i, b)
	}
	nonce := item.Tx.Nonce()
	b.byNon[nonce] = append(b.byNon[nonce], item)
}

// Remove drops item from its current tip bucket (callers must pass the
// tip the item was last Inserted under, since effectiveGasTip may have
// since been mutated in place by a rebuild in progress).
func (idx *TipIndex) Remove(item *Item, tip *big.Int) {
	i, found := idx.find(tip)
	if !found {
		return
	}
	b := idx.buckets[i]
	nonce := item.Tx.Nonce()
	list := b.byNon[nonce]
	for j, it := range list {
		if it.ItemID == item.ItemID {
			b.byNon[nonce] = append(list[:j], list[j+1:]...)
			break
		}
	}
	if len(b.byNon[nonce]) == 0 {
		delete(b.byNon, nonce)
	}
	if len(b.byNon) == 0 {
		idx.buckets = append(idx.buckets[:i], idx.buckets[i+1:]...)
	}
}

// Rebuild replaces the index wholesale from a fresh item set and new base
// fee: every item's EffectiveGasTip is recomputed in place and the item is
// reinserted under the new key. It returns nothing; callers reconcile
// status separately (e.g. via UpdatePending).
func (idx *TipIndex) Rebuild(items []*Item, baseFee *big.Int) {
	idx.buckets = idx.buckets[:0]
	for _, it := range items {
		it.EffectiveGasTip = estimatedGasTip(it.Tx, baseFee)
		idx.Insert(it)
	}
}

// Len returns the total number of indexed items.
func (idx *TipIndex) Len() int {
	n := 0
	for _, b := range idx.buckets {
		for _, l := range b.byNon {
			n += len(l)
		}
	}
	return n
}

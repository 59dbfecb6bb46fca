package txpool

import (
	"github.com/holiman/uint256"
	"golang.org/x/exp/slices"
)

// tipCapBucket groups every item declaring the same tip cap
// (maxPriorityFee for EIP-1559, gasPrice for legacy).
type tipCapBucket struct {
	capVal *uint256.Int
	items  []*Item
}

// TipCapIndex is tip-cap → item-list, kept sorted ascending by
// cap so deleteUnderpricedItems can walk it in decreasing order from a
// threshold. Unlike the Tip Index, a tx's declared tip cap never changes
// with the base fee, so this index is maintained incrementally rather
// than rebuilt.
type TipCapIndex struct {
	buckets []*tipCapBucket
}

// NewTipCapIndex returns an empty index.
func NewTipCapIndex() *TipCapIndex { return &TipCapIndex{} }

func (idx *TipCapIndex) find(capVal *uint256.Int) (int, bool) {
	return slices.BinarySearchFunc(idx.buckets, capVal, func(b *tipCapBucket, c *uint256.Int) int {
		return b.capVal.Cmp(c)
	})
}

// Insert adds item under its declared tip cap.
func (idx *TipCapIndex) Insert(item *Item) {
	capVal := tipCap(item.Tx)
	i, found := idx.find(capVal)
	if found {
		idx.buckets[i].items = append(idx.buckets[i].items, item)
		return
	}
	b := &tipCapBucket{capVal: capVal, items: []*Item{item}}
	idx.buckets = slices.Insert(idx.buckets, i, b)
}

// Remove drops item from its tip-cap bucket, pruning the bucket if empty.
func (idx *TipCapIndex) Remove(item *Item) {
	capVal := tipCap(item.Tx)
	i, found := idx.find(capVal)
	if !found {
		return
	}
	items := idx.buckets[i].items
	for j, it := range items {
		if it.ItemID == item.ItemID {
			idx.buckets[i].items = append(items[:j], items[j+1:]...)
			break
		}
	}
	if len(idx.buckets[i].items) == 0 {
		idx.buckets = append(idx.buckets[:i], idx.buckets[i+1:]...)
	}
}

// WalkBelowDescending visits every item whose tip cap is strictly below
// threshold, walking buckets from the highest qualifying cap downward.
func (idx *TipCapIndex) WalkBelowDescending(threshold *uint256.Int, fn func(*Item)) {
	i, _ := idx.find(threshold)
	// find returns the position threshold occupies or would be inserted
	// at; either way the first bucket strictly below it is i-1.
	for i--; i >= 0; i-- {
		for _, it := range idx.buckets[i].items {
			fn(it)
		}
	}
}

// Len returns the total number of indexed items.
func (idx *TipCapIndex) Len() int {
	n := 0
	for _, b := range idx.buckets {
		n += len(b.items)
	}
	return n
}

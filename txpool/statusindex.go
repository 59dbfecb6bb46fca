package txpool

import "github.com/ethereum/go-ethereum/common"

// StatusIndex is status → sender → nonce → item, the mirror
// image of SenderIndex swapped at the top level. Kept as a distinct index
// (rather than derived) because reassignStatus and the scheduler's
// per-status counts both want O(1) access by status first.
type StatusIndex struct {
	byStatus [3]map[common.Address]map[uint64]*Item
}

// NewStatusIndex returns an empty index.
func NewStatusIndex() *StatusIndex {
	idx := &StatusIndex{}
	for i := range idx.byStatus {
		idx.byStatus[i] = make(map[common.Address]map[uint64]*Item)
	}
	return idx
}

func (idx *StatusIndex) Insert(item *Item) {
	m := idx.byStatus[item.Status]
	sub, ok := m[item.Sender]
	if !ok {
		sub = make(map[uint64]*Item)
		m[item.Sender] = sub
	}
	sub[item.Tx.Nonce()] = item
}

func (idx *StatusIndex) Remove(item *Item) {
	m := idx.byStatus[item.Status]
	sub, ok := m[item.Sender]
	if !ok {
		return
	}
	delete(sub, item.Tx.Nonce())
	if len(sub) == 0 {
		delete(m, item.Sender)
	}
}

// Reassign moves item from oldStatus to item.Status.
func (idx *StatusIndex) Reassign(item *Item, oldStatus Status) {
	old := idx.byStatus[oldStatus]
	if sub, ok := old[item.Sender]; ok {
		delete(sub, item.Tx.Nonce())
		if len(sub) == 0 {
			delete(old, item.Sender)
		}
	}
	idx.Insert(item)
}

// Count returns the number of items at status.
func (idx *StatusIndex) Count(status Status) int {
	n := 0
	for _, sub := range idx.byStatus[status] {
		n += len(sub)
	}
	return n
}

// Items returns every item at status, across all senders.
func (idx *StatusIndex) Items(status Status) []*Item {
	out := make([]*Item, 0)
	for _, sub := range idx.byStatus[status] {
		for _, it := range sub {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the total number of indexed items across all statuses.
func (idx *StatusIndex) Len() int {
	n := 0
	for _, m := range idx.byStatus {
		for _, sub := range m {
			n += len(sub)
		}
	}
	return n
}

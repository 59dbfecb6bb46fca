package txpool

import "github.com/ethereum/go-ethereum/common"

// SenderIndex is sender → status → nonce → item. It is the
// index that enforces uniqueness: no two non-rejected items may share a
// (sender, nonce) pair, checked at insertion across all three statuses.
type SenderIndex struct {
	bySender map[common.Address]*senderBucket
}

type senderBucket struct {
	byStatus [3]map[uint64]*Item // indexed by Status
}

func newSenderBucket() *senderBucket {
	b := &senderBucket{}
	for i := range b.byStatus {
		b.byStatus[i] = make(map[uint64]*Item)
	}
	return b
}

// NewSenderIndex returns an empty index.
func NewSenderIndex() *SenderIndex {
	return &SenderIndex{bySender: make(map[common.Address]*senderBucket)}
}

// Conflict reports the item already occupying (sender, nonce) across any
// status, or nil if the slot is free (the uniqueness invariant).
func (idx *SenderIndex) Conflict(sender common.Address, nonce uint64) *Item {
	b, ok := idx.bySender[sender]
	if !ok {
		return nil
	}
	for _, m := range b.byStatus {
		if it, ok := m[nonce]; ok {
			return it
		}
	}
	return nil
}

// Insert records item under (sender, item.Status, nonce). Callers must
// have already cleared Conflict.
func (idx *SenderIndex) Insert(item *Item) {
	b, ok := idx.bySender[item.Sender]
	if !ok {
		b = newSenderBucket()
		idx.bySender[item.Sender] = b
	}
	b.byStatus[item.Status][item.Tx.Nonce()] = item
}

// Remove drops item from its current (sender, status, nonce) slot.
func (idx *SenderIndex) Remove(item *Item) {
	b, ok := idx.bySender[item.Sender]
	if !ok {
		return
	}
	delete(b.byStatus[item.Status], item.Tx.Nonce())
	if len(b.byStatus[0])+len(b.byStatus[1])+len(b.byStatus[2]) == 0 {
		delete(idx.bySender, item.Sender)
	}
}

// Reassign moves item from oldStatus to item.Status in place, without
// touching the Tip/Tip-Cap indices.
func (idx *SenderIndex) Reassign(item *Item, oldStatus Status) {
	b := idx.bySender[item.Sender]
	if b == nil {
		return
	}
	delete(b.byStatus[oldStatus], item.Tx.Nonce())
	b.byStatus[item.Status][item.Tx.Nonce()] = item
}

// BySender returns every live item for sender across all statuses.
func (idx *SenderIndex) BySender(sender common.Address) []*Item {
	b, ok := idx.bySender[sender]
	if !ok {
		return nil
	}
	out := make([]*Item, 0)
	for _, m := range b.byStatus {
		for _, it := range m {
			out = append(out, it)
		}
	}
	return out
}

// CountByStatus returns, for a given sender, the number of items at status.
func (idx *SenderIndex) CountByStatus(sender common.Address, status Status) int {
	b, ok := idx.bySender[sender]
	if !ok {
		return 0
	}
	return len(b.byStatus[status])
}

// Len returns the total number of indexed items across all senders.
func (idx *SenderIndex) Len() int {
	n := 0
	for _, b := range idx.bySender {
		for _, m := range b.byStatus {
			n += len(m)
		}
	}
	return n
}

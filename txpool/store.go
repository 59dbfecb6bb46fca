package txpool

import (
	"container/list"

	"github.com/ethereum/go-ethereum/common"
)

// ItemStore is the canonical owner of every live transaction item, keyed
// by item id with insertion order preserved.
// The other indices hold *Item pointers to the same items rather than
// item ids; an item is live exactly while this store holds it.
type ItemStore struct {
	items map[common.Hash]*list.Element // itemId -> node in order
	order *list.List                    // list.Element.Value is *Item
}

// NewItemStore returns an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items: make(map[common.Hash]*list.Element),
		order: list.New(),
	}
}

// Get returns the item for id, or nil if absent.
func (s *ItemStore) Get(id common.Hash) *Item {
	if e, ok := s.items[id]; ok {
		return e.Value.(*Item)
	}
	return nil
}

// Has reports whether id is present.
func (s *ItemStore) Has(id common.Hash) bool {
	_, ok := s.items[id]
	return ok
}

// Put appends a new item at the back of insertion order. Callers must
// have already checked Has(id) step 1.
func (s *ItemStore) Put(item *Item) {
	e := s.order.PushBack(item)
	s.items[item.ItemID] = e
}

// Delete removes an item, returning it (or nil if it was not present).
func (s *ItemStore) Delete(id common.Hash) *Item {
	e, ok := s.items[id]
	if !ok {
		return nil
	}
	delete(s.items, id)
	s.order.Remove(e)
	return e.Value.(*Item)
}

// Len returns the number of live items.
func (s *ItemStore) Len() int { return len(s.items) }

// Walk visits items in insertion order, oldest first, stopping early if fn
// returns false. Used by deleteExpiredItems.
func (s *ItemStore) Walk(fn func(*Item) bool) {
	for e := s.order.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*Item)) {
			return
		}
	}
}

// All returns a snapshot slice of every item in insertion order.
func (s *ItemStore) All() []*Item {
	out := make([]*Item, 0, s.order.Len())
	s.Walk(func(it *Item) bool {
		out = append(out, it)
		return true
	})
	return out
}

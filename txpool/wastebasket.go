package txpool

import (
	"container/list"
	"time"
)

// WasteBasket is a bounded FIFO of rejected items. Evicting
// the oldest entry when Push exceeds maxRejects is the capacity handling
// for rejected-item retention.
type WasteBasket struct {
	order      *list.List // of WasteBasketEntry
	maxRejects int
}

// NewWasteBasket returns an empty basket bounded at maxRejects.
func NewWasteBasket(maxRejects int) *WasteBasket {
	return &WasteBasket{order: list.New(), maxRejects: maxRejects}
}

// Push records a rejection, evicting the oldest entry in FIFO order if
// the basket is now over capacity.
func (w *WasteBasket) Push(item *Item, reason error, at time.Time) {
	w.order.PushBack(WasteBasketEntry{Item: item, Reason: reason, Rejected: at})
	for w.order.Len() > w.maxRejects {
		w.order.Remove(w.order.Front())
	}
}

// Len returns the current number of retained rejections.
func (w *WasteBasket) Len() int { return w.order.Len() }

// Entries returns a snapshot of the basket, oldest first.
func (w *WasteBasket) Entries() []WasteBasketEntry {
	out := make([]WasteBasketEntry, 0, w.order.Len())
	for e := w.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(WasteBasketEntry))
	}
	return out
}

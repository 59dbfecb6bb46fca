package txpool

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// AddTxs runs each transaction through AddTx independently; a failure on
// one does not block the rest. Results line up positionally with txs.
func (p *Pool) AddTxs(txs []*types.Transaction, local bool) []error {
	errs := make([]error, len(txs))
	for i, tx := range txs {
		_, errs[i] = p.AddTx(tx, local)
	}
	return errs
}

// DeleteExpiredItems walks the item store in insertion order and rejects
// every item older than the configured lifetime with ErrTxExpired,
// skipping local items and stopping at the first item that is not yet
// expired, since insertion order is also age order.
func (p *Pool) DeleteExpiredItems(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := now.Add(-p.config.LifeTime)
	var expired []*Item
	p.items.Walk(func(it *Item) bool {
		if it.Timestamp.After(cutoff) {
			return false
		}
		if !it.Local {
			expired = append(expired, it)
		}
		return true
	})
	for _, it := range expired {
		p.disposeLocked(it, ErrTxExpired)
	}
	return len(expired)
}

// DeleteUnderpricedItems walks the tip-cap index below threshold in
// decreasing order, rejecting every non-local item found with
// ErrUnderpriced.
func (p *Pool) DeleteUnderpricedItems(threshold *uint256.Int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var underpriced []*Item
	p.tipCaps.WalkBelowDescending(threshold, func(it *Item) {
		if !it.Local {
			underpriced = append(underpriced, it)
		}
	})
	for _, it := range underpriced {
		p.disposeLocked(it, ErrUnderpriced)
	}
	return len(underpriced)
}

// UpdatePending re-runs acceptTxPending over the queued set and demotes
// pending items that no longer clear it. For locality, the smaller of the
// two status buckets is walked and moved first; the larger is checked
// afterward from its own snapshot.
func (p *Pool) UpdatePending() (promoted, demoted int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	queued := p.statuses.Items(StatusQueued)
	pending := p.statuses.Items(StatusPending)

	// Stash the smaller side's snapshot first and update it in place; the
	// larger side is re-checked afterward from its own snapshot. Either
	// order reaches the same fixed point, but starting with the smaller
	// side keeps the common case (a handful of queued items clearing the
	// bar against a large, mostly-stable pending set) cheap.
	first, second := queued, pending
	if len(pending) < len(queued) {
		first, second = pending, queued
	}

	promotePendingDemote := func(it *Item) {
		eligible, _ := p.validator.acceptTxPending(it, p.head)
		switch {
		case it.Status == StatusQueued && eligible:
			p.reassignLocked(it, StatusPending)
			promoted++
		case it.Status == StatusPending && !eligible:
			p.reassignLocked(it, StatusQueued)
			demoted++
		}
	}
	for _, it := range first {
		promotePendingDemote(it)
	}
	for _, it := range second {
		promotePendingDemote(it)
	}
	return promoted, demoted
}

// ReassignRemoteToLocals marks every remote item belonging to sender as
// local, returning the number moved. Local items are immune to expiry and
// underpriced eviction, so this is the mechanism an operator uses to
// protect a sender's outstanding transactions after the fact.
func (p *Pool) ReassignRemoteToLocals(sender common.Address) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	moved := 0
	for _, it := range p.senders.BySender(sender) {
		if !it.Local {
			it.Local = true
			moved++
		}
	}
	return moved
}

package txpool

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/tessera-chain/corestack/chain"
)

// txSlotSize is the unit pool capacity is charged against: every started
// (or partial) 32KB of encoded transaction size is one slot.
const txSlotSize = 32 * 1024

func slotsFor(tx *types.Transaction) int {
	size := tx.Size()
	slots := int(size / txSlotSize)
	if size%txSlotSize != 0 {
		slots++
	}
	if slots == 0 {
		slots = 1
	}
	return slots
}

// Pool is the Transaction Pool Multi-Index Store:
// single-writer under txDBSync, coordinating the Item Store and its four
// back-reference indices plus the Waste Basket.
type Pool struct {
	mu sync.Mutex // txDBSync

	signer    types.Signer
	config    Config
	validator *Validator

	items    *ItemStore
	senders  *SenderIndex
	tips     *TipIndex
	tipCaps  *TipCapIndex
	statuses *StatusIndex
	basket   *WasteBasket

	// head.BaseFee is the sole source of truth for estimatedGasTip; it is
	// only ever mutated through SetBaseFee, which also rebuilds the Tip
	// index so the two never drift apart.
	head chain.ChainHead

	slots int

	log log.Logger
}

// NewPool wires an empty pool over the given signer and account-state view.
func NewPool(signer types.Signer, state chain.State, config Config) *Pool {
	config = config.sanitize()
	return &Pool{
		signer:    signer,
		config:    config,
		validator: NewValidator(state),
		items:     NewItemStore(),
		senders:   NewSenderIndex(),
		tips:      NewTipIndex(),
		tipCaps:   NewTipCapIndex(),
		statuses:  NewStatusIndex(),
		basket:    NewWasteBasket(config.MaxRejects),
		head:      chain.ChainHead{BaseFee: new(big.Int)},
		log:       log.New("module", "txpool"),
	}
}

// SetChainHead updates the cached head number/gas-limit target the
// validator checks against. Base fee changes must go through SetBaseFee
// instead, since that also rebuilds the Tip index.
func (p *Pool) SetChainHead(head chain.ChainHead) {
	p.mu.Lock()
	defer p.mu.Unlock()
	head.BaseFee = p.head.BaseFee
	p.head = head
}

// AddTx is the single-transaction entry point tasks.addTxs drives: it runs
// acceptTxValid, inserts the item as Queued, then immediately promotes it
// to Pending if acceptTxPending clears it. A rejected transaction is
// recorded in the Waste Basket with its reason, which is also returned.
func (p *Pool) AddTx(tx *types.Transaction, local bool) (*Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	reject := func(sender common.Address, reason error) (*Item, error) {
		now := time.Now()
		p.basket.Push(&Item{ItemID: tx.Hash(), Tx: tx, Timestamp: now, Sender: sender, Local: local, RejectReason: reason}, reason, now)
		reportRejection(reason)
		return nil, reason
	}

	sender, err := types.Sender(p.signer, tx)
	if err != nil {
		return reject(common.Address{}, ErrInvalidSender)
	}
	if err := p.validator.acceptTxValid(tx, sender, p.head); err != nil {
		return reject(sender, err)
	}

	item, err := p.insertLocked(tx, sender, StatusQueued, local)
	if err != nil {
		return reject(sender, err)
	}
	if eligible, _ := p.validator.acceptTxPending(item, p.head); eligible {
		p.reassignLocked(item, StatusPending)
	}
	return item, nil
}

// Insert recovers the sender, checks for duplicates and (sender, nonce)
// conflicts (with the price-bump replacement escape hatch), then appends
// the item to every index atomically. Callers that need validator gating
// should use AddTx instead; Insert is the lower-level primitive that skips
// the validator, and a failed Insert is not recorded in the Waste Basket.
func (p *Pool) Insert(tx *types.Transaction, status Status, local bool) (*Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sender, err := types.Sender(p.signer, tx)
	if err != nil {
		return nil, ErrInvalidSender
	}
	return p.insertLocked(tx, sender, status, local)
}

func (p *Pool) insertLocked(tx *types.Transaction, sender common.Address, status Status, local bool) (*Item, error) {
	id := tx.Hash()
	if p.items.Has(id) {
		return nil, ErrAlreadyKnown
	}

	nonce := tx.Nonce()
	if old := p.senders.Conflict(sender, nonce); old != nil {
		if !p.beatsByPriceBump(tx, old.Tx) {
			return nil, ErrSenderNonceIndex
		}
		p.disposeLocked(old, ErrSenderNonceIndex)
	}

	item := &Item{
		ItemID:          id,
		Tx:              tx,
		Timestamp:       time.Now(),
		Sender:          sender,
		Local:           local,
		Status:          status,
		EffectiveGasTip: estimatedGasTip(tx, p.head.BaseFee),
	}

	p.items.Put(item)
	p.senders.Insert(item)
	p.tips.Insert(item)
	p.tipCaps.Insert(item)
	p.statuses.Insert(item)
	p.slots += slotsFor(tx)

	p.reportCountsLocked()
	return item, nil
}

// beatsByPriceBump applies the replacement rule: a same-(sender, nonce)
// replacement must clear both the old tip cap and fee cap by
// config.PriceBump percent.
func (p *Pool) beatsByPriceBump(newTx, oldTx *types.Transaction) bool {
	bump := p.config.PriceBump
	oldTip, oldFee := tipCap(oldTx), feeCap(oldTx)
	newTip, newFee := tipCap(newTx), feeCap(newTx)

	return newTip.Cmp(bumpThreshold(oldTip, bump)) >= 0 && newFee.Cmp(bumpThreshold(oldFee, bump)) >= 0
}

// bumpThreshold returns floor(base * (100+bumpPercent) / 100).
func bumpThreshold(base *uint256.Int, bumpPercent uint64) *uint256.Int {
	factor := uint256.NewInt(100 + bumpPercent)
	hundred := uint256.NewInt(100)
	t := new(uint256.Int).Mul(base, factor)
	return t.Div(t, hundred)
}

// Reassign moves item to newStatus, updating the Sender and Status
// indices atomically; the Tip/Tip-Cap indices are untouched.
func (p *Pool) Reassign(item *Item, newStatus Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reassignLocked(item, newStatus)
}

func (p *Pool) reassignLocked(item *Item, newStatus Status) {
	if item.Status == newStatus {
		return
	}
	old := item.Status
	item.Status = newStatus
	p.senders.Reassign(item, old)
	p.statuses.Reassign(item, old)
}

// Dispose removes item from every index and pushes it to the waste
// basket.
func (p *Pool) Dispose(item *Item, reason error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disposeLocked(item, reason)
}

func (p *Pool) disposeLocked(item *Item, reason error) {
	p.items.Delete(item.ItemID)
	p.senders.Remove(item)
	p.tips.Remove(item, item.EffectiveGasTip)
	p.tipCaps.Remove(item)
	p.statuses.Remove(item)
	p.slots -= slotsFor(item.Tx)

	item.RejectReason = reason
	p.basket.Push(item, reason, time.Now())
	reportRejection(reason)
	p.reportCountsLocked()
	p.log.Debug("Discarding transaction", "hash", item.ItemID, "sender", item.Sender, "reason", reason)
}

// SetBaseFee invalidates every item's effective gas tip and rebuilds the
// tip index under the new key.
func (p *Pool) SetBaseFee(newFee *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.head.BaseFee = new(big.Int).Set(newFee)
	p.tips.Rebuild(p.items.All(), p.head.BaseFee)
	p.log.Debug("Base fee updated, tip index rebuilt", "baseFee", p.head.BaseFee, "items", p.items.Len())
}

func (p *Pool) reportCountsLocked() {
	reportCounts(p.statuses.Count(StatusQueued), p.statuses.Count(StatusPending), p.statuses.Count(StatusStaged), p.slots)
}

// Get returns the item for id, or nil.
func (p *Pool) Get(id common.Hash) *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.Get(id)
}

// Len returns the total number of live items (the uniqueness invariant basis).
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.Len()
}

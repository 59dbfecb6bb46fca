package skeleton

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tessera-chain/corestack/chain"
	"github.com/tessera-chain/corestack/skeleton/interval"
)

// Registry owns the Segment Registry and drives the Skeleton Algorithm.
// It is single-writer: every mutating method is expected to be called
// from the syncer's single executor goroutine; mu only guards against
// concurrent readers such as metrics collection.
type Registry struct {
	mu sync.RWMutex

	genesis  common.Hash
	db       ethdb.KeyValueStore
	headers  *HeaderStore
	importer chain.Importer
	config   Config

	progress *Progress

	mask   *interval.Set // unprocessed block numbers
	pulled *interval.Set // already-downloaded block numbers

	log log.Logger
}

// NewRegistry constructs a Registry over a freshly-loaded or persisted
// Progress. Callers load Progress via ReadProgress before constructing.
func NewRegistry(genesis common.Hash, db ethdb.KeyValueStore, headers *HeaderStore, importer chain.Importer, progress *Progress, config Config) *Registry {
	if progress == nil {
		progress = &Progress{}
	}
	return &Registry{
		genesis:  genesis,
		db:       db,
		headers:  headers,
		importer: importer,
		config:   config.sanitize(),
		progress: progress,
		mask:     interval.New(),
		pulled:   interval.New(),
		log:      log.New("module", "skeleton"),
	}
}

// Progress returns a snapshot of the current Progress.
func (r *Registry) Progress() Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	segs := make([]*Segment, len(r.progress.Segments))
	for i, s := range r.progress.Segments {
		cp := *s
		segs[i] = &cp
	}
	return Progress{Segments: segs, Linked: r.progress.Linked, CanonicalHeadReset: r.progress.CanonicalHeadReset}
}

// active returns the last (highest-numbered) segment, or nil if none.
func (r *Registry) active() *Segment {
	if len(r.progress.Segments) == 0 {
		return nil
	}
	return r.progress.Segments[len(r.progress.Segments)-1]
}

// relation classifies where an announced head number falls with respect
// to the active segment, so branching is a match on one computed tuple
// rather than flag fan-out.
type relation uint8

const (
	relFresh    relation = iota // no active segment yet
	relBefore                   // head.number < L.Tail
	relOverlap                  // L.Tail <= head.number <= L.Head
	relGap                      // head.number > L.Head+1
	relAdjacent                 // head.number == L.Head+1
)

func classify(L *Segment, number uint64) relation {
	if L == nil {
		return relFresh
	}
	switch {
	case number < L.Tail:
		return relBefore
	case number <= L.Head:
		return relOverlap
	case number == L.Head+1:
		return relAdjacent
	default:
		return relGap
	}
}

// SetHead validates genesis, runs processNewHead, synthesises/repairs the
// active segment on a forced reorg, stashes the head, optionally merges
// subchains on init, and recomputes linkage.
func (r *Registry) SetHead(head *types.Header, force, init bool) (bool, Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	number := head.Number.Uint64()
	if number == 0 && head.Hash() != r.genesis {
		return false, StatusNone, ErrInvalidGenesis
	}

	reorg, err := r.processNewHeadLocked(head, force)
	if err != nil {
		return false, StatusNone, err
	}

	if force && reorg {
		L := r.active()
		var parent *types.Header
		if number > 0 {
			parent, err = r.headers.GetHeader(number - 1)
			if err != nil {
				return false, StatusNone, err
			}
		}
		if L == nil || parent == nil || parent.Hash() != head.ParentHash {
			r.pushSegment(&Segment{Head: number, Tail: number, Next: head.ParentHash})
		} else {
			L.Head = number
		}
		r.progress.CanonicalHeadReset = true
	} else if !reorg {
		// Clean advance (branch 5) or a gap fast-forward that closed all
		// the way to adjacency: the active segment now reaches number too.
		if L := r.active(); L != nil && number > L.Head {
			L.Head = number
		}
	}

	if err := r.headers.PutHeader(head); err != nil {
		return false, StatusNone, err
	}

	var status Status
	if init {
		merged, significant := r.trySubChainsMergeLocked()
		if merged && significant {
			status = StatusSyncMerged
		}
	}

	if force || reorg || init {
		r.progress.Linked = r.isLinkedLocked()
		if r.db != nil {
			if err := WriteProgress(r.db, r.progress); err != nil {
				return false, StatusNone, err
			}
		}
	}

	if force && r.progress.Linked {
		status = StatusFillCanonical
	}
	if reorg {
		if status == StatusNone {
			status = StatusSyncReorged
		}
	} else if force {
		status = StatusReorgDenied
	}
	return reorg, status, nil
}

func (r *Registry) pushSegment(s *Segment) {
	// Drop any trailing segments that are now entirely above the new
	// segment's head (the "leftover newer subchain" case), then append.
	segs := r.progress.Segments
	for len(segs) > 0 && segs[len(segs)-1].Tail > s.Head {
		segs = segs[:len(segs)-1]
	}
	r.progress.Segments = append(segs, s)
}

// processNewHead is the locking entry point used by callers that hold no
// lock (e.g. tests exercising the algorithm directly).
func (r *Registry) processNewHead(head *types.Header, force bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processNewHeadLocked(head, force)
}

// processNewHeadLocked runs processNewHead's five branches. mu must be
// held.
func (r *Registry) processNewHeadLocked(head *types.Header, force bool) (bool, error) {
	number := head.Number.Uint64()
	L := r.active()

	switch classify(L, number) {
	case relFresh, relBefore:
		// Branch 1: announcement before the current tail (or no segment
		// yet at all). Reorg is reported; synthesising the fresh segment
		// happens in setHead under force.
		return true, nil

	case relOverlap:
		// Branch 2: dedup check against the stored header.
		stored, err := r.headers.GetHeader(number)
		if err != nil {
			return false, err
		}
		if stored != nil && stored.Hash() == head.Hash() {
			return false, nil // idempotent, no mutation.
		}
		// Hash mismatch at an already-covered number is treated as a
		// first-class reorg, not an assertion.
		return true, nil

	case relGap:
		// Branch 3: a gap above the active segment's head.
		if force {
			r.fastForwardHeadLocked(L, number)
		}
		if L.Head+1 < number {
			return true, nil
		}
		// Fast-forward closed the gap entirely; re-classify against the
		// now-adjacent state.
		return r.checkAdjacentLocked(L, head)

	case relAdjacent:
		return r.checkAdjacentLocked(L, head)
	}
	return false, nil
}

// checkAdjacentLocked implements branches 4 and 5: parent-hash linkage at
// the boundary between the stashed chain and the announced head.
func (r *Registry) checkAdjacentLocked(L *Segment, head *types.Header) (bool, error) {
	parent, err := r.headers.GetHeader(head.Number.Uint64() - 1)
	if err != nil {
		return false, err
	}
	if parent == nil || parent.Hash() != head.ParentHash {
		return true, nil // Branch 4: fork.
	}
	// Branch 5: clean advance.
	return false, nil
}

// fastForwardHeadLocked lifts L.Head toward target-1 using already-stashed
// consecutive headers.
func (r *Registry) fastForwardHeadLocked(L *Segment, target uint64) {
	for L.Head+1 < target {
		h, err := r.headers.GetHeader(L.Head + 1)
		if err != nil || h == nil {
			return
		}
		prev, err := r.headers.GetHeader(L.Head)
		if err != nil || prev == nil || h.ParentHash != prev.Hash() {
			return
		}
		L.Head++
	}
}

// isLinkedLocked reports whether the lowest segment reaches all the way
// down to a tail whose parent is the genesis hash (i.e. the skeleton has a
// continuous path from the canonical chain to the active segment's head).
func (r *Registry) isLinkedLocked() bool {
	if len(r.progress.Segments) == 0 {
		return false
	}
	lowest := r.progress.Segments[0]
	return lowest.Tail == 0 || lowest.Next == r.genesis
}

// IsLinked is the exported, locked form of isLinked.
func (r *Registry) IsLinked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isLinkedLocked()
}

// PutBlocks accepts headers arriving in decreasing block-number order,
// expected to extend the active segment at its tail.
func (r *Registry) PutBlocks(headers []*types.Header) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	L := r.active()
	if L == nil {
		return StatusNone, ErrNoSegments
	}

	for _, h := range headers {
		number := h.Number.Uint64()
		if number >= L.Tail {
			continue // duplicate from overlapping requests.
		}
		if number == 0 && h.Hash() != r.genesis {
			return StatusNone, ErrInvalidGenesis
		}
		if L.Next != h.Hash() {
			return StatusNone, ErrBlocksDoNotExtendCanonical
		}
		if err := r.headers.PutHeader(h); err != nil {
			return StatusNone, err
		}
		L.Tail = number
		L.Next = h.ParentHash

		mergedSpan := L.Head - L.Tail
		merged, _ := r.trySubChainsMergeLocked()
		if merged && mergedSpan > r.config.SubchainMergeMinimum {
			return StatusSyncMerged, nil
		}
	}
	r.progress.Linked = r.isLinkedLocked()
	return StatusNone, nil
}

// trySubChainsMergeLocked merges subchains: while the top two segments
// overlap or touch, drop/trim the older (lower) one, possibly adopting
// its tail/next when the active segment's Next points into it.
func (r *Registry) trySubChainsMergeLocked() (merged bool, significant bool) {
	for len(r.progress.Segments) >= 2 {
		top := r.progress.Segments[len(r.progress.Segments)-1]
		below := r.progress.Segments[len(r.progress.Segments)-2]

		if below.Head+1 < top.Tail {
			break // disjoint with a genuine gap, nothing to merge.
		}

		span := top.Head - top.Tail
		// Drop the lower segment; if our Next pointer lands inside it,
		// adopt its tail/next so the merged span keeps linking down.
		headerAtBelowHead, _ := r.headers.GetHeader(below.Head)
		if headerAtBelowHead != nil && headerAtBelowHead.Hash() == top.Next {
			top.Tail = below.Tail
			top.Next = below.Next
		}
		r.progress.Segments = append(r.progress.Segments[:len(r.progress.Segments)-2], top)
		merged = true
		if span > r.config.SubchainMergeMinimum {
			significant = true
		}
	}
	return merged, significant
}

// FillCanonicalChain absorbs stashed headers into the canonical chain via
// the Importer, stopping and back-stepping on any failure.
func (r *Registry) FillCanonicalChain() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.progress.Segments) == 0 {
		return nil
	}
	lowest := r.progress.Segments[0]

	for {
		head := r.importer.CanonicalHead()
		canonicalHead := uint64(0)
		if head != nil {
			canonicalHead = head.Number.Uint64()
		}
		if canonicalHead >= lowest.Head {
			break
		}
		next := canonicalHead + 1
		h, err := r.headers.GetHeader(next)
		if err != nil {
			return err
		}
		if h == nil {
			return r.backStepLocked(lowest)
		}
		bodySumHash := ExpectedBodySumHash(h)
		body, err := r.headers.GetBody(h.Hash(), bodySumHash)
		if err != nil {
			return err
		}
		if body == nil {
			return r.backStepLocked(lowest)
		}
		block := types.NewBlockWithHeader(h).WithBody(*body)
		if _, err := r.importer.ImportBlock(block); err != nil {
			r.importer.NotifyBadBlock(h, head)
			return r.backStepLocked(lowest)
		}
		if err := r.headers.DeleteHeader(next, h.Hash()); err != nil {
			return err
		}
		if err := r.headers.DeleteBody(h.Hash(), bodySumHash); err != nil {
			return err
		}
		if next == lowest.Head && len(r.progress.Segments) > 0 {
			r.progress.Segments = r.progress.Segments[1:]
			if len(r.progress.Segments) == 0 {
				break
			}
			lowest = r.progress.Segments[0]
		}
	}
	return nil
}

// backStepLocked advances Tail upward by FillCanonicalBackStep; if
// nothing stashed covers the new point, every segment is cleared so the
// next head announcement starts fresh.
func (r *Registry) backStepLocked(lowest *Segment) error {
	newTail := lowest.Tail + r.config.FillCanonicalBackStep
	if newTail > lowest.Head {
		newTail = lowest.Head
	}
	h, err := r.headers.GetHeader(newTail)
	if err != nil {
		return err
	}
	if h == nil {
		r.progress.Segments = nil
		r.progress.Linked = false
		return nil
	}
	lowest.Tail = newTail
	lowest.Next = h.ParentHash
	return nil
}

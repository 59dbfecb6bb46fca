package skeleton

import (
	"time"

	"github.com/gammazero/deque"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// gatePoll is how often appendSyncTarget/shiftSyncTarget re-check the
// opposing flag.
const gatePoll = 10 * time.Millisecond

// TargetQueue is a deque of consensus-layer head announcements, keyed by
// block hash, preserving insertion order. appendSyncTarget and
// shiftSyncTarget serialise against each other with a two-flag gate
// rather than a mutex.
type TargetQueue struct {
	items   deque.Deque[*types.Header]
	known   map[common.Hash]struct{}
	append_ bool // bmAppendTarget
	shift   bool // bmShiftTarget
}

// NewTargetQueue returns an empty target queue.
func NewTargetQueue() *TargetQueue {
	return &TargetQueue{known: make(map[common.Hash]struct{})}
}

// Append pushes a new head announcement to the back of the queue, skipping
// duplicates already known by hash. Waits for any in-flight Shift to clear
// before mutating, polling every 10ms.
func (q *TargetQueue) Append(head *types.Header) {
	for q.shift {
		time.Sleep(gatePoll)
	}
	q.append_ = true
	defer func() { q.append_ = false }()

	hash := head.Hash()
	if _, ok := q.known[hash]; ok {
		return
	}
	q.known[hash] = struct{}{}
	q.items.PushBack(head)
}

// Shift removes and returns the oldest head announcement, or nil if the
// queue is empty. Waits for any in-flight Append to clear first.
func (q *TargetQueue) Shift() *types.Header {
	for q.append_ {
		time.Sleep(gatePoll)
	}
	q.shift = true
	defer func() { q.shift = false }()

	if q.items.Len() == 0 {
		return nil
	}
	head := q.items.PopFront()
	delete(q.known, head.Hash())
	return head
}

// Len returns the number of pending announcements.
func (q *TargetQueue) Len() int {
	return q.items.Len()
}

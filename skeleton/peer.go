package skeleton

import (
	"sync"
	"sync/atomic"

	"github.com/tessera-chain/corestack/chain"
)

// buddyCtrl tracks per-peer liveness and error accounting consulted by the
// worker loop's cancellation check.
type buddyCtrl struct {
	stopped atomic.Bool
	errors  atomic.Int32
}

// errorThreshold is the per-peer error count at which a buddy is retired
// from the active set.
const errorThreshold = 5

// buddy pairs a peer connection with its controller, one per worker.
type buddy struct {
	peer chain.Peer
	ctrl *buddyCtrl
}

func newBuddy(p chain.Peer) *buddy {
	return &buddy{peer: p, ctrl: &buddyCtrl{}}
}

func (b *buddy) recordError() {
	if b.ctrl.errors.Add(1) >= errorThreshold {
		b.ctrl.stopped.Store(true)
	}
}

// peerSet is the scheduler's registry of active buddies, one per peer id.
type peerSet struct {
	mu      sync.Mutex
	buddies map[string]*buddy
}

func newPeerSet() *peerSet {
	return &peerSet{buddies: make(map[string]*buddy)}
}

func (s *peerSet) add(p chain.Peer) *buddy {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := newBuddy(p)
	s.buddies[p.ID()] = b
	return b
}

func (s *peerSet) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buddies, id)
}

func (s *peerSet) list() []*buddy {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*buddy, 0, len(s.buddies))
	for _, b := range s.buddies {
		out = append(out, b)
	}
	return out
}

func (s *peerSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buddies)
}

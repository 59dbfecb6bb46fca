package skeleton

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tessera-chain/corestack/chain"
)

// TaskKind distinguishes a reverse header-range fetch from a forward body
// fetch.
type TaskKind uint8

const (
	TaskHeaders TaskKind = iota
	TaskBodies
)

// Task is a unit of work pulled off the shared job deque by exactly one
// worker at a time.
type Task struct {
	Kind       TaskKind
	Start      uint64
	MaxResults int
	BodyOf     []*types.Header // body-fetch targets, keyed by their header
}

// Scheduler implements N parallel per-peer workers plus one daemon plus a
// pool-mode serialised pass.
type Scheduler struct {
	mu sync.Mutex

	registry *Registry
	tally    *Tally
	targets  *TargetQueue
	peers    *peerSet
	config   Config

	jobs     deque.Deque[Task]
	requeued deque.Deque[Task]

	poolMode atomic.Bool
	stopped  atomic.Bool
	daemonOn atomic.Bool

	log log.Logger
}

// NewScheduler wires a scheduler over an existing Registry/Tally/TargetQueue.
func NewScheduler(registry *Registry, tally *Tally, targets *TargetQueue, config Config) *Scheduler {
	return &Scheduler{
		registry: registry,
		tally:    tally,
		targets:  targets,
		peers:    newPeerSet(),
		config:   config.sanitize(),
		log:      log.New("module", "skeleton-scheduler"),
	}
}

// AddPeer registers a new worker peer, enabling one more concurrent buddy.
func (s *Scheduler) AddPeer(p chain.Peer) {
	s.peers.add(p)
	metricBuddies.Update(int64(s.peers.len()))
}

// RemovePeer retires a worker peer.
func (s *Scheduler) RemovePeer(id string) {
	s.peers.remove(id)
	metricBuddies.Update(int64(s.peers.len()))
}

// Stop raises the global shutdown flag; workers observe it between jobs.
func (s *Scheduler) Stop() { s.stopped.Store(true) }

// SetDaemon enables or disables the daemon loop.
func (s *Scheduler) SetDaemon(on bool) { s.daemonOn.Store(on) }

// Daemon runs the scheduler's background loop once per call; callers wrap
// it in their own `for { ... }` so tests can single-step it.
func (s *Scheduler) Daemon() {
	if !s.daemonOn.Load() {
		return
	}
	if head := s.targets.Shift(); head != nil {
		s.registry.SetHead(head, true, false)
	}
	active := s.rebuildJobsFromMask()
	if active > 0 {
		time.Sleep(s.config.DaemonWaitInterval)
	} else {
		time.Sleep(s.config.DaemonIdleInterval)
	}
	s.reportProgress()
}

// rebuildJobsFromMask scans the mask and body-mask interval sets and emits
// header and body jobs onto the shared deque, daemon description.
func (s *Scheduler) rebuildJobsFromMask() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.enqueueHeaderJobsLocked()
	count += s.enqueueBodyJobsLocked()
	return count
}

// enqueueHeaderJobsLocked scans the mask interval set in decreasing order
// and emits GetBlocks(n, maxResults) jobs.
func (s *Scheduler) enqueueHeaderJobsLocked() int {
	ranges := s.tally.Mask().Ranges()
	count := 0
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		jobs := s.tally.FillBlocksGaps(r.Start, r.End, s.config.MaxGetBlocks)
		for _, j := range jobs {
			if s.jobs.Len() >= s.config.MaxJobsQueue {
				break
			}
			s.jobs.PushBack(Task{Kind: TaskHeaders, Start: j.Start, MaxResults: j.MaxResults})
			count++
		}
	}
	return count
}

// enqueueBodyJobsLocked scans the body mask for stashed headers whose bodies
// have not yet been fetched and emits GetBlockBodies jobs for them, chunked
// at MaxGetBlocks headers per job.
func (s *Scheduler) enqueueBodyJobsLocked() int {
	ranges := s.tally.BodyMask().Ranges()
	count := 0
	for _, r := range ranges {
		for n := r.Start; n <= r.End; {
			end := n + uint64(s.config.MaxGetBlocks) - 1
			if end > r.End {
				end = r.End
			}
			var headers []*types.Header
			for i := n; i <= end; i++ {
				h, err := s.registry.headers.GetHeader(i)
				if err == nil && h != nil {
					headers = append(headers, h)
				}
			}
			if len(headers) > 0 {
				if s.jobs.Len() >= s.config.MaxJobsQueue {
					return count
				}
				s.jobs.PushBack(Task{Kind: TaskBodies, BodyOf: headers})
				count++
			}
			n = end + 1
		}
	}
	return count
}

// RunMulti is a single worker activation: pick at most one job from the
// shared deque and execute it to completion.
func (s *Scheduler) RunMulti(b *buddy) {
	if s.stopped.Load() || b.ctrl.stopped.Load() {
		return
	}
	task, ok := s.popJob()
	if !ok {
		time.Sleep(s.config.WorkerIdleWaitInterval)
		return
	}
	if err := s.execute(b, task); err != nil {
		s.log.Debug("worker task failed, requeueing", "peer", b.peer.ID(), "err", err)
		b.recordError()
		s.requeueJob(task)
		s.poolMode.Store(true)
	}
}

// RunPool is the non-async serialised pass triggered when poolMode is
// raised: it moves every requeued job, in requeue order, to the front of
// the shared job deque and lowers the flag once the requeue list is
// drained. It does not assign jobs to particular peers; the next RunMulti
// activation of any worker picks them up.
func (s *Scheduler) RunPool() {
	if !s.poolMode.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.requeued.Len() > 0 {
		t := s.requeued.PopBack()
		s.jobs.PushFront(t)
	}
	s.poolMode.Store(false)
}

func (s *Scheduler) popJob() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs.Len() == 0 {
		return Task{}, false
	}
	return s.jobs.PopFront(), true
}

func (s *Scheduler) requeueJob(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requeued.PushBack(t)
}

// execute performs the header or body fetch, verifies it, stashes it, and
// feeds it back into the skeleton algorithm.
func (s *Scheduler) execute(b *buddy, t Task) error {
	switch t.Kind {
	case TaskHeaders:
		headers, err := b.peer.GetBlockHeaders(chain.HeaderRequest{
			StartBlock: t.Start,
			MaxResults: t.MaxResults,
			Reverse:    true,
		})
		if err != nil {
			return err
		}
		if len(headers) == 0 {
			return errEmptyResponse
		}
		status, err := s.registry.PutBlocks(headers)
		if err != nil {
			return err
		}
		for _, h := range headers {
			s.tally.HeadTally(h.Number.Uint64())
		}
		if status == StatusSyncMerged {
			s.log.Info("subchains merged, restarting fetch")
		}
		return nil

	case TaskBodies:
		hashes := make([]common.Hash, len(t.BodyOf))
		for i, h := range t.BodyOf {
			hashes[i] = h.Hash()
		}
		bodies, err := b.peer.GetBlockBodies(hashes)
		if err != nil {
			return err
		}
		if len(bodies) == 0 {
			return errEmptyResponse
		}
		for i, body := range bodies {
			if i >= len(t.BodyOf) {
				break
			}
			h := t.BodyOf[i]
			want := ExpectedBodySumHash(h)
			if ActualBodySumHash(body) != want {
				return ErrHashesDoNotMatch
			}
			if err := s.registry.headers.PutBody(h.Hash(), want, body); err != nil {
				return err
			}
			s.tally.BodyFetched(h.Number.Uint64())
		}
		return nil
	}
	return nil
}

func (s *Scheduler) reportProgress() {
	s.registry.reportProgress(s.tally)
}

package txpool

import (
	"sync"

	"github.com/gammazero/deque"
)

// JobID monotonically increases as jobs are appended, wrapping at the
// 64-bit boundary.
type JobID uint64

// Job is a unit of pending work handed to a worker by Fetch. A job disposed
// while still mid-queue is not spliced out immediately — it is marked
// Disposed and skipped in place, so jobs queued after it keep their relative
// FIFO order instead of shifting forward.
type Job struct {
	ID       JobID
	Item     *Item
	Disposed bool
}

// JobQueue is a priority-capable FIFO of batch work handed to workers. It
// is guarded by its own mutex rather than the pool's, since workers fetch
// and dispose jobs far more often than the pool's indices mutate.
type JobQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   deque.Deque[Job]
	nextID JobID
	cap    int
}

// NewJobQueue returns an empty queue bounded at capacity (0 means
// unbounded).
func NewJobQueue(capacity int) *JobQueue {
	q := &JobQueue{cap: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Append adds item to the back of the queue, returning ErrJobQueueFull if
// the queue is at capacity.
func (q *JobQueue) Append(item *Item) (JobID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cap > 0 && q.jobs.Len() >= q.cap {
		return 0, ErrJobQueueFull
	}
	id := q.nextID
	q.nextID++
	q.jobs.PushBack(Job{ID: id, Item: item})
	q.cond.Broadcast()
	return id, nil
}

// Unshift pushes job to the front of the queue, bypassing the capacity
// check: used to retry work ahead of new arrivals.
func (q *JobQueue) Unshift(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs.PushFront(job)
	q.cond.Broadcast()
}

// Fetch removes and returns the next non-disposed job at the head of the
// queue, or false if the queue is empty (or holds only disposed jobs).
func (q *JobQueue) Fetch() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.jobs.Len() > 0 {
		job := q.jobs.PopFront()
		if job.Disposed {
			continue
		}
		q.cond.Broadcast()
		return job, true
	}
	return Job{}, false
}

// FetchWait blocks until a non-disposed job is available, then removes and
// returns it.
func (q *JobQueue) FetchWait() Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		for q.jobs.Len() == 0 {
			q.cond.Wait()
		}
		job := q.jobs.PopFront()
		if job.Disposed {
			continue
		}
		q.cond.Broadcast()
		return job
	}
}

// Dispose marks id as a no-op in place rather than splicing it out of the
// queue, so jobs queued after it are never shifted forward: the head case
// still pops immediately, but an interior job is left where it is and
// simply skipped when Fetch/FetchWait later reaches it. Returns false if no
// queued job has id.
func (q *JobQueue) Dispose(id JobID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.jobs.Len() == 0 {
		return false
	}
	if q.jobs.Front().ID == id {
		q.jobs.PopFront()
		q.cond.Broadcast()
		return true
	}
	for i := 0; i < q.jobs.Len(); i++ {
		job := q.jobs.At(i)
		if job.ID == id {
			job.Disposed = true
			q.jobs.Set(i, job)
			return true
		}
	}
	return false
}

// Len returns the number of queued jobs.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.jobs.Len()
}

// WaitLatest blocks until every job enqueued no later than id has left the
// queue.
func (q *JobQueue) WaitLatest(id JobID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.jobs.Len() > 0 && q.jobs.Front().ID <= id {
		q.cond.Wait()
	}
}
